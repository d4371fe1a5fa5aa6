package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/core/ports"
)

type recordingMailer struct {
	sent chan ports.VerificationMail
	err  error
}

func (m *recordingMailer) SendVerification(_ context.Context, mail ports.VerificationMail) error {
	m.sent <- mail
	return m.err
}

func TestMailDispatcher_DeliversInOrderPerAddress(t *testing.T) {
	next := &recordingMailer{sent: make(chan ports.VerificationMail, 8)}
	d := NewMailDispatcher(3, next, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	links := []string{"first", "second", "third"}
	for _, l := range links {
		if err := d.SendVerification(context.Background(), ports.VerificationMail{To: "a@x.com", Link: l}); err != nil {
			t.Fatalf("enqueue %s: %v", l, err)
		}
	}

	for _, want := range links {
		select {
		case got := <-next.sent:
			if got.Link != want {
				t.Fatalf("expected %s, got %s", want, got.Link)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestMailDispatcher_DeliveryErrorDoesNotStopWorker(t *testing.T) {
	next := &recordingMailer{sent: make(chan ports.VerificationMail, 4), err: errors.New("smtp down")}
	d := NewMailDispatcher(1, next, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 2; i++ {
		if err := d.SendVerification(context.Background(), ports.VerificationMail{To: "b@x.com"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-next.sent:
		case <-time.After(2 * time.Second):
			t.Fatalf("worker stopped after a failed delivery")
		}
	}
}

func TestMailDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewMailDispatcher(2, &recordingMailer{sent: make(chan ports.VerificationMail, 1)}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	err := d.SendVerification(context.Background(), ports.VerificationMail{To: "c@x.com"})
	if !errors.Is(err, ErrDispatcherStopped) {
		t.Fatalf("expected ErrDispatcherStopped, got %v", err)
	}
}

func TestMailDispatcher_DrainsQueueOnStop(t *testing.T) {
	next := &recordingMailer{sent: make(chan ports.VerificationMail, 8)}
	d := NewMailDispatcher(2, next, zerolog.Nop())

	for _, to := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		if err := d.SendVerification(context.Background(), ports.VerificationMail{To: to}); err != nil {
			t.Fatalf("enqueue %s: %v", to, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := len(next.sent); got != 4 {
		t.Fatalf("expected 4 queued mails delivered on shutdown, got %d", got)
	}
}

func TestMailDispatcher_ShardIndexStable(t *testing.T) {
	d := NewMailDispatcher(0, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	a := d.shardIndex("a@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("a@x.com") != a {
			t.Fatalf("shard index must be deterministic")
		}
	}
	if a < 0 || a >= len(d.workers) {
		t.Fatalf("shard index %d out of range", a)
	}
}
