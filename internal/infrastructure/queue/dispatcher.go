package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/api/metrics"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	defaultSendTimeout = 30 * time.Second
)

// ErrDispatcherStopped is returned for mails offered after shutdown began.
var ErrDispatcherStopped = errors.New("mail dispatcher stopped")

// MailDispatcher hands verification mails to a fixed set of workers that
// deliver them through the wrapped mailer. Mails for the same address always
// land on the same worker, so a resend is never delivered before the original.
type MailDispatcher struct {
	workers     []chan ports.VerificationMail
	next        ports.VerificationMailer
	sendTimeout time.Duration
	log         zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, next ports.VerificationMailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers:     make([]chan ports.VerificationMail, numWorkers),
		next:        next,
		sendTimeout: defaultSendTimeout,
		log:         log,
		done:        make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.VerificationMail, channelBuffer)
	}
	return d
}

var _ ports.VerificationMailer = (*MailDispatcher)(nil)

// Start launches the workers. Once ctx is cancelled no new mail is accepted;
// the workers deliver what is already queued and then return.
func (d *MailDispatcher) Start(ctx context.Context) {
	d.wg.Add(len(d.workers) + 1)
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		defer d.wg.Done()
		<-ctx.Done()
		d.mu.Lock()
		d.stopped = true
		close(d.done)
		d.mu.Unlock()
	}()
}

// Wait blocks until every worker has returned.
func (d *MailDispatcher) Wait() {
	d.wg.Wait()
}

// SendVerification queues mail and returns without waiting for delivery.
// It only blocks while the target worker's buffer is full.
func (d *MailDispatcher) SendVerification(ctx context.Context, mail ports.VerificationMail) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.MailRejectedTotal.WithLabelValues("stopped").Inc()
		return ErrDispatcherStopped
	}

	idx := d.shardIndex(mail.To)
	select {
	case d.workers[idx] <- mail:
		d.observeDepth(idx)
		return nil
	case <-ctx.Done():
		metrics.MailRejectedTotal.WithLabelValues("canceled").Inc()
		return ctx.Err()
	}
}

// shardIndex maps an address deterministically to a worker index.
func (d *MailDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) observeDepth(idx int) {
	metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.VerificationMail) {
	defer d.wg.Done()
	// Deliveries outlive ctx so the backlog can drain during shutdown.
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-d.done:
			for {
				select {
				case mail := <-ch:
					d.deliver(sendCtx, id, mail)
				default:
					return
				}
			}
		case mail := <-ch:
			d.deliver(sendCtx, id, mail)
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, id int, mail ports.VerificationMail) {
	d.observeDepth(id)
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.next.SendVerification(ctx, mail); err != nil {
		d.log.Error().Err(err).
			Str("to", mail.To).
			Int("worker_id", id).
			Msg("verification email delivery failed")
	}
}
