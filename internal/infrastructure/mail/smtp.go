// Package mail delivers verification messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/api/metrics"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const verificationSubject = "Welcome to phonebook"

var verificationHTML = template.Must(template.New("verify").Parse(
	`<h1>Welcome to phonebook</h1>
<p>Please confirm your email address to activate your account.</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>If the button does not work, paste this address into your browser:<br>{{.Link}}</p>
`))

// Config is the SMTP relay the verification mails go through.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends verification mails inline. Send blocks until the relay
// accepts the message or ctx is done.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	log  zerolog.Logger
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		from: cfg.From,
		log:  log,
	}
}

var _ ports.VerificationMailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) SendVerification(ctx context.Context, msg ports.VerificationMail) error {
	mail, err := m.compose(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		observeDelivery("failed", start)
		return ctx.Err()
	case err := <-done:
		if err != nil {
			observeDelivery("failed", start)
			return fmt.Errorf("send verification email: %w", err)
		}
	}

	observeDelivery("sent", start)
	m.log.Debug().Str("to", msg.To).Msg("verification email sent")
	return nil
}

func (m *SMTPMailer) compose(msg ports.VerificationMail) (*mailyak.MailYak, error) {
	html, err := renderVerification(msg.Link)
	if err != nil {
		return nil, err
	}

	mail := mailyak.New(m.addr, m.auth)
	mail.To(msg.To)
	mail.From(m.from)
	mail.FromName("phonebook")
	mail.Subject(verificationSubject)
	mail.HTML().Set(html)
	mail.Plain().Set("Confirm your email address by opening this link: " + msg.Link + "\n")
	return mail, nil
}

func observeDelivery(result string, start time.Time) {
	metrics.MailDeliveriesTotal.WithLabelValues(result).Inc()
	metrics.MailDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func renderVerification(link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationHTML.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	return buf.String(), nil
}
