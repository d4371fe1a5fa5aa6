package ports

import "context"

// VerificationMail is the message sent to prove control of an address.
type VerificationMail struct {
	To   string
	Link string
}

// VerificationMailer delivers verification messages. Implementations may
// send synchronously (SMTP) or hand the message to a worker pool.
type VerificationMailer interface {
	SendVerification(ctx context.Context, mail VerificationMail) error
}

// ResendLimiter throttles verification resends per address.
type ResendLimiter interface {
	// Allow reports whether a resend for email may go out now, and records it if so.
	Allow(ctx context.Context, email string) (bool, error)
	// Release gives back a slot taken by Allow when the mail was not sent.
	Release(ctx context.Context, email string) error
}
