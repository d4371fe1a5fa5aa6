package ports

import (
	"context"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// UserRepository is the Credential Store. Every mutating method is a single
// document update so concurrent requests for the same user resolve by last
// write wins.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes a user. Used to undo a registration whose mail could not be sent.
	Delete(ctx context.Context, id string) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// MarkVerified sets verify=true and clears the verification token of the
	// user holding token. Returns domain.ErrVerificationNotFound when nobody does.
	MarkVerified(ctx context.Context, token string) (*domain.User, error)
	// SetToken stores the current session token; an empty token logs the user out.
	SetToken(ctx context.Context, id, token string) error
	UpdateSubscription(ctx context.Context, id string, subscription domain.Subscription) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}
