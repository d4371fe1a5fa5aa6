package ports

import (
	"context"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to Register.
type RegisterInput struct {
	Email        string
	Password     string
	Subscription domain.Subscription // optional, defaults to starter
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService covers the verification flow and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	ConfirmVerification(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error

	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
	UpdateSubscription(ctx context.Context, userID string, subscription domain.Subscription) (*domain.User, error)

	Authenticator
}

// Authenticator resolves a presented bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
