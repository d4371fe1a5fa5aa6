package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// Login checks credentials and the verification gate, then issues a token and
// stores it on the user. Storing it replaces any earlier token, which is
// rejected from then on even if it has not expired.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	// Checked after the password so the verification state is only revealed
	// to someone who already knows it.
	if !user.Verify {
		return nil, domain.ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(Subject{ID: user.ID, Name: user.Email})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.repo.SetToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("login: store token: %w", err)
	}
	user.Token = token

	s.log.Info().Str("user_id", user.ID).Msg("login")
	return &ports.LoginResult{Token: token, User: user}, nil
}

// Logout clears the stored token. Calling it twice leaves the same state.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("logout")
	return nil
}

// UpdateSubscription changes the plan of userID. No other field is writable here.
func (s *AuthService) UpdateSubscription(ctx context.Context, userID string, subscription domain.Subscription) (*domain.User, error) {
	if !subscription.Valid() {
		return nil, domain.ErrInvalidSubscription
	}
	user, err := s.repo.UpdateSubscription(ctx, userID, subscription)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("subscription", string(subscription)).Msg("subscription updated")
	return user, nil
}

// Authenticate resolves a bearer token to its user. The token must be validly
// signed and unexpired and must also be the token currently stored on the user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	sub, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.Token == "" || subtle.ConstantTimeCompare([]byte(user.Token), []byte(token)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
