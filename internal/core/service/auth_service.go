package service

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// MailPolicy decides what a failed verification mail does to a registration.
type MailPolicy string

const (
	// MailStrict sends inline and undoes the registration when sending fails.
	MailStrict MailPolicy = "strict"
	// MailBestEffort keeps the user regardless; the mailer is expected to be asynchronous.
	MailBestEffort MailPolicy = "best_effort"
)

const (
	verificationTokenBytes = 32
	// cleanupTimeout bounds compensating writes that run after the request
	// context may already be gone.
	cleanupTimeout = 5 * time.Second
)

// AuthOptions is the immutable configuration of the verification flow.
type AuthOptions struct {
	// BaseURL is the public origin verification links point at.
	BaseURL    string
	MailPolicy MailPolicy
}

// AuthService implements registration, email verification and the session
// lifecycle on top of a single user document per account.
type AuthService struct {
	repo    ports.UserRepository
	hasher  *PasswordHasher
	tokens  *TokenIssuer
	mailer  ports.VerificationMailer
	limiter ports.ResendLimiter
	opts    AuthOptions
	log     zerolog.Logger
	now     func() time.Time
}

// NewAuthService wires the auth core. limiter may be nil to disable the resend cooldown.
func NewAuthService(
	repo ports.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenIssuer,
	mailer ports.VerificationMailer,
	limiter ports.ResendLimiter,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.MailPolicy == "" {
		opts.MailPolicy = MailStrict
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		mailer:  mailer,
		limiter: limiter,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates an unverified account and dispatches its verification mail.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	subscription := in.Subscription
	if subscription == "" {
		subscription = domain.SubscriptionStarter
	}
	if !subscription.Valid() {
		return nil, domain.ErrInvalidSubscription
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password exceeds %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	verificationToken, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:             email,
		PasswordHash:      hash,
		Subscription:      subscription,
		AvatarURL:         gravatarURL(email),
		VerificationToken: verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, email, verificationToken); err != nil {
		if s.opts.MailPolicy == MailBestEffort {
			s.log.Warn().Err(err).Str("user_id", created.ID).Msg("verification email not dispatched, registration kept")
			return created, nil
		}
		s.rollbackRegistration(ctx, created.ID)
		return nil, fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}

	s.log.Info().Str("user_id", created.ID).Str("subscription", string(subscription)).Msg("user registered")
	return created, nil
}

// ConfirmVerification exchanges a verification token for the verified state.
// The token is single use: once consumed it no longer matches any user.
func (s *AuthService) ConfirmVerification(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrVerificationNotFound
	}
	user, err := s.repo.MarkVerified(ctx, token)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// ResendVerification mails the stored verification token again. No new token is minted.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verify {
		return domain.ErrAlreadyVerified
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("resend cooldown check failed, sending anyway")
		} else if !allowed {
			return domain.ErrResendTooSoon
		}
	}

	if err := s.sendVerification(ctx, email, user.VerificationToken); err != nil {
		s.releaseCooldown(ctx, email)
		return fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}
	return nil
}

// rollbackRegistration removes a user whose verification mail never went out.
// It runs detached from ctx: a client that hung up mid-send cancels ctx, and
// the delete still has to happen.
func (s *AuthService) rollbackRegistration(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to roll back registration")
	}
}

// releaseCooldown frees the resend slot claimed for a mail that was not sent.
func (s *AuthService) releaseCooldown(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.limiter.Release(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to release resend cooldown")
	}
}

// VerificationLink builds the URL a user follows to confirm their address.
func (s *AuthService) VerificationLink(token string) string {
	return s.opts.BaseURL + "/auth/verify/" + token
}

func (s *AuthService) sendVerification(ctx context.Context, email, token string) error {
	return s.mailer.SendVerification(ctx, ports.VerificationMail{
		To:   email,
		Link: s.VerificationLink(token),
	})
}

// normalizeEmail fixes the address policy: surrounding space is dropped and
// the address is compared case-insensitively by storing it lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// gravatarURL derives the placeholder avatar for an address.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(email))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

func newVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
