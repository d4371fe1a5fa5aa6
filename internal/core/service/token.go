package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// DefaultTokenTTL is how long a session token stays valid after login.
const DefaultTokenTTL = 23 * time.Hour

// TokenConfig is the immutable signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// Subject is the identity bound into a session token.
type Subject struct {
	ID   string
	Name string
}

type sessionClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token issuer: empty signing secret")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for sub that expires after the configured TTL. Each call
// carries a fresh jti, so two tokens for the same user never compare equal.
func (t *TokenIssuer) Issue(sub Subject) (string, error) {
	now := t.now()
	claims := sessionClaims{
		UserID: sub.ID,
		Name:   sub.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the bound subject.
func (t *TokenIssuer) Verify(token string) (Subject, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return Subject{}, domain.ErrInvalidToken
	}
	return Subject{ID: claims.UserID, Name: claims.Name}, nil
}
