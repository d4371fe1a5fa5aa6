package domain

import (
	"errors"
	"time"
)

// Subscription is the plan tier a user is on.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

var (
	ErrUserExists          = errors.New("email in use")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("email or password is incorrect")
	ErrEmailNotVerified    = errors.New("email is not verified")
	ErrUnauthorized        = errors.New("not authorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrInvalidInput        = errors.New("invalid input")

	ErrVerificationNotFound = errors.New("verification token not found")
	ErrAlreadyVerified      = errors.New("verification has already been passed")
	ErrResendTooSoon        = errors.New("verification email was sent recently")
	ErrMailDelivery         = errors.New("verification email could not be delivered")

	ErrAvatarRequired = errors.New("avatar must be provided")
	ErrInvalidImage   = errors.New("unsupported or corrupt image")
)

// User is an account owner in the phonebook.
//
// Token holds the single currently valid session token. A signed, unexpired
// JWT that does not equal Token is not accepted.
type User struct {
	ID                string       `json:"id"`
	Email             string       `json:"email"`
	PasswordHash      string       `json:"-"`
	Subscription      Subscription `json:"subscription"`
	AvatarURL         string       `json:"avatarURL"`
	Verify            bool         `json:"verify"`
	VerificationToken string       `json:"-"`
	Token             string       `json:"-"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Profile is the minimal public view of a user.
type Profile struct {
	Email        string       `json:"email"`
	Subscription Subscription `json:"subscription"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{Email: u.Email, Subscription: u.Subscription}
}
