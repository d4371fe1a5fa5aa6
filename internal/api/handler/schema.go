package handler

import "github.com/phonebook/phonebook-api/internal/core/domain"

// messageResponse is the envelope for plain acknowledgements and for every
// 4xx/5xx response.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required,min=6,max=72"`
	Subscription string `json:"subscription" validate:"omitempty,oneof=starter pro business"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type subscriptionRequest struct {
	Subscription string `json:"subscription" validate:"required,oneof=starter pro business"`
}

type registerResponse struct {
	User domain.Profile `json:"user"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

// --- Contacts ---

type createContactRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=60"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"    validate:"required,min=3,max=30"`
	Favorite bool   `json:"favorite"`
}

type updateContactRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=60"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Phone    *string `json:"phone"    validate:"omitempty,min=3,max=30"`
	Favorite *bool   `json:"favorite"`
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

type contactListResponse struct {
	Items      []*domain.Contact `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	Owner      domain.Profile    `json:"owner"`
}
