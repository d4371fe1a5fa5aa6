package ports

import (
	"context"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// CreateContactInput carries the fields of a new contact.
type CreateContactInput struct {
	Name     string
	Email    string
	Phone    string
	Favorite bool
}

// ListContactsInput carries all parameters for the list endpoint.
type ListContactsInput struct {
	Owner    string
	Favorite *bool
	Page     int
	Limit    int
}

// ListContactsResult is returned by ListContacts.
type ListContactsResult struct {
	Items      []*domain.Contact
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ContactService defines use-case operations for contacts.
type ContactService interface {
	ListContacts(ctx context.Context, in ListContactsInput) (*ListContactsResult, error)
	GetContact(ctx context.Context, owner, id string) (*domain.Contact, error)
	CreateContact(ctx context.Context, owner string, in CreateContactInput) (*domain.Contact, error)
	UpdateContact(ctx context.Context, owner, id string, patch domain.ContactPatch) (*domain.Contact, error)
	UpdateFavorite(ctx context.Context, owner, id string, favorite bool) (*domain.Contact, error)
	DeleteContact(ctx context.Context, owner, id string) error
}
