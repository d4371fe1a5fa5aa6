package ports

import (
	"context"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// ListContactsFilter carries the query for a page of contacts.
// Owner is always set by the service from the authenticated user.
type ListContactsFilter struct {
	Owner    string
	Favorite *bool // optional
	Page     int   // 1-based
	Limit    int
}

// ContactRepository persists contacts. Every method takes the owner and must
// include it in the query filter.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	FindByID(ctx context.Context, owner, id string) (*domain.Contact, error)
	List(ctx context.Context, filter ListContactsFilter) ([]*domain.Contact, int64, error)
	Update(ctx context.Context, owner, id string, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, owner, id string) error
}
