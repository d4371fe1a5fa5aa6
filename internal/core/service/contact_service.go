package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const (
	defaultContactsPage  = 1
	defaultContactsLimit = 20
	maxContactsLimit     = 100
	// maxContactsPage keeps (page-1)*limit inside int range.
	maxContactsPage = math.MaxInt32 / maxContactsLimit
)

type ContactService struct {
	repo   ports.ContactRepository
	logger zerolog.Logger
}

func NewContactService(repo ports.ContactRepository, logger zerolog.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

var _ ports.ContactService = (*ContactService)(nil)

// ListContacts returns one page of the owner's contacts.
func (s *ContactService) ListContacts(ctx context.Context, in ports.ListContactsInput) (*ports.ListContactsResult, error) {
	page := in.Page
	if page < 1 {
		page = defaultContactsPage
	}
	if page > maxContactsPage {
		return nil, fmt.Errorf("%w: page must be at most %d", domain.ErrInvalidInput, maxContactsPage)
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultContactsLimit
	}
	if limit > maxContactsLimit {
		limit = maxContactsLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListContactsFilter{
		Owner:    in.Owner,
		Favorite: in.Favorite,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListContactsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *ContactService) GetContact(ctx context.Context, owner, id string) (*domain.Contact, error) {
	return s.repo.FindByID(ctx, owner, id)
}

func (s *ContactService) CreateContact(ctx context.Context, owner string, in ports.CreateContactInput) (*domain.Contact, error) {
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Contact{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Favorite:  in.Favorite,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("failed to create contact")
		return nil, err
	}
	s.logger.Debug().Str("owner", owner).Str("contact_id", created.ID).Msg("contact created")
	return created, nil
}

// UpdateContact applies a partial update. An empty patch is rejected.
func (s *ContactService) UpdateContact(ctx context.Context, owner, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	if patch.Empty() {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.Update(ctx, owner, id, patch)
}

func (s *ContactService) UpdateFavorite(ctx context.Context, owner, id string, favorite bool) (*domain.Contact, error) {
	return s.repo.Update(ctx, owner, id, domain.ContactPatch{Favorite: &favorite})
}

func (s *ContactService) DeleteContact(ctx context.Context, owner, id string) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Debug().Str("owner", owner).Str("contact_id", id).Msg("contact deleted")
	return nil
}
