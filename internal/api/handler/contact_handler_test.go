package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/api/middleware"
	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// stubContactService records the owner of every call and only knows
// contacts owned by "u1".
type stubContactService struct {
	owners   []string
	lastList ports.ListContactsInput
	lastIn   ports.CreateContactInput
	patch    domain.ContactPatch
}

func (s *stubContactService) lookup(owner, id string) (*domain.Contact, error) {
	s.owners = append(s.owners, owner)
	if owner != "u1" || id != "c1" {
		return nil, domain.ErrContactNotFound
	}
	return &domain.Contact{ID: "c1", Name: "ann", Owner: "u1"}, nil
}

func (s *stubContactService) ListContacts(_ context.Context, in ports.ListContactsInput) (*ports.ListContactsResult, error) {
	s.lastList = in
	return &ports.ListContactsResult{Items: []*domain.Contact{{ID: "c1", Owner: in.Owner}}, Total: 1, Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *stubContactService) GetContact(_ context.Context, owner, id string) (*domain.Contact, error) {
	return s.lookup(owner, id)
}

func (s *stubContactService) CreateContact(_ context.Context, owner string, in ports.CreateContactInput) (*domain.Contact, error) {
	s.owners = append(s.owners, owner)
	s.lastIn = in
	return &domain.Contact{ID: "c2", Name: in.Name, Email: in.Email, Phone: in.Phone, Owner: owner}, nil
}

func (s *stubContactService) UpdateContact(_ context.Context, owner, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	s.patch = patch
	return s.lookup(owner, id)
}

func (s *stubContactService) UpdateFavorite(_ context.Context, owner, id string, favorite bool) (*domain.Contact, error) {
	c, err := s.lookup(owner, id)
	if err != nil {
		return nil, err
	}
	c.Favorite = favorite
	return c, nil
}

func (s *stubContactService) DeleteContact(_ context.Context, owner, id string) error {
	_, err := s.lookup(owner, id)
	return err
}

func contactContext(e *echo.Echo, method, target, body, userID, id string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := jsonContext(e, method, target, body)
	if userID != "" {
		middleware.SetUser(c, &domain.User{ID: userID, Email: userID + "@x.com", Subscription: domain.SubscriptionStarter})
	}
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func TestContactHandler_List(t *testing.T) {
	e := newEcho()
	svc := &stubContactService{}
	h := NewContactHandler(svc)

	c, rec := contactContext(e, http.MethodGet, "/contacts?page=2&limit=5&favorite=true", "", "u1", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastList.Owner != "u1" || svc.lastList.Page != 2 || svc.lastList.Limit != 5 || svc.lastList.Favorite == nil || !*svc.lastList.Favorite {
		t.Fatalf("unexpected list input %+v", svc.lastList)
	}

	var resp contactListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Owner.Email != "u1@x.com" || resp.Total != 1 || len(resp.Items) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestContactHandler_List_BadQuery(t *testing.T) {
	e := newEcho()
	h := NewContactHandler(&stubContactService{})

	for _, q := range []string{"page=0", "limit=abc", "favorite=maybe"} {
		c, _ := contactContext(e, http.MethodGet, "/contacts?"+q, "", "u1", "")
		assertHTTPError(t, h.List(c), http.StatusBadRequest)
	}
}

func TestContactHandler_OwnerComesFromToken(t *testing.T) {
	e := newEcho()
	svc := &stubContactService{}
	h := NewContactHandler(svc)

	// u2 presents u1's contact id: every operation must be scoped to u2 and miss.
	calls := map[string]func(echo.Context) error{
		"get":      h.Get,
		"update":   h.Update,
		"favorite": h.UpdateFavorite,
		"delete":   h.Delete,
	}
	for name, call := range calls {
		c, _ := contactContext(e, http.MethodPut, "/contacts/c1", `{"name":"mallory","favorite":true,"owner":"u1"}`, "u2", "c1")
		if err := call(c); !errors.Is(err, domain.ErrContactNotFound) {
			t.Fatalf("%s: expected ErrContactNotFound, got %v", name, err)
		}
	}
	for _, owner := range svc.owners {
		if owner != "u2" {
			t.Fatalf("service called with owner %q", owner)
		}
	}
}

func TestContactHandler_Create(t *testing.T) {
	e := newEcho()
	svc := &stubContactService{}
	h := NewContactHandler(svc)

	c, rec := contactContext(e, http.MethodPost, "/contacts", `{"name":"Ann Lee","email":"ann@x.com","phone":"(555) 123-4567"}`, "u1", "")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || svc.lastIn.Name != "Ann Lee" || svc.owners[0] != "u1" {
		t.Fatalf("unexpected create: %d %+v", rec.Code, svc.lastIn)
	}

	c, _ = contactContext(e, http.MethodPost, "/contacts", `{"name":"Ann Lee","email":"ann@x.com"}`, "u1", "")
	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Message != "missing required field phone" {
		t.Fatalf("expected missing phone, got %v", err)
	}
}

func TestContactHandler_Update(t *testing.T) {
	e := newEcho()
	svc := &stubContactService{}
	h := NewContactHandler(svc)

	c, rec := contactContext(e, http.MethodPut, "/contacts/c1", `{"phone":"(555) 000-1111"}`, "u1", "c1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.patch.Phone == nil || svc.patch.Name != nil {
		t.Fatalf("unexpected patch %+v", svc.patch)
	}

	c, _ = contactContext(e, http.MethodPut, "/contacts/c1", `{}`, "u1", "c1")
	err := h.Update(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest || he.Message != "missing fields" {
		t.Fatalf("expected 400 missing fields, got %v", err)
	}
}

func TestContactHandler_UpdateFavorite(t *testing.T) {
	e := newEcho()
	h := NewContactHandler(&stubContactService{})

	c, rec := contactContext(e, http.MethodPatch, "/contacts/c1/favorite", `{"favorite":true}`, "u1", "c1")
	if err := h.UpdateFavorite(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"favorite":true`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	c, _ = contactContext(e, http.MethodPatch, "/contacts/c1/favorite", `{}`, "u1", "c1")
	err := h.UpdateFavorite(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Message != "missing field favorite" {
		t.Fatalf("expected missing field favorite, got %v", err)
	}
}

func TestContactHandler_Delete(t *testing.T) {
	e := newEcho()
	h := NewContactHandler(&stubContactService{})

	c, rec := contactContext(e, http.MethodDelete, "/contacts/c1", "", "u1", "c1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "contact deleted") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestContactHandler_RequiresUser(t *testing.T) {
	e := newEcho()
	h := NewContactHandler(&stubContactService{})

	c, _ := contactContext(e, http.MethodGet, "/contacts", "", "", "")
	if err := h.List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
