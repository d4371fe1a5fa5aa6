package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

type stubAuthenticator struct {
	users map[string]*domain.User // keyed by token
	err   error
	calls int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

func runAuth(t *testing.T, authn *stubAuthenticator, header string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/current", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Auth(authn)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	alice := &domain.User{ID: "u1", Email: "a@x.com", Subscription: domain.SubscriptionStarter}
	authn := &stubAuthenticator{users: map[string]*domain.User{"T2": alice}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/current", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer T2")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(authn)(func(c echo.Context) error {
		if UserFrom(c) != alice {
			t.Fatalf("user not set on echo context")
		}
		if UserFromContext(c.Request().Context()) != alice {
			t.Fatalf("user not set on request context")
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	for _, header := range []string{"", "T2", "Bearer", "Bearer ", "bearer T2", "Basic dXNlcjpwdw==", "Bearer T2 extra"} {
		authn := &stubAuthenticator{}
		called, err := runAuth(t, authn, header)
		if called {
			t.Fatalf("%q: handler must not run", header)
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized || he.Message != "no token provided" {
			t.Fatalf("%q: expected 401 no token provided, got %v", header, err)
		}
		if authn.calls != 0 {
			t.Fatalf("%q: authenticator must not be consulted", header)
		}
	}
}

func TestAuthMiddleware_SupersededToken(t *testing.T) {
	authn := &stubAuthenticator{users: map[string]*domain.User{"T2": {ID: "u1"}}}

	called, err := runAuth(t, authn, "Bearer T1")
	if called {
		t.Fatalf("handler must not run")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	storeErr := errors.New("mongo down")
	called, err := runAuth(t, &stubAuthenticator{err: storeErr}, "Bearer T1")
	if called {
		t.Fatalf("handler must not run")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestUserFrom_Unset(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if UserFrom(c) != nil {
		t.Fatalf("expected nil user")
	}
}
