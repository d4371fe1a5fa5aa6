package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrUserExists, http.StatusConflict, "Email in use"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Email or password is incorrect"},
		{domain.ErrEmailNotVerified, http.StatusUnauthorized, "Email is not verified"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "Not authorized"},
		{domain.ErrVerificationNotFound, http.StatusNotFound, "User not found"},
		{domain.ErrAlreadyVerified, http.StatusBadRequest, "Verification has already been passed"},
		{domain.ErrResendTooSoon, http.StatusTooManyRequests, ""},
		{domain.ErrContactNotFound, http.StatusNotFound, "Not found"},
		{domain.ErrAvatarRequired, http.StatusBadRequest, "Avatar must be provided"},
		{fmt.Errorf("%w: bad header", domain.ErrInvalidImage), http.StatusBadRequest, ""},
		{fmt.Errorf("%w: smtp down", domain.ErrMailDelivery), http.StatusServiceUnavailable, ""},
		{echo.NewHTTPError(http.StatusBadRequest, "missing fields"), http.StatusBadRequest, "missing fields"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		h(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: invalid json: %v", tc.err, err)
		}
		if body.Message == "" || (tc.msg != "" && body.Message != tc.msg) {
			t.Fatalf("%v: unexpected message %q", tc.err, body.Message)
		}
	}
}

func TestHTTPErrorHandler_DoesNotLeakInternalErrors(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(errors.New("mongo: connection refused"), c)

	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "mongo: connection refused") {
		t.Fatalf("internal error should be logged, got %q", logs.String())
	}
}
