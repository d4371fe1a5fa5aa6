package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "Email in use"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Email or password is incorrect"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusUnauthorized, "Email is not verified"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, domain.ErrVerificationNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "Verification has already been passed"
	case errors.Is(err, domain.ErrResendTooSoon):
		return http.StatusTooManyRequests, "Verification email was sent recently, try again later"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrContactNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrAvatarRequired):
		return http.StatusBadRequest, "Avatar must be provided"
	case errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest, "Avatar must be a valid image"
	case errors.Is(err, domain.ErrInvalidSubscription):
		return http.StatusBadRequest, "Subscription must be one of: starter pro business"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, domain.ErrMailDelivery):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("verification email not delivered")
		return http.StatusServiceUnavailable, "Verification email could not be sent"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}
