package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const bearerPrefix = "Bearer "

// Auth resolves the bearer token to the user it currently belongs to and
// stores that user on the request. Every protected route is mounted behind it.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
			}

			user, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return domain.ErrUnauthorized
				}
				return err
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// bearerToken accepts exactly "Bearer <token>" with a non-empty token.
func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
