package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/core/domain"
)

const userKey = "user"

type userCtxKey struct{}

// SetUser attaches the authenticated user to both the Echo context and the
// request context.
func SetUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), userCtxKey{}, user)))
}

// UserFrom returns the user set by Auth, or nil on an unprotected route.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// UserFromContext is UserFrom for code that only sees a context.Context.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userCtxKey{}).(*domain.User)
	return u
}
