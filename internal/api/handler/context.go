package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/api/middleware"
	"github.com/phonebook/phonebook-api/internal/core/domain"
)

// currentUser returns the user resolved by the Auth middleware. A missing user
// means the route was mounted without it; fail closed with 401.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.UserFrom(c)
	if u == nil || u.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}
