package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireBody answers 400 with message when the request carries no body.
func RequireBody(message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody || req.ContentLength == 0 {
				return echo.NewHTTPError(http.StatusBadRequest, message)
			}
			return next(c)
		}
	}
}
