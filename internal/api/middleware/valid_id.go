package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidID rejects requests whose path parameter is not a MongoDB ObjectID.
func ValidID(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Param(param)
			if !primitive.IsValidObjectID(id) {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a valid id", id))
			}
			return next(c)
		}
	}
}
