package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

func toCreateContactInput(req createContactRequest) ports.CreateContactInput {
	return ports.CreateContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	}
}

func toContactPatch(req updateContactRequest) domain.ContactPatch {
	return domain.ContactPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	}
}

// parseListQuery reads page, limit and favorite. Absent values are left at
// zero or nil for the service to default.
func parseListQuery(c echo.Context, owner string) (ports.ListContactsInput, error) {
	in := ports.ListContactsInput{Owner: owner}

	var err error
	if in.Page, err = queryInt(c, "page"); err != nil {
		return in, err
	}
	if in.Limit, err = queryInt(c, "limit"); err != nil {
		return in, err
	}
	if raw := c.QueryParam("favorite"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "favorite must be true or false")
		}
		in.Favorite = &fav
	}
	return in, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return n, nil
}
