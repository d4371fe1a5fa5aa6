package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/api/metrics"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// ContactHandler handles the caller's contacts. The owner is always the user
// resolved by the Auth middleware, never a value from the request.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// List handles GET /contacts.
//
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int   false  "Page number (default 1)"
// @Param        limit     query     int   false  "Page size (default 20, max 100)"
// @Param        favorite  query     bool  false  "Only favorites or only non-favorites"
// @Success      200       {object}  contactListResponse
// @Failure      400       {object}  messageResponse
// @Failure      401       {object}  messageResponse
// @Router       /contacts [get]
func (h *ContactHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	in, err := parseListQuery(c, user.ID)
	if err != nil {
		return err
	}

	res, err := h.service.ListContacts(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactListResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
		Owner:      user.Profile(),
	})
}

// Get handles GET /contacts/:id.
//
// @Summary      Get a contact
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  domain.Contact
// @Failure      400  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /contacts/{id} [get]
func (h *ContactHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	contact, err := h.service.GetContact(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// Create handles POST /contacts.
//
// @Summary      Create a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createContactRequest  true  "Contact"
// @Success      201   {object}  domain.Contact
// @Failure      400   {object}  messageResponse
// @Router       /contacts [post]
func (h *ContactHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	contact, err := h.service.CreateContact(c.Request().Context(), user.ID, toCreateContactInput(req))
	if err != nil {
		return err
	}
	metrics.ContactOperationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, contact)
}

// Update handles PUT /contacts/:id. Only the fields present are changed.
//
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Contact id"
// @Param        body  body      updateContactRequest  true  "Fields to change"
// @Success      200   {object}  domain.Contact
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /contacts/{id} [put]
func (h *ContactHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch := toContactPatch(req)
	if patch.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}

	contact, err := h.service.UpdateContact(c.Request().Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		return err
	}
	metrics.ContactOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, contact)
}

// UpdateFavorite handles PATCH /contacts/:id/favorite.
//
// @Summary      Mark or unmark a favorite
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Contact id"
// @Param        body  body      favoriteRequest  true  "Favorite flag"
// @Success      200   {object}  domain.Contact
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /contacts/{id}/favorite [patch]
func (h *ContactHandler) UpdateFavorite(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req favoriteRequest
	if err := c.Bind(&req); err != nil || req.Favorite == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing field favorite")
	}

	contact, err := h.service.UpdateFavorite(c.Request().Context(), user.ID, c.Param("id"), *req.Favorite)
	if err != nil {
		return err
	}
	metrics.ContactOperationsTotal.WithLabelValues("favorite").Inc()
	return c.JSON(http.StatusOK, contact)
}

// Delete handles DELETE /contacts/:id.
//
// @Summary      Delete a contact
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteContact(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	metrics.ContactOperationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "contact deleted"})
}
