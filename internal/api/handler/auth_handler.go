package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phonebook/phonebook-api/internal/api/metrics"
	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an unverified account and sends the verification email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      503   {object}  messageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Subscription: domain.Subscription(req.Subscription),
	})
	recordAuth("register", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{User: user.Profile()})
}

// Verify confirms an email address with the token from the verification link.
//
// @Summary      Confirm email address
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  messageResponse
// @Router       /auth/verify/{token} [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	err := h.authService.ConfirmVerification(c.Request().Context(), c.Param("token"))
	recordAuth("verify", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Verification successful"})
}

// ResendVerification mails the verification link again.
//
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /auth/verify [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.ResendVerification(c.Request().Context(), req.Email)
	recordAuth("resend", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Verification email sent"})
}

// Login checks credentials and starts a new session, ending any previous one.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: res.Token, User: res.User.Profile()})
}

// Logout ends the caller's session.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), user.ID)
	recordAuth("logout", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// recordAuth counts the outcome of an auth operation.
func recordAuth(event string, err error) {
	metrics.AuthEventsTotal.WithLabelValues(event, authResult(err)).Inc()
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	case errors.Is(err, domain.ErrVerificationNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return "already_verified"
	case errors.Is(err, domain.ErrResendTooSoon):
		return "too_soon"
	case errors.Is(err, domain.ErrMailDelivery):
		return "mail_failed"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidSubscription):
		return "invalid"
	default:
		return "error"
	}
}
