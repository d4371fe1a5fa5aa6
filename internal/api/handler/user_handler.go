package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/api/metrics"
	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const avatarField = "avatar"

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	authService   ports.AuthService
	avatarService ports.AvatarService
	tmpDir        string
	log           zerolog.Logger
}

// NewUserHandler stages avatar uploads in tmpDir, which must exist.
func NewUserHandler(authService ports.AuthService, avatarService ports.AvatarService, tmpDir string, log zerolog.Logger) *UserHandler {
	return &UserHandler{authService: authService, avatarService: avatarService, tmpDir: tmpDir, log: log}
}

// Current returns the caller's profile.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  messageResponse
// @Router       /auth/current [get]
func (h *UserHandler) Current(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// UpdateSubscription changes the caller's plan.
//
// @Summary      Update subscription
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subscriptionRequest  true  "New plan"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth [patch]
func (h *UserHandler) UpdateSubscription(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req subscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.authService.UpdateSubscription(c.Request().Context(), user.ID, domain.Subscription(req.Subscription))
	recordAuth("subscription", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateAvatar replaces the caller's avatar with the uploaded image.
//
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file"
// @Success      200     {object}  avatarResponse
// @Failure      400     {object}  messageResponse
// @Failure      401     {object}  messageResponse
// @Failure      413     {object}  messageResponse
// @Router       /auth/avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(avatarField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			metrics.AvatarUploadsTotal.WithLabelValues("missing_file").Inc()
			return domain.ErrAvatarRequired
		}
		return err
	}

	tempPath, err := h.stage(fh)
	if err != nil {
		metrics.AvatarUploadsTotal.WithLabelValues("error").Inc()
		return err
	}

	start := time.Now()
	url, err := h.avatarService.UpdateAvatar(c.Request().Context(), user.ID, ports.AvatarUpload{
		TempPath:     tempPath,
		OriginalName: fh.Filename,
	})
	metrics.AvatarProcessingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			metrics.AvatarUploadsTotal.WithLabelValues("invalid_image").Inc()
		} else {
			metrics.AvatarUploadsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.AvatarUploadsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, avatarResponse{AvatarURL: url})
}

// stage copies the upload into the staging directory under a random name.
// From here on the avatar service owns the file and removes it.
func (h *UserHandler) stage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.CreateTemp(h.tmpDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		h.discard(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		h.discard(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return dst.Name(), nil
}

func (h *UserHandler) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.log.Warn().Err(err).Str("path", path).Msg("failed to remove staged upload")
	}
}
