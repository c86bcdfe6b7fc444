package handlers

import (
	"errors"
	"net/http"
	"time"

	"mazadly/internal/common"
	"mazadly/internal/models"
	"mazadly/internal/services"

	"github.com/labstack/echo/v4"
)

// IdentityHandlers handles identity-verification HTTP requests
type IdentityHandlers struct {
	identityService services.IdentityService
	mediaService    services.MediaService
}

// NewIdentityHandlers creates a new identity handlers instance
func NewIdentityHandlers(identityService services.IdentityService, mediaService services.MediaService) *IdentityHandlers {
	return &IdentityHandlers{
		identityService: identityService,
		mediaService:    mediaService,
	}
}

// Get returns the user's identity record, creating an empty draft on first
// access.
func (h *IdentityHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	identity, err := h.identityService.Get(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load identity")
	}
	return c.JSON(http.StatusOK, identity)
}

// UploadDocument stores one identity document into its named slot. A second
// upload for the same slot while one is running is refused with 409.
func (h *IdentityHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	field := models.DocumentField(c.Param("field"))
	if !models.IsValidDocumentField(field) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown document field")
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "document file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	attachment, err := h.identityService.UploadDocument(ctx, userID, field, fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrUploadInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return common.SendServerError(c, "Failed to store document")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"field":    field,
		"document": attachment,
	})
}

// DocumentURL hands out a short-lived review link for one uploaded document.
func (h *IdentityHandlers) DocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	field := models.DocumentField(c.Param("field"))
	if !models.IsValidDocumentField(field) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown document field")
	}

	identity, err := h.identityService.Get(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load identity")
	}
	doc, ok := identity.Documents[field]
	if !ok || doc == nil {
		return common.SendNotFoundError(c, "Document")
	}

	url, err := h.mediaService.DocumentURL(ctx, doc, 15*time.Minute)
	if err != nil {
		return common.SendServerError(c, "Failed to build document link")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"url": url})
}

// Submit moves the identity into review.
func (h *IdentityHandlers) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.identityService.Submit(ctx, userID); err != nil {
		if errors.Is(err, services.ErrNoDocuments) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return common.SendServerError(c, "Failed to submit identity")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": models.IdentityWaiting})
}

// SubmitCertification requests certification for an already submitted
// identity.
func (h *IdentityHandlers) SubmitCertification(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.identityService.SubmitCertification(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"certification_status": models.IdentityWaiting})
}
