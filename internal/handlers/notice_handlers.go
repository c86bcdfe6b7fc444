package handlers

import (
	"net/http"

	"mazadly/internal/common"
	"mazadly/internal/repositories"
	"mazadly/internal/services"

	"github.com/labstack/echo/v4"
)

// NoticeHandlers serves the profile-completion banner endpoints
type NoticeHandlers struct {
	noticeService services.ProfileNoticeService
	userRepo      repositories.UserRepository
}

// NewNoticeHandlers creates a new notice handlers instance
func NewNoticeHandlers(noticeService services.ProfileNoticeService, userRepo repositories.UserRepository) *NoticeHandlers {
	return &NoticeHandlers{
		noticeService: noticeService,
		userRepo:      userRepo,
	}
}

// Get returns the banner the user should currently see. A null notice means
// nothing is shown.
func (h *NoticeHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}

	notice, err := h.noticeService.NoticeFor(ctx, user)
	if err != nil {
		return common.SendServerError(c, "Failed to resolve notice")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notice": notice})
}

// Postpone hides the banner until the next login.
func (h *NoticeHandlers) Postpone(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}

	if err := h.noticeService.Postpone(ctx, user); err != nil {
		return common.SendServerError(c, "Failed to postpone notice")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// Dismiss permanently hides the banner. A failed persistence call returns an
// error so the client keeps showing it.
func (h *NoticeHandlers) Dismiss(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}

	if err := h.noticeService.Dismiss(ctx, user); err != nil {
		return common.SendServerError(c, "Failed to dismiss notice")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
