package handlers

import (
	"net/http"

	"mazadly/internal/common"
	"mazadly/internal/models"
	"mazadly/internal/repositories"
	"mazadly/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles profile-related HTTP requests
type UserHandlers struct {
	userRepo     repositories.UserRepository
	mediaService services.MediaService
	normalizer   *services.URLNormalizer
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userRepo repositories.UserRepository, mediaService services.MediaService, normalizer *services.URLNormalizer) *UserHandlers {
	return &UserHandlers{
		userRepo:     userRepo,
		mediaService: mediaService,
		normalizer:   normalizer,
	}
}

// profileView is the profile shape served to clients: resolved image URLs and
// the derived badge instead of raw attachment descriptors.
type profileView struct {
	*models.User
	AvatarURL string           `json:"avatar_url"`
	CoverURL  string           `json:"cover_url,omitempty"`
	Badge     models.BadgeKind `json:"badge"`
}

func (h *UserHandlers) view(user *models.User) profileView {
	return profileView{
		User:      user,
		AvatarURL: h.normalizer.AvatarURL(user),
		CoverURL:  h.normalizer.CoverURL(user),
		Badge:     user.Badge(),
	}
}

// Profile returns the authenticated user's profile with resolved media URLs.
func (h *UserHandlers) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, h.view(user))
}

// PublicProfile returns another user's profile by id.
func (h *UserHandlers) PublicProfile(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, h.view(user))
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Phone          *string `json:"phone"`
	Wilaya         *string `json:"wilaya"`
	CompanyName    *string `json:"company_name"`
	ActivitySector *string `json:"activity_sector"`
}

// UpdateProfile applies a partial profile update.
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Wilaya != nil {
		user.Wilaya = *req.Wilaya
	}
	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}
	if req.ActivitySector != nil {
		user.ActivitySector = req.ActivitySector
	}

	if err := h.userRepo.Update(ctx, user); err != nil {
		return common.SendServerError(c, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, h.view(user))
}

// UploadAvatar stores a new avatar image and records its public URL on the
// profile.
func (h *UserHandlers) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	attachment, err := h.mediaService.UploadAvatar(ctx, userID, fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		return common.SendServerError(c, "Failed to store avatar")
	}

	if err := h.userRepo.UpdatePhotoURL(ctx, userID, &attachment.URL); err != nil {
		return common.SendServerError(c, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"avatar":     attachment,
		"avatar_url": attachment.FullURL,
	})
}

// UploadCover stores a new profile cover image.
func (h *UserHandlers) UploadCover(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cover file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	attachment, err := h.mediaService.UploadCover(ctx, userID, fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		return common.SendServerError(c, "Failed to store cover")
	}

	if err := h.userRepo.UpdateCover(ctx, userID, attachment); err != nil {
		return common.SendServerError(c, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cover":     attachment,
		"cover_url": attachment.FullURL,
	})
}
