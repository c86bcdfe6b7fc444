package handlers

import (
	"net/http"

	"mazadly/internal/common"
	"mazadly/internal/models"
	"mazadly/internal/repositories"
	"mazadly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryRepo repositories.CategoryRepository
	catalogSvc   services.CatalogService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryRepo repositories.CategoryRepository, catalogSvc services.CatalogService) *CategoryHandlers {
	return &CategoryHandlers{
		categoryRepo: categoryRepo,
		catalogSvc:   catalogSvc,
	}
}

// Tree returns the nested category hierarchy snapshot.
func (h *CategoryHandlers) Tree(c echo.Context) error {
	ctx := c.Request().Context()

	tree, err := h.catalogSvc.Tree(ctx)
	if err != nil {
		return common.SendServerError(c, "Failed to load categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": tree.Roots,
		"fetched_at": tree.FetchedAt,
	})
}

// List returns all categories as flat rows.
func (h *CategoryHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.categoryRepo.ListAll(ctx)
	if err != nil {
		return common.SendServerError(c, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

// Get returns one category by id.
func (h *CategoryHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Category")
	}
	return c.JSON(http.StatusOK, category)
}

// Children returns a category's direct children.
func (h *CategoryHandlers) Children(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	children, err := h.categoryRepo.ListChildren(ctx, id)
	if err != nil {
		return common.SendServerError(c, "Failed to list subcategories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": children})
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required"`
	Type     string     `json:"type" validate:"required"`
	Thumb    *string    `json:"thumb"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create adds a category and invalidates the tree snapshot.
func (h *CategoryHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	categoryType := models.CategoryType(req.Type)
	if categoryType != models.CategoryTypeProduct && categoryType != models.CategoryTypeService {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be PRODUCT or SERVICE")
	}

	category := &models.Category{
		ID:       uuid.New(),
		Name:     req.Name,
		Type:     categoryType,
		Thumb:    req.Thumb,
		ParentID: req.ParentID,
	}
	if err := h.categoryRepo.Create(ctx, category); err != nil {
		return common.SendServerError(c, "Failed to create category")
	}

	if _, err := h.catalogSvc.RefreshTree(ctx); err != nil {
		c.Logger().Warnf("tree refresh after category create failed: %v", err)
	}
	return c.JSON(http.StatusCreated, category)
}

// Delete removes a category.
func (h *CategoryHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.categoryRepo.Delete(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete category")
	}
	if _, err := h.catalogSvc.RefreshTree(ctx); err != nil {
		c.Logger().Warnf("tree refresh after category delete failed: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}
