package handlers

import (
	"net/http"
	"time"

	"mazadly/internal/common"
	"mazadly/internal/models"
	"mazadly/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListingHandlers handles listing-related HTTP requests
type ListingHandlers struct {
	listingService services.ListingService
	countdowns     *services.CountdownEngine
}

// NewListingHandlers creates a new listing handlers instance
func NewListingHandlers(listingService services.ListingService, countdowns *services.CountdownEngine) *ListingHandlers {
	return &ListingHandlers{
		listingService: listingService,
		countdowns:     countdowns,
	}
}

// BrowseRequest represents the listing browse query parameters
type BrowseRequest struct {
	BidType       string `query:"bid_type"`
	CategoryID    string `query:"category_id"`
	SubCategoryID string `query:"sub_category_id"`
	Query         string `query:"q"`
	Sort          string `query:"sort"`
	Page          int    `query:"page"`
}

// Browse runs the filter pipeline and returns one page of results.
func (h *ListingHandlers) Browse(c echo.Context) error {
	ctx := c.Request().Context()

	var req BrowseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := models.ListingFilter{
		Query: common.SanitizeSearchQuery(req.Query),
	}

	switch models.BidType(req.BidType) {
	case models.BidTypeAuction, models.BidTypeTender, models.BidTypeDirectSale:
		filter.BidType = models.BidType(req.BidType)
	case "":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "bid_type must be AUCTION, TENDER or DIRECT_SALE")
	}

	if req.CategoryID != "" {
		id, err := common.ValidateUUID(req.CategoryID, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.CategoryID = &id
	}
	if req.SubCategoryID != "" {
		id, err := common.ValidateUUID(req.SubCategoryID, "sub_category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.SubCategoryID = &id
	}

	switch models.SortOption(req.Sort) {
	case models.SortPriceAsc, models.SortPriceDesc:
		filter.Sort = models.SortOption(req.Sort)
	default:
		filter.Sort = models.SortDefault
	}

	page, err := h.listingService.Browse(ctx, filter, req.Page)
	if err != nil {
		return common.SendServerError(c, "Failed to browse listings")
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns one listing together with its live countdown, when tracked.
func (h *ListingHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing, err := h.listingService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Listing")
	}

	response := map[string]interface{}{"listing": listing}
	if state, ok := h.countdowns.StateFor(id); ok {
		response["countdown"] = state
	}
	return c.JSON(http.StatusOK, response)
}

// CreateListingRequest represents the listing creation payload
type CreateListingRequest struct {
	Title              string     `json:"title" validate:"required"`
	Description        string     `json:"description"`
	BidType            string     `json:"bid_type" validate:"required"`
	ProductCategory    *uuid.UUID `json:"product_category"`
	ProductSubCategory *uuid.UUID `json:"product_sub_category"`
	StartingPrice      *float64   `json:"starting_price"`
	EndingAt           time.Time  `json:"ending_at" validate:"required"`
	Thumbs             []string   `json:"thumbs"`
}

// Create publishes a new listing owned by the authenticated user and starts
// tracking its countdown right away.
func (h *ListingHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	listing := &models.Listing{
		Title:              req.Title,
		Description:        req.Description,
		BidType:            models.BidType(req.BidType),
		ProductCategory:    req.ProductCategory,
		ProductSubCategory: req.ProductSubCategory,
		StartingPrice:      req.StartingPrice,
		EndingAt:           req.EndingAt,
		OwnerID:            userID,
		Thumbs:             req.Thumbs,
	}
	if err := h.listingService.Create(ctx, listing); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.countdowns.Track(listing.ID, listing.EndingAt)
	return c.JSON(http.StatusCreated, listing)
}

// Delete removes a listing the authenticated user owns.
func (h *ListingHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing, err := h.listingService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Listing")
	}
	if listing.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the owner can delete a listing")
	}

	if err := h.listingService.Delete(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete listing")
	}
	h.countdowns.Untrack(id)
	return c.NoContent(http.StatusNoContent)
}

// MyListings returns the authenticated user's own listings.
func (h *ListingHandlers) MyListings(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ValidatePaginationParams(50, 0)
	listings, err := h.listingService.ListByOwner(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list listings")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"listings": listings})
}

// PlaceBidRequest represents the bid payload
type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// PlaceBid records a bid on an open listing.
func (h *ListingHandlers) PlaceBid(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetUserIDFromContext(ctx); !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	if err := h.listingService.PlaceBid(ctx, id, req.Amount); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// Countdowns returns the full countdown snapshot keyed by listing id.
func (h *ListingHandlers) Countdowns(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"countdowns": h.countdowns.Snapshot(),
	})
}

// Countdown returns the countdown for one listing.
func (h *ListingHandlers) Countdown(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "listing id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	state, ok := h.countdowns.StateFor(id)
	if !ok {
		return common.SendNotFoundError(c, "Countdown")
	}
	return c.JSON(http.StatusOK, state)
}
