package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mazadly/internal/caching"
	"mazadly/internal/models"
	"mazadly/internal/repositories"

	"github.com/google/uuid"
)

// DefaultPageSize is the fixed sidebar page size.
const DefaultPageSize = 9

// ListingPage is one rendered slice of the filtered result set.
type ListingPage struct {
	Items      []*models.Listing `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

type ListingService interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error)
	Browse(ctx context.Context, filter models.ListingFilter, page int) (*ListingPage, error)
	PlaceBid(ctx context.Context, listingID uuid.UUID, amount float64) error
}

type listingService struct {
	listingRepo  repositories.ListingRepository
	catalogSvc   CatalogService
	cacheService caching.CacheService
}

func NewListingService(listingRepo repositories.ListingRepository, catalogSvc CatalogService, cacheService caching.CacheService) ListingService {
	return &listingService{
		listingRepo:  listingRepo,
		catalogSvc:   catalogSvc,
		cacheService: cacheService,
	}
}

func (s *listingService) Create(ctx context.Context, listing *models.Listing) error {
	if listing.Title == "" {
		return errors.New("listing title is required")
	}
	switch listing.BidType {
	case models.BidTypeAuction, models.BidTypeTender, models.BidTypeDirectSale:
	default:
		return fmt.Errorf("unknown bid type %q", listing.BidType)
	}
	if listing.EndingAt.IsZero() {
		return errors.New("listing deadline is required")
	}
	listing.ID = uuid.New()
	return s.listingRepo.Create(ctx, listing)
}

func (s *listingService) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if cached, err := s.cacheService.GetListing(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors shouldn't fail the operation
		fmt.Printf("Cache error for listing %s: %v\n", id.String(), err)
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetListing(ctx, listing, 15*time.Minute); cacheErr != nil {
		fmt.Printf("Failed to cache listing %s: %v\n", id.String(), cacheErr)
	}

	return listing, nil
}

func (s *listingService) Update(ctx context.Context, listing *models.Listing) error {
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteListing(ctx, listing.ID); cacheErr != nil {
		fmt.Printf("Failed to invalidate cache for listing %s: %v\n", listing.ID.String(), cacheErr)
	}
	return nil
}

func (s *listingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteListing(ctx, id); cacheErr != nil {
		fmt.Printf("Failed to invalidate cache for listing %s: %v\n", id.String(), cacheErr)
	}
	return nil
}

func (s *listingService) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error) {
	return s.listingRepo.ListByOwner(ctx, ownerID, limit, offset)
}

// Browse loads the candidate set for the requested bid type, runs the filter
// pipeline against the current category snapshot, and slices out one page.
func (s *listingService) Browse(ctx context.Context, filter models.ListingFilter, page int) (*ListingPage, error) {
	listings, err := s.listingRepo.List(ctx, filter.BidType, 1000, 0)
	if err != nil {
		return nil, err
	}

	tree, err := s.catalogSvc.Tree(ctx)
	if err != nil {
		return nil, err
	}

	var scope map[uuid.UUID]struct{}
	if filter.CategoryID != nil {
		scope = s.catalogSvc.Descendants(tree, *filter.CategoryID)
	}

	filtered := ApplyPipeline(listings, filter, scope)
	return Paginate(filtered, page, DefaultPageSize), nil
}

func (s *listingService) PlaceBid(ctx context.Context, listingID uuid.UUID, amount float64) error {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if time.Now().After(listing.EndingAt) {
		return errors.New("listing has ended")
	}
	if amount <= listing.EffectivePrice() {
		return errors.New("bid must exceed the current price")
	}
	if err := s.listingRepo.UpdateCurrentPrice(ctx, listingID, amount); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteListing(ctx, listingID); cacheErr != nil {
		fmt.Printf("Failed to invalidate cache for listing %s: %v\n", listingID.String(), cacheErr)
	}
	return nil
}

// ApplyPipeline runs the fixed filter sequence: bid type, category scope,
// subcategory, free-text query, then the sort stage. Every stage preserves
// input order; only an explicit price sort reorders, and that sort is stable
// with respect to ties. The function is pure: same inputs, same output.
func ApplyPipeline(listings []*models.Listing, filter models.ListingFilter, categoryScope map[uuid.UUID]struct{}) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	for _, listing := range listings {
		if filter.BidType != "" && listing.BidType != filter.BidType {
			continue
		}
		if filter.CategoryID != nil && !inCategoryScope(listing, *filter.CategoryID, categoryScope) {
			continue
		}
		if filter.SubCategoryID != nil {
			if listing.ProductSubCategory == nil || *listing.ProductSubCategory != *filter.SubCategoryID {
				continue
			}
		}
		if query != "" && !matchesQuery(listing, query) {
			continue
		}
		result = append(result, listing)
	}

	switch filter.Sort {
	case models.SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].EffectivePrice() < result[j].EffectivePrice()
		})
	case models.SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].EffectivePrice() > result[j].EffectivePrice()
		})
	}

	return result
}

func inCategoryScope(listing *models.Listing, selectedID uuid.UUID, scope map[uuid.UUID]struct{}) bool {
	if listing.ProductCategory == nil {
		return false
	}
	if *listing.ProductCategory == selectedID {
		return true
	}
	_, ok := scope[*listing.ProductCategory]
	return ok
}

func matchesQuery(listing *models.Listing, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(listing.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(listing.Description), lowerQuery)
}

// Paginate slices one page out of the filtered set. The page index is clamped
// into [1, totalPages] so a stale page number from before a filter change can
// never address items beyond the result length.
func Paginate(listings []*models.Listing, page, pageSize int) *ListingPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(listings)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &ListingPage{
		Items:      listings[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// FilterSession tracks a browsing session's filter state. Changing any filter
// or the sort order resets the page back to 1.
type FilterSession struct {
	Filter models.ListingFilter
	Page   int
}

func NewFilterSession() *FilterSession {
	return &FilterSession{Page: 1}
}

func (fs *FilterSession) SetBidType(bidType models.BidType) {
	if fs.Filter.BidType == bidType {
		return
	}
	fs.Filter.BidType = bidType
	fs.Page = 1
}

func (fs *FilterSession) SetCategory(id *uuid.UUID) {
	if uuidPtrEqual(fs.Filter.CategoryID, id) {
		return
	}
	fs.Filter.CategoryID = id
	fs.Filter.SubCategoryID = nil
	fs.Page = 1
}

func (fs *FilterSession) SetSubCategory(id *uuid.UUID) {
	if uuidPtrEqual(fs.Filter.SubCategoryID, id) {
		return
	}
	fs.Filter.SubCategoryID = id
	fs.Page = 1
}

func (fs *FilterSession) SetQuery(query string) {
	if fs.Filter.Query == query {
		return
	}
	fs.Filter.Query = query
	fs.Page = 1
}

func (fs *FilterSession) SetSort(sortOption models.SortOption) {
	if fs.Filter.Sort == sortOption {
		return
	}
	fs.Filter.Sort = sortOption
	fs.Page = 1
}

func (fs *FilterSession) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	fs.Page = page
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
