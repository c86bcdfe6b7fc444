package upstream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"mazadly/internal/caching"
	"mazadly/internal/models"
	"mazadly/internal/repositories"
)

// Fetcher is the slice of Client the syncer needs; tests substitute it.
type Fetcher interface {
	FetchCategories(ctx context.Context) ([]*models.Category, error)
	FetchListings(ctx context.Context, bidType models.BidType) ([]*models.Listing, error)
}

// Syncer mirrors legacy API data into local storage. Concurrent syncs of the
// same resource may race on the network; each sync takes a generation number
// before fetching and only the holder of the latest generation is allowed to
// write, so a slow stale response can never overwrite fresher state.
type Syncer struct {
	client       Fetcher
	categoryRepo repositories.CategoryRepository
	listingRepo  repositories.ListingRepository
	cacheService caching.CacheService

	categoryGen atomic.Uint64
	listingGen  atomic.Uint64
	writeMu     sync.Mutex
}

func NewSyncer(client Fetcher, categoryRepo repositories.CategoryRepository, listingRepo repositories.ListingRepository, cacheService caching.CacheService) *Syncer {
	return &Syncer{
		client:       client,
		categoryRepo: categoryRepo,
		listingRepo:  listingRepo,
		cacheService: cacheService,
	}
}

// SyncCategories replaces the local category set with the upstream tree and
// invalidates the cached snapshot so the next read rebuilds under a new
// generation.
func (s *Syncer) SyncCategories(ctx context.Context) error {
	gen := s.categoryGen.Add(1)

	categories, err := s.client.FetchCategories(ctx)
	if err != nil {
		return fmt.Errorf("category sync fetch failed: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if gen != s.categoryGen.Load() {
		log.Printf("category sync %d superseded, dropping response", gen)
		return nil
	}

	if err := s.categoryRepo.ReplaceAll(ctx, categories); err != nil {
		return fmt.Errorf("category sync write failed: %w", err)
	}
	if cacheErr := s.cacheService.DeleteCategoryTree(ctx); cacheErr != nil {
		log.Printf("failed to invalidate category tree cache: %v", cacheErr)
	}
	return nil
}

// SyncListings upserts every bid type's listings.
func (s *Syncer) SyncListings(ctx context.Context) error {
	gen := s.listingGen.Add(1)

	var fetched []*models.Listing
	for _, bidType := range []models.BidType{models.BidTypeAuction, models.BidTypeTender, models.BidTypeDirectSale} {
		listings, err := s.client.FetchListings(ctx, bidType)
		if err != nil {
			return fmt.Errorf("listing sync fetch failed for %s: %w", bidType, err)
		}
		fetched = append(fetched, listings...)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if gen != s.listingGen.Load() {
		log.Printf("listing sync %d superseded, dropping response", gen)
		return nil
	}

	for _, listing := range fetched {
		if err := s.listingRepo.Upsert(ctx, listing); err != nil {
			return fmt.Errorf("listing sync write failed for %s: %w", listing.ID, err)
		}
		if cacheErr := s.cacheService.DeleteListing(ctx, listing.ID); cacheErr != nil {
			log.Printf("failed to invalidate listing cache for %s: %v", listing.ID, cacheErr)
		}
	}
	return nil
}
