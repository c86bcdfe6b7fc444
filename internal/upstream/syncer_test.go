package upstream

import (
	"context"
	"sync"
	"testing"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateFetcher blocks the first FetchCategories call until released, so tests
// can overtake a slow sync with a fresher one and control which response lands
// first.
type gateFetcher struct {
	mu         sync.Mutex
	categories []*models.Category
	calls      int

	started chan struct{}
	release chan struct{}
}

func (f *gateFetcher) FetchCategories(ctx context.Context) ([]*models.Category, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	result := f.categories
	f.mu.Unlock()

	if first && f.started != nil {
		f.started <- struct{}{}
		<-f.release
		// The slow call answers with the payload captured at call time.
		return result, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

func (f *gateFetcher) FetchListings(ctx context.Context, bidType models.BidType) ([]*models.Listing, error) {
	return nil, nil
}

// recordingCategoryRepo captures ReplaceAll calls in order.
type recordingCategoryRepo struct {
	mu       sync.Mutex
	replaced [][]*models.Category
}

func (r *recordingCategoryRepo) Create(ctx context.Context, c *models.Category) error  { return nil }
func (r *recordingCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, nil
}
func (r *recordingCategoryRepo) Update(ctx context.Context, c *models.Category) error { return nil }
func (r *recordingCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (r *recordingCategoryRepo) ListAll(ctx context.Context) ([]*models.Category, error) {
	return nil, nil
}
func (r *recordingCategoryRepo) ListRoots(ctx context.Context) ([]*models.Category, error) {
	return nil, nil
}
func (r *recordingCategoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error) {
	return nil, nil
}
func (r *recordingCategoryRepo) ReplaceAll(ctx context.Context, categories []*models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced = append(r.replaced, categories)
	return nil
}

// recordingListingRepo captures Upsert calls.
type recordingListingRepo struct {
	mu       sync.Mutex
	upserted []*models.Listing
}

func (r *recordingListingRepo) Create(ctx context.Context, l *models.Listing) error { return nil }
func (r *recordingListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return nil, nil
}
func (r *recordingListingRepo) Update(ctx context.Context, l *models.Listing) error { return nil }
func (r *recordingListingRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (r *recordingListingRepo) List(ctx context.Context, bidType models.BidType, limit, offset int) ([]*models.Listing, error) {
	return nil, nil
}
func (r *recordingListingRepo) ListActive(ctx context.Context, now time.Time) ([]*models.Listing, error) {
	return nil, nil
}
func (r *recordingListingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error) {
	return nil, nil
}
func (r *recordingListingRepo) UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price float64) error {
	return nil
}
func (r *recordingListingRepo) Upsert(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, listing)
	return nil
}

// noopCache satisfies caching.CacheService; sync tests only care about writes.
type noopCache struct{}

func (noopCache) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return nil, nil
}
func (noopCache) SetListing(ctx context.Context, l *models.Listing, ttl time.Duration) error {
	return nil
}
func (noopCache) DeleteListing(ctx context.Context, id uuid.UUID) error { return nil }
func (noopCache) GetCategoryTree(ctx context.Context) (*models.CategoryTree, error) {
	return nil, nil
}
func (noopCache) SetCategoryTree(ctx context.Context, tree *models.CategoryTree, ttl time.Duration) error {
	return nil
}
func (noopCache) DeleteCategoryTree(ctx context.Context) error { return nil }
func (noopCache) SetPostponedLoginCount(ctx context.Context, userID uuid.UUID, loginCount int, ttl time.Duration) error {
	return nil
}
func (noopCache) GetPostponedLoginCount(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	return 0, false, nil
}
func (noopCache) ClearPostponedLoginCount(ctx context.Context, userID uuid.UUID) error { return nil }
func (noopCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}
func (noopCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (noopCache) GetString(ctx context.Context, key string) (string, error) { return "", nil }
func (noopCache) Delete(ctx context.Context, key string) error              { return nil }

func TestSyncCategories_WritesFetchedSet(t *testing.T) {
	fetcher := &gateFetcher{
		categories: []*models.Category{{ID: uuid.New(), Name: "Cheptel", Type: models.CategoryTypeProduct}},
	}
	repo := &recordingCategoryRepo{}
	syncer := NewSyncer(fetcher, repo, &recordingListingRepo{}, noopCache{})

	require.NoError(t, syncer.SyncCategories(context.Background()))
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, "Cheptel", repo.replaced[0][0].Name)
}

func TestSyncCategories_StaleResponseDropped(t *testing.T) {
	ctx := context.Background()
	fetcher := &gateFetcher{
		categories: []*models.Category{{ID: uuid.New(), Name: "stale", Type: models.CategoryTypeProduct}},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	repo := &recordingCategoryRepo{}
	syncer := NewSyncer(fetcher, repo, &recordingListingRepo{}, noopCache{})

	// The slow sync takes its generation and parks at the network fetch.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, syncer.SyncCategories(ctx))
	}()
	<-fetcher.started

	// A fresher sync overtakes it and writes first.
	fetcher.mu.Lock()
	fetcher.categories = []*models.Category{{ID: uuid.New(), Name: "fresh", Type: models.CategoryTypeProduct}}
	fetcher.mu.Unlock()
	require.NoError(t, syncer.SyncCategories(ctx))

	// The slow response arrives late and must be dropped, not written.
	close(fetcher.release)
	wg.Wait()

	require.Len(t, repo.replaced, 1)
	assert.Equal(t, "fresh", repo.replaced[0][0].Name)
}

func TestSyncListings_UpsertsAllBidTypes(t *testing.T) {
	fetcher := &allTypesFetcher{}
	listingRepo := &recordingListingRepo{}
	syncer := NewSyncer(fetcher, &recordingCategoryRepo{}, listingRepo, noopCache{})

	require.NoError(t, syncer.SyncListings(context.Background()))

	require.Len(t, listingRepo.upserted, 3)
	types := map[models.BidType]bool{}
	for _, l := range listingRepo.upserted {
		types[l.BidType] = true
	}
	assert.Len(t, types, 3)
}

type allTypesFetcher struct{}

func (allTypesFetcher) FetchCategories(ctx context.Context) ([]*models.Category, error) {
	return nil, nil
}

func (allTypesFetcher) FetchListings(ctx context.Context, bidType models.BidType) ([]*models.Listing, error) {
	return []*models.Listing{{ID: uuid.New(), Title: string(bidType), BidType: bidType}}, nil
}
