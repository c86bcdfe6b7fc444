package services

import (
	"context"
	"io"
	"sync"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingRepository) List(ctx context.Context, bidType models.BidType, limit, offset int) ([]*models.Listing, error) {
	args := m.Called(ctx, bidType, limit, offset)
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListActive(ctx context.Context, now time.Time) ([]*models.Listing, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price float64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockListingRepository) Upsert(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListRoots(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ReplaceAll(ctx context.Context, categories []*models.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) IncrementLoginCount(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL *string) error {
	args := m.Called(ctx, id, photoURL)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateCover(ctx context.Context, id uuid.UUID, cover *models.Attachment) error {
	args := m.Called(ctx, id, cover)
	return args.Error(0)
}

func (m *MockUserRepository) SetVerification(ctx context.Context, id uuid.UUID, verified, certified, hasIdentity bool) error {
	args := m.Called(ctx, id, verified, certified, hasIdentity)
	return args.Error(0)
}

func (m *MockUserRepository) DismissCompletionNote(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementNotePostponed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockIdentityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockIdentityRepository) SetDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, doc *models.Attachment) error {
	args := m.Called(ctx, userID, field, doc)
	return args.Error(0)
}

func (m *MockIdentityRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *MockIdentityRepository) UpdateCertificationStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	args := m.Called(ctx, userID, filename, reader, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockMediaService) UploadCover(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	args := m.Called(ctx, userID, filename, reader, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockMediaService) UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	args := m.Called(ctx, userID, field, filename, reader, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockMediaService) DocumentURL(ctx context.Context, doc *models.Attachment, expiry time.Duration) (string, error) {
	args := m.Called(ctx, doc, expiry)
	return args.String(0), args.Error(1)
}

// memoryCache is an in-memory CacheService used across the service tests so
// cache interactions can be asserted without a Redis instance.
type memoryCache struct {
	mu        sync.Mutex
	listings  map[uuid.UUID]*models.Listing
	tree      *models.CategoryTree
	postponed map[uuid.UUID]int
	strings   map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		listings:  make(map[uuid.UUID]*models.Listing),
		postponed: make(map[uuid.UUID]int),
		strings:   make(map[string]string),
	}
}

func (c *memoryCache) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listings[listingID], nil
}

func (c *memoryCache) SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings[listing.ID] = listing
	return nil
}

func (c *memoryCache) DeleteListing(ctx context.Context, listingID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listings, listingID)
	return nil
}

func (c *memoryCache) GetCategoryTree(ctx context.Context) (*models.CategoryTree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree, nil
}

func (c *memoryCache) SetCategoryTree(ctx context.Context, tree *models.CategoryTree, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = tree
	return nil
}

func (c *memoryCache) DeleteCategoryTree(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = nil
	return nil
}

func (c *memoryCache) SetPostponedLoginCount(ctx context.Context, userID uuid.UUID, loginCount int, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postponed[userID] = loginCount
	return nil
}

func (c *memoryCache) GetPostponedLoginCount(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.postponed[userID]
	return count, ok, nil
}

func (c *memoryCache) ClearPostponedLoginCount(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.postponed, userID)
	return nil
}

func (c *memoryCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

func (c *memoryCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strings[key] = value
	return nil
}

func (c *memoryCache) GetString(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strings[key], nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.strings, key)
	return nil
}

// Shared pointer helpers

func stringPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
