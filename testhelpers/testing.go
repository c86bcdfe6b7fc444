package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for integration tests. Tests using
// it must skip under -short.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=mazadly_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestUser inserts a minimal user row and returns it.
func SetupTestUser(t *testing.T, db *TestDB) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@test.local",
		FirstName: "Test",
		LastName:  "User",
		Phone:     "0550000000",
		Wilaya:    "Alger",
		Type:      models.UserTypeIndividual,
	}
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, wilaya, type, created_at, updated_at)
		VALUES ($1, $2, '', $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, user.ID, user.Email,
		user.FirstName, user.LastName, user.Phone, user.Wilaya, user.Type)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SetupTestCategory inserts a category row, optionally parented.
func SetupTestCategory(t *testing.T, db *TestDB, parentID *uuid.UUID) uuid.UUID {
	t.Helper()

	categoryID := uuid.New()
	query := `
		INSERT INTO categories (id, name, type, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, categoryID, "Test Category "+categoryID.String()[:8],
		models.CategoryTypeProduct, parentID)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return categoryID
}

// SetupTestListing inserts an open auction listing ending in one hour.
func SetupTestListing(t *testing.T, db *TestDB, ownerID uuid.UUID, categoryID *uuid.UUID) *models.Listing {
	t.Helper()

	startingPrice := 1000.0
	listing := &models.Listing{
		ID:              uuid.New(),
		Title:           "Test Listing",
		Description:     "Test listing description",
		BidType:         models.BidTypeAuction,
		ProductCategory: categoryID,
		StartingPrice:   &startingPrice,
		EndingAt:        time.Now().Add(time.Hour),
		OwnerID:         ownerID,
	}
	query := `
		INSERT INTO listings (id, title, description, bid_type, product_category, starting_price, ending_at, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, listing.ID, listing.Title,
		listing.Description, listing.BidType, listing.ProductCategory,
		listing.StartingPrice, listing.EndingAt, listing.OwnerID)
	if err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}
	return listing
}
