package repositories

import (
	"context"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, bidType models.BidType, limit, offset int) ([]*models.Listing, error)
	ListActive(ctx context.Context, now time.Time) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error)
	UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price float64) error
	Upsert(ctx context.Context, listing *models.Listing) error
}

type listingRepo struct {
	db DB
}

func NewListingRepository(db DB) ListingRepository {
	return &listingRepo{db: db}
}

const listingColumns = `id, title, description, bid_type, product_category, product_sub_category,
	starting_price, current_price, ending_at, owner_id, thumbs, created_at, updated_at`

func (r *listingRepo) scanRow(row interface{ Scan(dest ...any) error }) (*models.Listing, error) {
	listing := &models.Listing{}
	err := row.Scan(&listing.ID, &listing.Title, &listing.Description, &listing.BidType,
		&listing.ProductCategory, &listing.ProductSubCategory, &listing.StartingPrice,
		&listing.CurrentPrice, &listing.EndingAt, &listing.OwnerID, &listing.Thumbs,
		&listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *listingRepo) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (id, title, description, bid_type, product_category, product_sub_category,
			starting_price, current_price, ending_at, owner_id, thumbs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, listing.ID, listing.Title, listing.Description,
		listing.BidType, listing.ProductCategory, listing.ProductSubCategory,
		listing.StartingPrice, listing.CurrentPrice, listing.EndingAt, listing.OwnerID,
		listing.Thumbs)
	return err
}

func (r *listingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return r.scanRow(r.db.QueryRow(ctx, query, id))
}

func (r *listingRepo) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET title = $1, description = $2, bid_type = $3, product_category = $4,
			product_sub_category = $5, starting_price = $6, current_price = $7,
			ending_at = $8, thumbs = $9, updated_at = NOW()
		WHERE id = $10
	`
	_, err := r.db.Exec(ctx, query, listing.Title, listing.Description, listing.BidType,
		listing.ProductCategory, listing.ProductSubCategory, listing.StartingPrice,
		listing.CurrentPrice, listing.EndingAt, listing.Thumbs, listing.ID)
	return err
}

func (r *listingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM listings WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *listingRepo) list(ctx context.Context, query string, args ...any) ([]*models.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (r *listingRepo) List(ctx context.Context, bidType models.BidType, limit, offset int) ([]*models.Listing, error) {
	if bidType == "" {
		return r.list(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE bid_type = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		bidType, limit, offset)
}

// ListActive returns listings whose deadline has not yet passed; the countdown
// ticker tracks exactly this set.
func (r *listingRepo) ListActive(ctx context.Context, now time.Time) ([]*models.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE ending_at > $1 ORDER BY ending_at ASC`, now)
}

func (r *listingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
}

func (r *listingRepo) UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price float64) error {
	query := `UPDATE listings SET current_price = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, price, id)
	return err
}

// Upsert is used by the upstream sync; synced rows keep their upstream IDs.
func (r *listingRepo) Upsert(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (id, title, description, bid_type, product_category, product_sub_category,
			starting_price, current_price, ending_at, owner_id, thumbs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			bid_type = EXCLUDED.bid_type,
			product_category = EXCLUDED.product_category,
			product_sub_category = EXCLUDED.product_sub_category,
			starting_price = EXCLUDED.starting_price,
			current_price = EXCLUDED.current_price,
			ending_at = EXCLUDED.ending_at,
			thumbs = EXCLUDED.thumbs,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, listing.ID, listing.Title, listing.Description,
		listing.BidType, listing.ProductCategory, listing.ProductSubCategory,
		listing.StartingPrice, listing.CurrentPrice, listing.EndingAt, listing.OwnerID,
		listing.Thumbs)
	return err
}
