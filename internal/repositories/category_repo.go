package repositories

import (
	"context"

	"mazadly/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*models.Category, error)
	ListRoots(ctx context.Context) ([]*models.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error)
	ReplaceAll(ctx context.Context, categories []*models.Category) error
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, name, type, thumb, parent_id, created_at, updated_at`

func (r *categoryRepo) scanRow(row interface{ Scan(dest ...any) error }) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(&category.ID, &category.Name, &category.Type, &category.Thumb,
		&category.ParentID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, type, thumb, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Type,
		category.Thumb, category.ParentID)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return r.scanRow(r.db.QueryRow(ctx, query, id))
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, type = $2, thumb = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Type, category.Thumb,
		category.ParentID, category.ID)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *categoryRepo) list(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*models.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
}

func (r *categoryRepo) ListRoots(ctx context.Context) ([]*models.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY name ASC`)
}

func (r *categoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name ASC`, parentID)
}

// ReplaceAll swaps in a freshly synced category set atomically so readers
// never observe a half-applied tree.
func (r *categoryRepo) ReplaceAll(ctx context.Context, categories []*models.Category) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM categories`); err != nil {
		return err
	}

	insert := `
		INSERT INTO categories (id, name, type, thumb, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	for _, category := range categories {
		if _, err := tx.Exec(ctx, insert, category.ID, category.Name, category.Type,
			category.Thumb, category.ParentID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
