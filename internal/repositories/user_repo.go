package repositories

import (
	"context"
	"fmt"

	"mazadly/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	IncrementLoginCount(ctx context.Context, id uuid.UUID) (int, error)
	UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL *string) error
	UpdateCover(ctx context.Context, id uuid.UUID, cover *models.Attachment) error
	SetVerification(ctx context.Context, id uuid.UUID, verified, certified, hasIdentity bool) error
	DismissCompletionNote(ctx context.Context, id uuid.UUID) error
	IncrementNotePostponed(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, wilaya, type,
	company_name, activity_sector, is_verified, is_certified, is_has_identity, login_count,
	photo_url, cover, note_dismissed, note_postponed_count, created_at, updated_at`

func (r *userRepo) scanRow(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Phone, &user.Wilaya, &user.Type, &user.CompanyName, &user.ActivitySector,
		&user.IsVerified, &user.IsCertified, &user.IsHasIdentity, &user.LoginCount,
		&user.PhotoURL, &user.Cover, &user.ProfileCompletionNote.Dismissed, &user.ProfileCompletionNote.PostponedCount,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	var count int
	emailCheckQuery := `SELECT COUNT(*) FROM users WHERE email = $1`
	if err := r.db.QueryRow(ctx, emailCheckQuery, user.Email).Scan(&count); err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("user with email '%s' already exists", user.Email)
	}

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, wilaya, type,
			company_name, activity_sector, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.Phone, user.Wilaya, user.Type, user.CompanyName, user.ActivitySector)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanRow(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanRow(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, wilaya = $4, type = $5,
			company_name = $6, activity_sector = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query, user.FirstName, user.LastName, user.Phone, user.Wilaya,
		user.Type, user.CompanyName, user.ActivitySector, user.ID)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// IncrementLoginCount bumps the counter on successful login and returns the
// new value; the profile-completion heuristic keys off it.
func (r *userRepo) IncrementLoginCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `UPDATE users SET login_count = login_count + 1, updated_at = NOW() WHERE id = $1 RETURNING login_count`
	err := r.db.QueryRow(ctx, query, id).Scan(&count)
	return count, err
}

func (r *userRepo) UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL *string) error {
	query := `UPDATE users SET photo_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, photoURL, id)
	return err
}

func (r *userRepo) UpdateCover(ctx context.Context, id uuid.UUID, cover *models.Attachment) error {
	query := `UPDATE users SET cover = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, cover, id)
	return err
}

func (r *userRepo) SetVerification(ctx context.Context, id uuid.UUID, verified, certified, hasIdentity bool) error {
	query := `UPDATE users SET is_verified = $1, is_certified = $2, is_has_identity = $3, updated_at = NOW() WHERE id = $4`
	_, err := r.db.Exec(ctx, query, verified, certified, hasIdentity, id)
	return err
}

func (r *userRepo) DismissCompletionNote(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET note_dismissed = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) IncrementNotePostponed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET note_postponed_count = note_postponed_count + 1, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
