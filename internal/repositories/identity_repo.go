package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrIdentityNotFound is returned when a user has no identity record yet.
var ErrIdentityNotFound = errors.New("identity not found")

type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Identity, error)
	SetDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, doc *models.Attachment) error
	UpdateStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error
	UpdateCertificationStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error
}

type identityRepo struct {
	db DB
}

func NewIdentityRepository(db DB) IdentityRepository {
	return &identityRepo{db: db}
}

// Documents are stored as one JSONB column keyed by slot name; slots are few
// and always read together.
func (r *identityRepo) Create(ctx context.Context, identity *models.Identity) error {
	docs, err := json.Marshal(identity.Documents)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO identities (id, user_id, status, certification_status, documents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, identity.ID, identity.UserID, identity.Status,
		identity.CertificationStatus, docs)
	return err
}

func (r *identityRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Identity, error) {
	identity := &models.Identity{}
	var docs []byte
	query := `
		SELECT id, user_id, status, certification_status, documents, created_at, updated_at
		FROM identities
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&identity.ID, &identity.UserID,
		&identity.Status, &identity.CertificationStatus, &docs,
		&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &identity.Documents); err != nil {
			return nil, err
		}
	}
	if identity.Documents == nil {
		identity.Documents = make(map[models.DocumentField]*models.Attachment)
	}
	return identity, nil
}

func (r *identityRepo) SetDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, doc *models.Attachment) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	query := `
		UPDATE identities
		SET documents = jsonb_set(COALESCE(documents, '{}'::jsonb), ARRAY[$1::text], $2::jsonb),
			updated_at = NOW()
		WHERE user_id = $3
	`
	_, err = r.db.Exec(ctx, query, string(field), value, userID)
	return err
}

func (r *identityRepo) UpdateStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error {
	query := `UPDATE identities SET status = $1, updated_at = NOW() WHERE user_id = $2`
	_, err := r.db.Exec(ctx, query, status, userID)
	return err
}

func (r *identityRepo) UpdateCertificationStatus(ctx context.Context, userID uuid.UUID, status models.IdentityStatus) error {
	query := `UPDATE identities SET certification_status = $1, updated_at = NOW() WHERE user_id = $2`
	_, err := r.db.Exec(ctx, query, status, userID)
	return err
}
