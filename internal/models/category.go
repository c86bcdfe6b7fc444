package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType separates product listings from service listings.
type CategoryType string

const (
	CategoryTypeProduct CategoryType = "PRODUCT"
	CategoryTypeService CategoryType = "SERVICE"
)

type Category struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Type      CategoryType `json:"type" db:"type"`
	Thumb     *string      `json:"thumb,omitempty" db:"thumb"`
	ParentID  *uuid.UUID   `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	Children  []*Category  `json:"children,omitempty" db:"-"` // For nested responses
}

// CategoryTree is an immutable snapshot of the full hierarchy. Generation is a
// monotonic counter bumped on every refetch; descendant sets resolved against
// one generation must never be reused against another.
type CategoryTree struct {
	Roots      []*Category `json:"roots"`
	Generation uint64      `json:"generation"`
	FetchedAt  time.Time   `json:"fetched_at"`
}
