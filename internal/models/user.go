package models

import (
	"time"

	"github.com/google/uuid"
)

// UserType mirrors the account kinds the platform registers.
type UserType string

const (
	UserTypeIndividual UserType = "PARTICULIER"
	UserTypeCompany    UserType = "COMPANY"
)

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Phone          string    `json:"phone" db:"phone"`
	Wilaya         string    `json:"wilaya" db:"wilaya"`
	Type           UserType  `json:"type" db:"type"`
	CompanyName    *string   `json:"company_name" db:"company_name"`
	ActivitySector *string   `json:"activity_sector" db:"activity_sector"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	IsCertified    bool      `json:"is_certified" db:"is_certified"`
	IsHasIdentity  bool      `json:"is_has_identity" db:"is_has_identity"`
	LoginCount     int       `json:"login_count" db:"login_count"`

	PhotoURL *string     `json:"photo_url" db:"photo_url"`
	Avatar   *Attachment `json:"avatar,omitempty" db:"-"`
	Cover    *Attachment `json:"cover,omitempty" db:"-"`

	ProfileCompletionNote ProfileCompletionNote `json:"profile_completion_note" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileCompletionNote records the persistent dismissal state of the
// "complete your profile" banner. Session-scoped postponement lives in Redis,
// not here.
type ProfileCompletionNote struct {
	Dismissed      bool `json:"dismissed" db:"note_dismissed"`
	PostponedCount int  `json:"postponed_count" db:"note_postponed_count"`
}

// BadgeKind is the single canonical badge priority: certified outranks
// verified, everything else shows none.
type BadgeKind string

const (
	BadgeCertified BadgeKind = "CERTIFIED"
	BadgeVerified  BadgeKind = "VERIFIED"
	BadgeNone      BadgeKind = "NONE"
)

// Badge resolves the one badge a profile page should show for this user.
func (u *User) Badge() BadgeKind {
	switch {
	case u.IsCertified:
		return BadgeCertified
	case u.IsVerified:
		return BadgeVerified
	default:
		return BadgeNone
	}
}
