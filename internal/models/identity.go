package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentField names an identity document slot. One multipart upload carries
// exactly one of these as its form field.
type DocumentField string

const (
	DocRegistreCommerce DocumentField = "registre_commerce"
	DocNIF              DocumentField = "nif"
	DocNIS              DocumentField = "nis"
	DocCarteFellah      DocumentField = "carte_fellah"
	DocART              DocumentField = "art"
	DocC20              DocumentField = "c20"
)

// DocumentFields lists every known slot in canonical order.
var DocumentFields = []DocumentField{
	DocRegistreCommerce, DocNIF, DocNIS, DocCarteFellah, DocART, DocC20,
}

// IsValidDocumentField reports whether field names a known slot.
func IsValidDocumentField(field DocumentField) bool {
	for _, f := range DocumentFields {
		if f == field {
			return true
		}
	}
	return false
}

// IdentityStatus is the review lifecycle of a submitted identity record.
type IdentityStatus string

const (
	IdentityDraft    IdentityStatus = "DRAFT"
	IdentityWaiting  IdentityStatus = "WAITING"
	IdentityDone     IdentityStatus = "DONE"
	IdentityRejected IdentityStatus = "REJECTED"
)

type Identity struct {
	ID                  uuid.UUID                     `json:"id" db:"id"`
	UserID              uuid.UUID                     `json:"user_id" db:"user_id"`
	Status              IdentityStatus                `json:"status" db:"status"`
	CertificationStatus IdentityStatus                `json:"certification_status" db:"certification_status"`
	Documents           map[DocumentField]*Attachment `json:"documents" db:"-"`
	CreatedAt           time.Time                     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time                     `json:"updated_at" db:"updated_at"`
}

// HasAnyDocument reports whether at least one slot holds an upload.
func (i *Identity) HasAnyDocument() bool {
	for _, doc := range i.Documents {
		if !doc.IsZero() {
			return true
		}
	}
	return false
}
