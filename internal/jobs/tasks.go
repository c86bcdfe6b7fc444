package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeIdentityReview      = "identity_review"
	TypeCertificationReview = "certification_review"
)

// IdentityReviewPayload defines the payload for identity review tasks
type IdentityReviewPayload struct {
	UserID     uuid.UUID `json:"user_id"`
	IdentityID uuid.UUID `json:"identity_id"`
}

// CertificationReviewPayload defines the payload for certification review tasks
type CertificationReviewPayload struct {
	UserID     uuid.UUID `json:"user_id"`
	IdentityID uuid.UUID `json:"identity_id"`
}

// NewIdentityReviewTask creates a task queued when a user submits their
// identity documents for verification.
func NewIdentityReviewTask(userID, identityID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(IdentityReviewPayload{UserID: userID, IdentityID: identityID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity review payload: %w", err)
	}
	return asynq.NewTask(TypeIdentityReview, payload), nil
}

// NewCertificationReviewTask creates a task queued when a verified user
// requests certification.
func NewCertificationReviewTask(userID, identityID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(CertificationReviewPayload{UserID: userID, IdentityID: identityID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal certification review payload: %w", err)
	}
	return asynq.NewTask(TypeCertificationReview, payload), nil
}
