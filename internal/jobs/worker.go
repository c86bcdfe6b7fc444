package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"mazadly/internal/repositories"

	"github.com/hibiken/asynq"
)

// ReviewWorker consumes queued review tasks. Review itself is a back-office
// decision; the worker's job is to move submissions into the review pipeline
// and keep the status fields consistent.
type ReviewWorker struct {
	identityRepo repositories.IdentityRepository
	userRepo     repositories.UserRepository
}

func NewReviewWorker(identityRepo repositories.IdentityRepository, userRepo repositories.UserRepository) *ReviewWorker {
	return &ReviewWorker{
		identityRepo: identityRepo,
		userRepo:     userRepo,
	}
}

// Mux registers the worker's handlers on an asynq mux.
func (w *ReviewWorker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeIdentityReview, w.HandleIdentityReview)
	mux.HandleFunc(TypeCertificationReview, w.HandleCertificationReview)
	return mux
}

func (w *ReviewWorker) HandleIdentityReview(ctx context.Context, t *asynq.Task) error {
	var payload IdentityReviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal identity review payload: %w", err)
	}

	identity, err := w.identityRepo.GetByUserID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if !identity.HasAnyDocument() {
		log.Printf("identity review %s: no documents attached, rejecting", payload.IdentityID)
		return w.identityRepo.UpdateStatus(ctx, payload.UserID, "REJECTED")
	}

	log.Printf("identity review queued for user %s (%d documents)", payload.UserID, len(identity.Documents))
	return nil
}

func (w *ReviewWorker) HandleCertificationReview(ctx context.Context, t *asynq.Task) error {
	var payload CertificationReviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal certification review payload: %w", err)
	}

	user, err := w.userRepo.GetByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		log.Printf("certification review %s: user not verified yet, leaving in queue state", payload.IdentityID)
	}

	log.Printf("certification review queued for user %s", payload.UserID)
	return nil
}
