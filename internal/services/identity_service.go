package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"mazadly/internal/jobs"
	"mazadly/internal/models"
	"mazadly/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ErrUploadInFlight is returned when a second upload is attempted for a
// document slot that already has one running.
var ErrUploadInFlight = errors.New("an upload for this document is already in progress")

// ErrNoDocuments is returned when submitting an identity with no uploads.
var ErrNoDocuments = errors.New("at least one document is required before submission")

type IdentityService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Identity, error)
	UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error)
	Submit(ctx context.Context, userID uuid.UUID) error
	SubmitCertification(ctx context.Context, userID uuid.UUID) error
}

type identityService struct {
	identityRepo repositories.IdentityRepository
	userRepo     repositories.UserRepository
	mediaService MediaService
	taskClient   *asynq.Client

	// One in-flight upload per (user, slot); duplicate concurrent
	// submissions for the same document key are refused, not queued.
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewIdentityService(identityRepo repositories.IdentityRepository, userRepo repositories.UserRepository, mediaService MediaService, taskClient *asynq.Client) IdentityService {
	return &identityService{
		identityRepo: identityRepo,
		userRepo:     userRepo,
		mediaService: mediaService,
		taskClient:   taskClient,
		inFlight:     make(map[string]bool),
	}
}

// Get returns the user's identity record, creating an empty draft on first
// access.
func (s *identityService) Get(ctx context.Context, userID uuid.UUID) (*models.Identity, error) {
	identity, err := s.identityRepo.GetByUserID(ctx, userID)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repositories.ErrIdentityNotFound) {
		return nil, err
	}

	identity = &models.Identity{
		ID:                  uuid.New(),
		UserID:              userID,
		Status:              models.IdentityDraft,
		CertificationStatus: models.IdentityDraft,
		Documents:           make(map[models.DocumentField]*models.Attachment),
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (s *identityService) UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	if !models.IsValidDocumentField(field) {
		return nil, fmt.Errorf("unknown document field %q", field)
	}

	key := userID.String() + ":" + string(field)
	s.mu.Lock()
	if s.inFlight[key] {
		s.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	s.inFlight[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	doc, err := s.mediaService.UploadDocument(ctx, userID, field, filename, reader, size)
	if err != nil {
		return nil, err
	}

	if err := s.identityRepo.SetDocument(ctx, userID, field, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Submit moves a draft with at least one document into review and marks the
// user as having identity documents on file.
func (s *identityService) Submit(ctx context.Context, userID uuid.UUID) error {
	identity, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !identity.HasAnyDocument() {
		return ErrNoDocuments
	}

	if err := s.identityRepo.UpdateStatus(ctx, userID, models.IdentityWaiting); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetVerification(ctx, userID, user.IsVerified, user.IsCertified, true); err != nil {
		return err
	}

	task, err := jobs.NewIdentityReviewTask(userID, identity.ID)
	if err != nil {
		return err
	}
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue identity review: %w", err)
	}
	return nil
}

// SubmitCertification requests certification for an already submitted
// identity.
func (s *identityService) SubmitCertification(ctx context.Context, userID uuid.UUID) error {
	identity, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if identity.Status == models.IdentityDraft {
		return errors.New("identity must be submitted before requesting certification")
	}

	if err := s.identityRepo.UpdateCertificationStatus(ctx, userID, models.IdentityWaiting); err != nil {
		return err
	}

	task, err := jobs.NewCertificationReviewTask(userID, identity.ID)
	if err != nil {
		return err
	}
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue certification review: %w", err)
	}
	return nil
}
