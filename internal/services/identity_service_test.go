package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"mazadly/internal/models"
	"mazadly/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func draftIdentity(userID uuid.UUID) *models.Identity {
	return &models.Identity{
		ID:                  uuid.New(),
		UserID:              userID,
		Status:              models.IdentityDraft,
		CertificationStatus: models.IdentityDraft,
		Documents:           make(map[models.DocumentField]*models.Attachment),
	}
}

func TestGet_CreatesDraftOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	mockIdentities := &MockIdentityRepository{}
	userID := uuid.New()

	svc := NewIdentityService(mockIdentities, &MockUserRepository{}, &MockMediaService{}, nil)

	mockIdentities.On("GetByUserID", ctx, userID).Return(nil, repositories.ErrIdentityNotFound)
	mockIdentities.On("Create", ctx, mock.AnythingOfType("*models.Identity")).Return(nil)

	identity, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityDraft, identity.Status)
	assert.Equal(t, userID, identity.UserID)
	assert.Empty(t, identity.Documents)
	mockIdentities.AssertExpectations(t)
}

func TestUploadDocument_RejectsUnknownField(t *testing.T) {
	svc := NewIdentityService(&MockIdentityRepository{}, &MockUserRepository{}, &MockMediaService{}, nil)

	_, err := svc.UploadDocument(context.Background(), uuid.New(), "passport", "p.pdf", bytes.NewReader(nil), 0)
	assert.ErrorContains(t, err, "unknown document field")
}

// blockingMediaService parks every upload until released, to exercise the
// per-slot in-flight guard.
type blockingMediaService struct {
	MockMediaService
	started chan struct{}
	release chan struct{}
}

func (b *blockingMediaService) UploadDocument(ctx context.Context, userID uuid.UUID, field models.DocumentField, filename string, reader io.Reader, size int64) (*models.Attachment, error) {
	b.started <- struct{}{}
	<-b.release
	return &models.Attachment{URL: "/static/doc.pdf", UploadedAt: time.Now()}, nil
}

func TestUploadDocument_SecondUploadForSameSlotRefused(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockIdentities := &MockIdentityRepository{}
	mockIdentities.On("GetByUserID", ctx, userID).Return(draftIdentity(userID), nil)
	mockIdentities.On("SetDocument", ctx, userID, models.DocNIF, mock.AnythingOfType("*models.Attachment")).Return(nil)

	media := &blockingMediaService{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := NewIdentityService(mockIdentities, &MockUserRepository{}, media, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.UploadDocument(ctx, userID, models.DocNIF, "nif.pdf", bytes.NewReader(nil), 0)
		assert.NoError(t, err)
	}()

	<-media.started

	// Same slot: refused while the first upload is in flight.
	_, err := svc.UploadDocument(ctx, userID, models.DocNIF, "nif2.pdf", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrUploadInFlight)

	close(media.release)
	wg.Wait()

	// Slot is free again after completion.
	media.release = make(chan struct{})
	close(media.release)
	_, err = svc.UploadDocument(ctx, userID, models.DocNIF, "nif3.pdf", bytes.NewReader(nil), 0)
	assert.NoError(t, err)
}

func TestUploadDocument_DifferentSlotsRunConcurrently(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockIdentities := &MockIdentityRepository{}
	mockIdentities.On("GetByUserID", ctx, userID).Return(draftIdentity(userID), nil)
	mockIdentities.On("SetDocument", ctx, userID, mock.AnythingOfType("models.DocumentField"), mock.AnythingOfType("*models.Attachment")).Return(nil)

	media := &blockingMediaService{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	svc := NewIdentityService(mockIdentities, &MockUserRepository{}, media, nil)

	var wg sync.WaitGroup
	for _, field := range []models.DocumentField{models.DocNIF, models.DocNIS} {
		wg.Add(1)
		go func(f models.DocumentField) {
			defer wg.Done()
			_, err := svc.UploadDocument(ctx, userID, f, "doc.pdf", bytes.NewReader(nil), 0)
			assert.NoError(t, err)
		}(field)
	}

	// Both uploads reach the media layer before either finishes.
	<-media.started
	<-media.started
	close(media.release)
	wg.Wait()
}

func TestSubmit_RequiresAtLeastOneDocument(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockIdentities := &MockIdentityRepository{}
	mockIdentities.On("GetByUserID", ctx, userID).Return(draftIdentity(userID), nil)

	svc := NewIdentityService(mockIdentities, &MockUserRepository{}, &MockMediaService{}, nil)

	err := svc.Submit(ctx, userID)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestSubmitCertification_RequiresSubmittedIdentity(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	mockIdentities := &MockIdentityRepository{}
	mockIdentities.On("GetByUserID", ctx, userID).Return(draftIdentity(userID), nil)

	svc := NewIdentityService(mockIdentities, &MockUserRepository{}, &MockMediaService{}, nil)

	err := svc.SubmitCertification(ctx, userID)
	assert.ErrorContains(t, err, "submitted before")
}
