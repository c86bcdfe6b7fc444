package services

import (
	"context"
	"testing"
	"time"

	"mazadly/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Store(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestGenerateTokens_SignedClaimsRoundTrip(t *testing.T) {
	ctx := context.Background()
	mockTokens := &MockTokenRepository{}
	userID := uuid.New()

	var storedHash string
	mockTokens.On("Store", ctx, mock.AnythingOfType("*models.RefreshToken")).
		Run(func(args mock.Arguments) {
			storedHash = args.Get(1).(*models.RefreshToken).TokenHash
		}).Return(nil)

	svc := NewAuthService(mockTokens, "test-secret", 900, 3600)
	response, err := svc.GenerateTokens(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, 900, response.ExpiresIn)
	assert.NotEmpty(t, response.RefreshToken)
	assert.NotEqual(t, response.RefreshToken, storedHash, "only the hash is stored")

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(response.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "mazadly-auth", claims.Issuer)
	mockTokens.AssertExpectations(t)
}

func TestRefreshTokens_RotatesPresentedToken(t *testing.T) {
	ctx := context.Background()
	mockTokens := &MockTokenRepository{}
	userID := uuid.New()
	svc := NewAuthService(mockTokens, "test-secret", 900, 3600)

	stored := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID.String(),
		ExpiresAt: time.Now().Add(time.Hour),
		IssuedAt:  time.Now(),
	}

	mockTokens.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(stored, nil)
	mockTokens.On("Revoke", ctx, mock.AnythingOfType("string")).Return(nil)
	mockTokens.On("Store", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	response, err := svc.RefreshTokens(ctx, "presented-token")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), response.UserID)
	mockTokens.AssertExpectations(t)
}

func TestRefreshTokens_RejectsRevokedAndExpired(t *testing.T) {
	ctx := context.Background()
	mockTokens := &MockTokenRepository{}
	svc := NewAuthService(mockTokens, "test-secret", 900, 3600)

	revoked := &models.RefreshToken{
		UserID:    uuid.NewString(),
		IsRevoked: true,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	mockTokens.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(revoked, nil).Once()

	_, err := svc.RefreshTokens(ctx, "revoked-token")
	assert.ErrorContains(t, err, "revoked")

	expired := &models.RefreshToken{
		UserID:    uuid.NewString(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	mockTokens.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(expired, nil).Once()

	_, err = svc.RefreshTokens(ctx, "expired-token")
	assert.ErrorContains(t, err, "expired")
}
