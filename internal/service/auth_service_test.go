package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthService() *AuthService {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return NewAuthService(cfg, nil, nil, nil, nil, logger.Nop())
}

func TestTokenRoundTripKeepsClaims(t *testing.T) {
	s := testAuthService()
	u := &model.User{ID: uuid.New(), Role: model.RoleTrainer}

	token, err := s.GenerateToken(u)
	require.NoError(t, err)
	claims, err := s.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RoleTrainer, claims.Role)
	assert.True(t, claims.HasPermission(model.PermissionCoursesTeach))
	assert.False(t, claims.HasPermission(model.PermissionCoursesWrite))
}

func TestTokenIssuedAtKeepsMilliseconds(t *testing.T) {
	s := testAuthService()
	before := time.Now().UnixMilli()

	token, err := s.GenerateToken(&model.User{ID: uuid.New(), Role: model.RoleTrainee})
	require.NoError(t, err)
	claims, err := s.ValidateToken(token)
	require.NoError(t, err)

	require.NotNil(t, claims.IssuedAt)
	assert.GreaterOrEqual(t, claims.IssuedAt.UnixMilli(), before)
	assert.LessOrEqual(t, claims.IssuedAt.UnixMilli(), time.Now().UnixMilli())
}

func TestIssuedBefore(t *testing.T) {
	second := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	cutoff := second.Add(500 * time.Millisecond).UnixMilli()

	// Same wall-clock second as the role change, either side of it.
	assert.True(t, issuedBefore(jwt.NewNumericDate(second.Add(200*time.Millisecond)), cutoff))
	assert.False(t, issuedBefore(jwt.NewNumericDate(second.Add(800*time.Millisecond)), cutoff))
	assert.True(t, issuedBefore(jwt.NewNumericDate(second.Add(500*time.Millisecond)), cutoff))
	assert.False(t, issuedBefore(nil, cutoff))
}

func TestCheckPassword(t *testing.T) {
	s := testAuthService()
	hash, err := s.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, s.CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, s.CheckPassword(hash, "battery staple"), ErrInvalidCredentials)
}
