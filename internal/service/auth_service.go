package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Token timestamps carry milliseconds so a role change revokes every token
// issued before it, including ones from the same second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID  `json:"user_id"`
	Role        model.Role `json:"role"`
	SuperAdmin  bool       `json:"super_admin,omitempty"`
	Permissions []string   `json:"permissions"`
}

// Actor returns the service-level caller described by the claims.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role, SuperAdmin: c.SuperAdmin}
}

// HasPermission reports whether the token carries code.
func (c *Claims) HasPermission(code model.Permission) bool {
	for _, p := range c.Permissions {
		if p == string(code) {
			return true
		}
	}
	return false
}

// AuthService handles authentication, JWT issuing and revocation, and the
// caller's own account.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	userRepo *repository.UserRepository
	settings *SettingService
	activity *ActivityService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	userRepo *repository.UserRepository,
	settings *SettingService,
	activity *ActivityService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		userRepo: userRepo,
		settings: settings,
		activity: activity,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a JWT for u with its role permissions embedded.
func (s *AuthService) GenerateToken(u *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:      u.ID,
		Role:        u.Role,
		SuperAdmin:  u.IsSuperAdmin,
		Permissions: model.PermissionsFor(u.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CheckNotRevoked fails with ErrTokenRevoked when the token was logged out
// or issued before the user's role last changed.
func (s *AuthService) CheckNotRevoked(ctx context.Context, claims *Claims) error {
	pipe := s.rdb.Pipeline()
	revoked := pipe.Exists(ctx, config.CacheKey.RevokedTokenKey(claims.ID))
	validAfter := pipe.Get(ctx, config.CacheKey.TokensValidAfterKey(claims.UserID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked.Val() > 0 {
		return ErrTokenRevoked
	}
	if after, err := validAfter.Int64(); err == nil && issuedBefore(claims.IssuedAt, after) {
		return ErrTokenRevoked
	}
	return nil
}

// issuedBefore reports whether iat is at or before the cutoff in Unix
// milliseconds. A token minted in the same millisecond as a revocation is
// treated as revoked.
func issuedBefore(iat *jwt.NumericDate, cutoffMilli int64) bool {
	return iat != nil && iat.UnixMilli() <= cutoffMilli
}

// RevokeUser invalidates every token issued to userID so far.
func (s *AuthService) RevokeUser(ctx context.Context, userID uuid.UUID) {
	key := config.CacheKey.TokensValidAfterKey(userID)
	if err := s.rdb.Set(ctx, key, time.Now().UnixMilli(), s.cfg.JWTExpiry).Err(); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("Revoke user tokens failed")
	}
}

// Revoke marks the token as logged out until it would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), 1, ttl).Err()
}

// Register creates a pending account. It is refused while registration is closed.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	open, err := s.settings.RegistrationOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrRegistrationClosed
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         model.RolePending,
		Phone:        req.Phone,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.activity.Record(ctx, &u.ID, ActionUserRegistered, "user", &u.ID, nil)
	s.log.Info().Str("user_id", u.ID.String()).Msg("User registered")
	return u, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &u.ID, ActionUserLoggedIn, "user", &u.ID, nil)
	return &model.LoginResponse{
		Token:       token,
		User:        *u,
		Permissions: model.PermissionsFor(u.Role),
	}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile edits the caller's own profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(req.Name)
	u.Phone = req.Phone
	u.Bio = req.Bio
	u.AvatarURL = req.AvatarURL
	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.ChangePasswordRequest) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}
