package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse access level of a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleTrainee Role = "trainee"
	// RolePending marks a self-registered account awaiting admin approval.
	RolePending Role = "pending"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleTrainee, RolePending:
		return true
	}
	return false
}

// TrainingStatus summarises a trainee's enrollments.
type TrainingStatus string

const (
	TrainingStatusNone       TrainingStatus = "none"
	TrainingStatusEnrolled   TrainingStatus = "enrolled"
	TrainingStatusInTraining TrainingStatus = "in_training"
	TrainingStatusCompleted  TrainingStatus = "completed"
)

// User represents any account: admin, trainer, trainee or pending.
type User struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	PasswordHash   string         `json:"-"`
	Role           Role           `json:"role"`
	IsSuperAdmin   bool           `json:"is_super_admin"`
	TrainingStatus TrainingStatus `json:"training_status"`
	Phone          string         `json:"phone"`
	Bio            string         `json:"bio"`
	AvatarURL      string         `json:"avatar_url"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   Role
	Search string
}

// RegisterRequest is the payload for public self-registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token       string   `json:"token"`
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

// UpdateProfileRequest updates the caller's own profile.
type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
	Bio       string `json:"bio" binding:"omitempty,max=1000"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,max=500"`
}

// ChangePasswordRequest changes the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=6,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// CreateUserRequest is the admin payload for creating an account.
type CreateUserRequest struct {
	Email        string `json:"email" binding:"required,email,max=255"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	Role         Role   `json:"role" binding:"required,oneof=admin trainer trainee pending"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Phone        string `json:"phone" binding:"omitempty,max=30"`
}

// UpdateUserRequest is the admin payload for editing an account's profile.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
	Bio      string `json:"bio" binding:"omitempty,max=1000"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
}

// ChangeRoleRequest changes a user's role and super-admin flag.
type ChangeRoleRequest struct {
	Role         Role  `json:"role" binding:"required,oneof=admin trainer trainee pending"`
	IsSuperAdmin *bool `json:"is_super_admin"`
}
