package service

import (
	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID         uuid.UUID
	Role       model.Role
	SuperAdmin bool
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// IsTrainer reports whether the actor has the trainer role.
func (a Actor) IsTrainer() bool { return a.Role == model.RoleTrainer }

// IsTrainee reports whether the actor has the trainee role.
func (a Actor) IsTrainee() bool { return a.Role == model.RoleTrainee }

// Approved reports whether the account has left the pending state.
func (a Actor) Approved() bool { return a.Role != model.RolePending && a.Role != "" }
