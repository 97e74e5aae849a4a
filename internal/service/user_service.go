package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
)

const trainerSearchLimit = 20

// UserService handles account administration and approvals.
type UserService struct {
	userRepo      *repository.UserRepository
	courseRepo    *repository.CourseRepository
	auth          *AuthService
	reconciler    *ReconcileService
	notifications *NotificationService
	activity      *ActivityService
	log           zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	auth *AuthService,
	reconciler *ReconcileService,
	notifications *NotificationService,
	activity *ActivityService,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		courseRepo:    courseRepo,
		auth:          auth,
		reconciler:    reconciler,
		notifications: notifications,
		activity:      activity,
		log:           log.With().Str("component", "user_service").Logger(),
	}
}

// List returns users matching filter.
func (s *UserService) List(ctx context.Context, filter model.UserFilter, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage, limit, offset := pageWindow(page, perPage)
	users, total, err := s.userRepo.ListPaginated(ctx, filter, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListPending returns accounts awaiting approval, oldest first.
func (s *UserService) ListPending(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListByRole(ctx, model.RolePending)
}

// SearchTrainers finds trainers by name or email for the trainer directory.
func (s *UserService) SearchTrainers(ctx context.Context, q string) ([]model.User, error) {
	return s.userRepo.SearchTrainers(ctx, strings.TrimSpace(q), trainerSearchLimit)
}

// Create adds an account with any role. Creating admins requires a super-admin.
func (s *UserService) Create(ctx context.Context, actor Actor, req *model.CreateUserRequest) (*model.User, error) {
	if err := CheckUserCreate(actor, req.Role, req.IsSuperAdmin); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         req.Role,
		IsSuperAdmin: req.IsSuperAdmin,
		Phone:        req.Phone,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.activity.RecordBy(ctx, actor, ActionUserCreated, "user", u.ID, map[string]interface{}{"role": u.Role})
	return u, nil
}

// Update edits another account's profile and optionally resets its password.
func (s *UserService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == model.RoleAdmin && !actor.SuperAdmin && u.ID != actor.ID {
		return nil, ErrRoleChangeDenied
	}

	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Name = strings.TrimSpace(req.Name)
	u.Phone = req.Phone
	u.Bio = req.Bio
	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}

	s.activity.RecordBy(ctx, actor, ActionUserUpdated, "user", id, nil)
	return s.userRepo.GetByID(ctx, id)
}

// ChangeRole moves a user to a new role. Approving a pending account is a
// role change to trainer or trainee. Demoting a trainer releases their courses.
func (s *UserService) ChangeRole(ctx context.Context, actor Actor, id uuid.UUID, req *model.ChangeRoleRequest) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckRoleChange(actor, u, req.Role, req.IsSuperAdmin); err != nil {
		return nil, err
	}

	superAdmin := req.Role == model.RoleAdmin && u.IsSuperAdmin
	if req.IsSuperAdmin != nil {
		superAdmin = *req.IsSuperAdmin
	}
	if err := s.userRepo.UpdateRole(ctx, id, req.Role, superAdmin); err != nil {
		return nil, err
	}
	// Tokens carry the role; force a fresh login.
	s.auth.RevokeUser(ctx, id)

	if u.Role == model.RoleTrainer && req.Role != model.RoleTrainer {
		s.releaseCourses(ctx, id)
	}
	if req.Role == model.RoleTrainee {
		s.reconciler.RefreshTrainees(ctx, id)
	}

	if u.Role == model.RolePending && req.Role != model.RolePending {
		s.notifications.Notify(ctx, []uuid.UUID{id}, model.NotificationKindAccount,
			"Account approved", "Your account has been approved as "+string(req.Role)+".", "/dashboard")
	} else if u.Role != req.Role {
		s.notifications.Notify(ctx, []uuid.UUID{id}, model.NotificationKindAccount,
			"Role changed", "Your role is now "+string(req.Role)+".", "/dashboard")
	}

	s.activity.RecordBy(ctx, actor, ActionUserRoleChanged, "user", id, map[string]interface{}{
		"from":        u.Role,
		"to":          req.Role,
		"super_admin": superAdmin,
	})
	s.log.Info().
		Str("user_id", id.String()).
		Str("from", string(u.Role)).
		Str("to", string(req.Role)).
		Msg("Role changed")

	return s.userRepo.GetByID(ctx, id)
}

// Delete removes an account. A trainer's courses are unassigned in the same
// transaction and reconciled once the delete commits.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckUserDelete(actor, u); err != nil {
		return err
	}

	courseIDs, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if len(courseIDs) > 0 {
		s.reconciler.ReconcileCourses(ctx, courseIDs)
	}

	s.auth.RevokeUser(ctx, id)
	s.notifications.InvalidateUnread(ctx, id)
	s.activity.RecordBy(ctx, actor, ActionUserDeleted, "user", id, map[string]interface{}{
		"email": u.Email,
		"role":  u.Role,
	})
	return nil
}

// releaseCourses unassigns every course of trainerID and reconciles them.
func (s *UserService) releaseCourses(ctx context.Context, trainerID uuid.UUID) {
	ids, err := s.courseRepo.UnassignTrainer(ctx, trainerID)
	if err != nil {
		s.log.Error().Err(err).Str("trainer_id", trainerID.String()).Msg("Unassign trainer failed")
		return
	}
	if len(ids) > 0 {
		s.reconciler.ReconcileCourses(ctx, ids)
	}
}
