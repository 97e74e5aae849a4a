package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
)

// Activity actions recorded by the services.
const (
	ActionUserRegistered   = "user.registered"
	ActionUserLoggedIn     = "user.logged_in"
	ActionUserCreated      = "user.created"
	ActionUserUpdated      = "user.updated"
	ActionUserRoleChanged  = "user.role_changed"
	ActionUserDeleted      = "user.deleted"
	ActionCourseCreated    = "course.created"
	ActionCourseUpdated    = "course.updated"
	ActionCourseAssigned   = "course.trainer_assigned"
	ActionCourseCancelled  = "course.cancelled"
	ActionCourseDeleted    = "course.deleted"
	ActionCourseReconciled = "course.status_changed"
	ActionSessionCreated   = "session.created"
	ActionSessionUpdated   = "session.updated"
	ActionSessionDeleted   = "session.deleted"
	ActionEnrolled         = "enrollment.created"
	ActionEnrollmentDrop   = "enrollment.dropped"
	ActionEnrollmentDelete = "enrollment.deleted"
	ActionMaterialUploaded = "material.uploaded"
	ActionMaterialDeleted  = "material.deleted"
	ActionGradeSet         = "grade.set"
	ActionSettingsUpdated  = "settings.updated"
	ActionBroadcastSent    = "notification.broadcast"
)

// ActivityService records audit entries through the activity queue and
// serves the admin activity listing.
type ActivityService struct {
	repo *repository.ActivityRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo *repository.ActivityRepository, rdb *redis.Client, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "activity_service").Logger(),
	}
}

// Record enqueues an activity entry. It never fails the calling operation;
// enqueue errors are logged.
func (s *ActivityService) Record(ctx context.Context, actorID *uuid.UUID, action, entity string, entityID *uuid.UUID, details map[string]interface{}) {
	entry := model.ActivityLog{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Details = raw
		}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		s.log.Error().Err(err).Str("action", action).Msg("Marshal activity")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ActivityQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("action", action).Msg("Enqueue activity")
	}
}

// RecordBy is Record for an authenticated actor.
func (s *ActivityService) RecordBy(ctx context.Context, actor Actor, action, entity string, entityID uuid.UUID, details map[string]interface{}) {
	actorID := actor.ID
	s.Record(ctx, &actorID, action, entity, &entityID, details)
}

// List returns activity entries, newest first.
func (s *ActivityService) List(ctx context.Context, filter model.ActivityFilter, page, perPage int) ([]model.ActivityLog, *response.Pagination, error) {
	page, perPage, limit, offset := pageWindow(page, perPage)
	logs, total, err := s.repo.ListPaginated(ctx, filter, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return logs, response.NewPagination(page, perPage, total), nil
}
