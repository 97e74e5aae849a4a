package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/status"
)

// SweepReport summarises a reconciliation pass over many courses.
type SweepReport struct {
	Courses            int `json:"courses"`
	CoursesChanged     int `json:"courses_changed"`
	EnrollmentsChanged int `json:"enrollments_changed"`
	Failed             int `json:"failed"`
}

// CourseStatusEvent is the live payload sent when reconciliation moves a course.
type CourseStatusEvent struct {
	CourseID uuid.UUID          `json:"course_id"`
	From     model.CourseStatus `json:"from"`
	To       model.CourseStatus `json:"to"`
}

// ReconcileService is the single writer of derived status fields.
type ReconcileService struct {
	statusRepo *repository.StatusRepository
	courseRepo *repository.CourseRepository
	broker     *pubsub.Broker
	activity   *ActivityService
	log        zerolog.Logger
	now        func() time.Time
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	statusRepo *repository.StatusRepository,
	courseRepo *repository.CourseRepository,
	broker *pubsub.Broker,
	activity *ActivityService,
	log zerolog.Logger,
) *ReconcileService {
	return &ReconcileService{
		statusRepo: statusRepo,
		courseRepo: courseRepo,
		broker:     broker,
		activity:   activity,
		log:        log.With().Str("component", "reconcile_service").Logger(),
		now:        time.Now,
	}
}

// ReconcileCourse brings one course and its enrollments up to date.
func (s *ReconcileService) ReconcileCourse(ctx context.Context, courseID uuid.UUID) (status.Plan, error) {
	plan, err := s.statusRepo.ReconcileCourse(ctx, courseID, s.now())
	if err != nil {
		return plan, err
	}
	if plan.Empty() {
		return plan, nil
	}

	s.log.Debug().
		Str("course_id", courseID.String()).
		Str("from", string(plan.CourseFrom)).
		Str("to", string(plan.CourseTo)).
		Int("enrollments", len(plan.Enrollments)).
		Msg("Course reconciled")

	if plan.CourseChanged() {
		evt := CourseStatusEvent{CourseID: courseID, From: plan.CourseFrom, To: plan.CourseTo}
		s.broker.Publish(ctx, config.CacheKey.CoursesChannel(), pubsub.TopicCourses, model.EventUpdated, evt)
		s.activity.Record(ctx, nil, ActionCourseReconciled, "course", &courseID, map[string]interface{}{
			"from": plan.CourseFrom,
			"to":   plan.CourseTo,
		})
	}
	if len(plan.Enrollments) > 0 {
		s.broker.Publish(ctx, config.CacheKey.EnrollmentsChannel(), pubsub.TopicEnrollments, model.EventUpdated, map[string]interface{}{
			"course_id": courseID,
			"changes":   plan.Enrollments,
		})
	}
	return plan, nil
}

// ReconcileCourses reconciles each id, logging and counting failures instead
// of stopping at the first one.
func (s *ReconcileService) ReconcileCourses(ctx context.Context, ids []uuid.UUID) SweepReport {
	var report SweepReport
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Courses++
		plan, err := s.ReconcileCourse(ctx, id)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				report.Failed++
				s.log.Error().Err(err).Str("course_id", id.String()).Msg("Reconcile failed")
			}
			continue
		}
		if plan.CourseChanged() {
			report.CoursesChanged++
		}
		report.EnrollmentsChanged += len(plan.Enrollments)
	}
	return report
}

// Sweep reconciles every course that is not cancelled.
func (s *ReconcileService) Sweep(ctx context.Context) (SweepReport, error) {
	ids, err := s.courseRepo.ListIDsForSweep(ctx)
	if err != nil {
		return SweepReport{}, err
	}
	report := s.ReconcileCourses(ctx, ids)
	s.log.Info().
		Int("courses", report.Courses).
		Int("courses_changed", report.CoursesChanged).
		Int("enrollments_changed", report.EnrollmentsChanged).
		Int("failed", report.Failed).
		Msg("Status sweep finished")
	return report, nil
}

// RefreshTrainees recomputes training_status for users whose enrollments
// changed outside a course reconciliation (drops, removals).
func (s *ReconcileService) RefreshTrainees(ctx context.Context, userIDs ...uuid.UUID) {
	if err := s.statusRepo.RefreshTrainingStatus(ctx, userIDs...); err != nil {
		s.log.Error().Err(err).Msg("Refresh training status failed")
	}
}
