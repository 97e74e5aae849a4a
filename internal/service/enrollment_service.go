package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/status"
)

// EnrollmentService handles trainee enrollment into courses.
type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	userRepo       *repository.UserRepository
	courses        *CourseService
	reconciler     *ReconcileService
	notifications  *NotificationService
	activity       *ActivityService
	broker         *pubsub.Broker
	log            zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	courses *CourseService,
	reconciler *ReconcileService,
	notifications *NotificationService,
	activity *ActivityService,
	broker *pubsub.Broker,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		courses:        courses,
		reconciler:     reconciler,
		notifications:  notifications,
		activity:       activity,
		broker:         broker,
		log:            log.With().Str("component", "enrollment_service").Logger(),
	}
}

// SelfEnroll enrolls the calling trainee into an open course.
func (s *EnrollmentService) SelfEnroll(ctx context.Context, actor Actor, courseID uuid.UUID) (*model.Enrollment, error) {
	if !actor.IsTrainee() {
		return nil, ErrNotTrainee
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Status.Open() {
		return nil, ErrCourseNotOpen
	}
	return s.enroll(ctx, actor, course, actor.ID)
}

// AdminEnroll enrolls any trainee into a course that has not ended.
func (s *EnrollmentService) AdminEnroll(ctx context.Context, actor Actor, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleTrainee {
		return nil, ErrNotTrainee
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	switch course.Status {
	case model.CourseStatusCancelled:
		return nil, ErrCourseCancelled
	case model.CourseStatusCompleted:
		return nil, ErrCourseNotOpen
	}
	return s.enroll(ctx, actor, course, userID)
}

func (s *EnrollmentService) enroll(ctx context.Context, actor Actor, course *model.Course, userID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{
		CourseID:    course.ID,
		UserID:      userID,
		CourseTitle: course.Title,
		TrainerName: course.TrainerName,
		Status:      status.Enrollment(course.Status, model.EnrollmentStatusPending),
	}
	if err := s.enrollmentRepo.Enroll(ctx, e, course.Capacity); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseFull):
			return nil, ErrCourseFull
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	// The course may have moved since it was read; reconcile so the new row
	// matches the locked course state, then refresh the trainee summary.
	if _, err := s.reconciler.ReconcileCourse(ctx, course.ID); err != nil {
		s.log.Error().Err(err).Str("course_id", course.ID.String()).Msg("Reconcile after enroll failed")
	}
	s.reconciler.RefreshTrainees(ctx, userID)

	s.activity.RecordBy(ctx, actor, ActionEnrolled, "enrollment", e.ID, map[string]interface{}{
		"course_id": course.ID,
		"user_id":   userID,
	})
	s.broker.Publish(ctx, config.CacheKey.EnrollmentsChannel(), pubsub.TopicEnrollments, model.EventCreated, e)
	s.broker.Publish(ctx, config.CacheKey.CoursesChannel(), pubsub.TopicCourses, model.EventUpdated,
		map[string]interface{}{"id": course.ID, "enrollment_count": course.EnrollmentCount + 1})

	s.notifications.Notify(ctx, []uuid.UUID{userID}, model.NotificationKindEnrollment,
		"Enrollment confirmed", "You are enrolled in "+course.Title+".", courseLink(course.ID))
	if course.TrainerID != nil {
		s.notifications.Notify(ctx, []uuid.UUID{*course.TrainerID}, model.NotificationKindEnrollment,
			"New trainee", "A trainee joined "+course.Title+".", courseLink(course.ID))
	}

	return s.enrollmentRepo.GetByID(ctx, e.ID)
}

// GetByID returns an enrollment visible to actor.
func (s *EnrollmentService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*model.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID == actor.ID || actor.IsAdmin() {
		return e, nil
	}
	course, err := s.courses.GetByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, ErrForbidden
	}
	return e, nil
}

// ListMine returns the caller's enrollments with grades.
func (s *EnrollmentService) ListMine(ctx context.Context, actor Actor) ([]model.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, actor.ID)
}

// Roster returns a course's enrollments for its trainer or an admin.
func (s *EnrollmentService) Roster(ctx context.Context, actor Actor, courseID uuid.UUID) ([]model.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByCourse(ctx, courseID)
}

// Drop withdraws an enrollment. Trainees drop their own; admins drop any.
func (s *EnrollmentService) Drop(ctx context.Context, actor Actor, id uuid.UUID) (*model.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	switch e.Status {
	case model.EnrollmentStatusDropped:
		return e, nil
	case model.EnrollmentStatusCompleted, model.EnrollmentStatusCancelled:
		return nil, ErrEnrollmentClosed
	}

	if err := s.enrollmentRepo.SetStatus(ctx, id, model.EnrollmentStatusDropped); err != nil {
		return nil, err
	}
	s.reconciler.RefreshTrainees(ctx, e.UserID)

	s.activity.RecordBy(ctx, actor, ActionEnrollmentDrop, "enrollment", id, map[string]interface{}{"course_id": e.CourseID})
	e.Status = model.EnrollmentStatusDropped
	s.broker.Publish(ctx, config.CacheKey.EnrollmentsChannel(), pubsub.TopicEnrollments, model.EventUpdated, e)
	if e.UserID != actor.ID {
		s.notifications.Notify(ctx, []uuid.UUID{e.UserID}, model.NotificationKindEnrollment,
			"Enrollment dropped", "You were removed from "+e.CourseTitle+".", courseLink(e.CourseID))
	}
	return e, nil
}

// Remove deletes an enrollment and its grade outright.
func (s *EnrollmentService) Remove(ctx context.Context, actor Actor, id uuid.UUID) error {
	e, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enrollmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.reconciler.RefreshTrainees(ctx, e.UserID)

	s.activity.RecordBy(ctx, actor, ActionEnrollmentDelete, "enrollment", id, map[string]interface{}{
		"course_id": e.CourseID,
		"user_id":   e.UserID,
	})
	s.broker.Publish(ctx, config.CacheKey.EnrollmentsChannel(), pubsub.TopicEnrollments, model.EventDeleted, map[string]interface{}{"id": id})
	return nil
}
