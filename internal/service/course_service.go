package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/status"
)

// CourseService handles course administration. Every write is followed by a
// reconciliation of the course so derived statuses never lag the data.
type CourseService struct {
	courseRepo     *repository.CourseRepository
	userRepo       *repository.UserRepository
	enrollmentRepo *repository.EnrollmentRepository
	reconciler     *ReconcileService
	notifications  *NotificationService
	activity       *ActivityService
	broker         *pubsub.Broker
	loc            *time.Location
	log            zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	reconciler *ReconcileService,
	notifications *NotificationService,
	activity *ActivityService,
	broker *pubsub.Broker,
	loc *time.Location,
	log zerolog.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		reconciler:     reconciler,
		notifications:  notifications,
		activity:       activity,
		broker:         broker,
		loc:            loc,
		log:            log.With().Str("component", "course_service").Logger(),
	}
}

// Covers reports whether [start, end] falls within the course dates.
func (s *CourseService) Covers(course *model.Course, start, end time.Time) bool {
	return status.WithinCourse(s.loc, course.StartDate, course.EndDate, start, end)
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// List returns the courses visible to actor. Trainers see their assigned
// courses and trainees see courses open for enrollment.
func (s *CourseService) List(ctx context.Context, actor Actor, filter model.CourseFilter, page, perPage int) ([]model.Course, *response.Pagination, error) {
	switch {
	case actor.IsTrainer():
		filter.TrainerID = &actor.ID
	case actor.IsTrainee():
		filter.OpenOnly = true
	}

	page, perPage, limit, offset := pageWindow(page, perPage)
	courses, total, err := s.courseRepo.ListPaginated(ctx, filter, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return courses, response.NewPagination(page, perPage, total), nil
}

// CanView reports whether actor may read content of the course.
func (s *CourseService) CanView(ctx context.Context, actor Actor, course *model.Course) error {
	enrolled := false
	if actor.IsTrainee() {
		e, err := s.enrollmentRepo.GetByCourseAndUser(ctx, course.ID, actor.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		enrolled = e != nil && e.Status != model.EnrollmentStatusDropped
	}
	return CanViewCourseContent(actor, course, enrolled)
}

// resolveTrainer loads the trainer and checks the role. A nil id clears the trainer.
func (s *CourseService) resolveTrainer(ctx context.Context, trainerID *uuid.UUID) (*uuid.UUID, string, error) {
	if trainerID == nil || *trainerID == uuid.Nil {
		return nil, "", nil
	}
	trainer, err := s.userRepo.GetByID(ctx, *trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrNotTrainer
		}
		return nil, "", err
	}
	if trainer.Role != model.RoleTrainer {
		return nil, "", ErrNotTrainer
	}
	return &trainer.ID, trainer.Name, nil
}

// Create inserts a course with its initial derived status.
func (s *CourseService) Create(ctx context.Context, actor Actor, req *model.CreateCourseRequest) (*model.Course, error) {
	trainerID, trainerName, err := s.resolveTrainer(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}

	c := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		TrainerID:   trainerID,
		TrainerName: trainerName,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Capacity:    req.Capacity,
		CreatedBy:   &actor.ID,
	}
	c.Status = status.Course(status.CourseInput{
		TrainerID: c.TrainerID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Location:  s.loc,
	}, time.Now())

	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.activity.RecordBy(ctx, actor, ActionCourseCreated, "course", c.ID, map[string]interface{}{"title": c.Title})
	s.broker.Publish(ctx, config.CacheKey.CoursesChannel(), pubsub.TopicCourses, model.EventCreated, c)
	if trainerID != nil {
		s.notifications.Notify(ctx, []uuid.UUID{*trainerID}, model.NotificationKindCourse,
			"New course assigned", "You have been assigned to "+c.Title+".", courseLink(c.ID))
	}
	return c, nil
}

// Update edits a course. Title and trainer changes propagate to enrollments.
func (s *CourseService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.CreateCourseRequest) (*model.Course, error) {
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.CourseStatusCancelled {
		return nil, ErrCourseCancelled
	}

	prevTrainer := c.TrainerID
	trainerID, trainerName, err := s.resolveTrainer(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}

	c.Title = strings.TrimSpace(req.Title)
	c.Description = req.Description
	c.Category = req.Category
	c.TrainerID = trainerID
	c.TrainerName = trainerName
	c.StartDate = req.StartDate
	c.EndDate = req.EndDate
	c.Capacity = req.Capacity

	if err := s.courseRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	s.activity.RecordBy(ctx, actor, ActionCourseUpdated, "course", c.ID, nil)
	if trainerID != nil && (prevTrainer == nil || *prevTrainer != *trainerID) {
		s.notifications.Notify(ctx, []uuid.UUID{*trainerID}, model.NotificationKindCourse,
			"New course assigned", "You have been assigned to "+c.Title+".", courseLink(c.ID))
	}
	return s.afterWrite(ctx, c.ID)
}

// AssignTrainer sets or clears the course trainer.
func (s *CourseService) AssignTrainer(ctx context.Context, actor Actor, id uuid.UUID, trainerID *uuid.UUID) (*model.Course, error) {
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.CourseStatusCancelled {
		return nil, ErrCourseCancelled
	}

	resolvedID, name, err := s.resolveTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.SetTrainer(ctx, id, resolvedID, name); err != nil {
		return nil, fmt.Errorf("set trainer: %w", err)
	}

	details := map[string]interface{}{"trainer_name": name}
	s.activity.RecordBy(ctx, actor, ActionCourseAssigned, "course", id, details)
	if resolvedID != nil {
		s.notifications.Notify(ctx, []uuid.UUID{*resolvedID}, model.NotificationKindCourse,
			"New course assigned", "You have been assigned to "+c.Title+".", courseLink(id))
	}
	return s.afterWrite(ctx, id)
}

// Cancel marks a course cancelled. Cancellation is permanent; reconciliation
// then cancels its enrollments.
func (s *CourseService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Course, error) {
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.CourseStatusCancelled {
		return c, nil
	}

	trainees, err := s.enrollmentRepo.ActiveUserIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.SetStatus(ctx, id, model.CourseStatusCancelled); err != nil {
		return nil, err
	}

	s.activity.RecordBy(ctx, actor, ActionCourseCancelled, "course", id, map[string]interface{}{"title": c.Title})
	recipients := trainees
	if c.TrainerID != nil {
		recipients = append(recipients, *c.TrainerID)
	}
	s.notifications.Notify(ctx, recipients, model.NotificationKindCourse,
		"Course cancelled", c.Title+" has been cancelled.", courseLink(id))

	return s.afterWrite(ctx, id)
}

// Delete removes a course with its sessions, enrollments, materials and grades.
func (s *CourseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	trainees, err := s.enrollmentRepo.ActiveUserIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.reconciler.RefreshTrainees(ctx, trainees...)
	s.activity.RecordBy(ctx, actor, ActionCourseDeleted, "course", id, map[string]interface{}{"title": c.Title})
	s.broker.Publish(ctx, config.CacheKey.CoursesChannel(), pubsub.TopicCourses, model.EventDeleted, map[string]interface{}{"id": id})
	return nil
}

// afterWrite reconciles the course, publishes the fresh row and returns it.
func (s *CourseService) afterWrite(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	if _, err := s.reconciler.ReconcileCourse(ctx, id); err != nil {
		s.log.Error().Err(err).Str("course_id", id.String()).Msg("Reconcile after write failed")
	}
	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.broker.Publish(ctx, config.CacheKey.CoursesChannel(), pubsub.TopicCourses, model.EventUpdated, c)
	return c, nil
}

func courseLink(id uuid.UUID) string {
	return "/courses/" + id.String()
}
