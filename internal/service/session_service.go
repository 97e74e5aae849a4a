package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

const upcomingSessionsLimit = 10

// SessionService handles scheduled course meetings.
type SessionService struct {
	sessionRepo    *repository.SessionRepository
	enrollmentRepo *repository.EnrollmentRepository
	courses        *CourseService
	notifications  *NotificationService
	activity       *ActivityService
	log            zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courses *CourseService,
	notifications *NotificationService,
	activity *ActivityService,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		courses:        courses,
		notifications:  notifications,
		activity:       activity,
		log:            log.With().Str("component", "session_service").Logger(),
	}
}

// ListByCourse returns a course's sessions for its participants.
func (s *SessionService) ListByCourse(ctx context.Context, actor Actor, courseID uuid.UUID) ([]model.Session, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanView(ctx, actor, course); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByCourse(ctx, courseID)
}

// Upcoming returns the caller's next sessions: taught courses for trainers,
// enrolled courses for trainees.
func (s *SessionService) Upcoming(ctx context.Context, actor Actor) ([]model.Session, error) {
	now := time.Now()
	switch {
	case actor.IsTrainer():
		return s.sessionRepo.ListUpcomingForTrainer(ctx, actor.ID, now, upcomingSessionsLimit)
	case actor.IsTrainee():
		return s.sessionRepo.ListUpcomingForTrainee(ctx, actor.ID, now, upcomingSessionsLimit)
	default:
		return []model.Session{}, nil
	}
}

func (s *SessionService) teachableCourse(ctx context.Context, actor Actor, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, err
	}
	if course.Status == model.CourseStatusCancelled {
		return nil, ErrCourseCancelled
	}
	return course, nil
}

// Create schedules a session and notifies enrolled trainees.
func (s *SessionService) Create(ctx context.Context, actor Actor, courseID uuid.UUID, req *model.SessionRequest) (*model.Session, error) {
	course, err := s.teachableCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !s.courses.Covers(course, req.StartsAt, req.EndsAt) {
		return nil, ErrSessionOutOfRange
	}

	sess := &model.Session{
		CourseID:    courseID,
		CourseTitle: course.Title,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.activity.RecordBy(ctx, actor, ActionSessionCreated, "session", sess.ID, map[string]interface{}{
		"course_id": courseID,
		"title":     sess.Title,
	})
	s.notifyTrainees(ctx, course, "New session scheduled",
		fmt.Sprintf("%s: %s on %s.", course.Title, sess.Title, sess.StartsAt.Format("Mon 02 Jan 2006 15:04")))
	return sess, nil
}

// Update reschedules or edits a session.
func (s *SessionService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.SessionRequest) (*model.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.teachableCourse(ctx, actor, sess.CourseID)
	if err != nil {
		return nil, err
	}
	if !s.courses.Covers(course, req.StartsAt, req.EndsAt) {
		return nil, ErrSessionOutOfRange
	}

	rescheduled := !sess.StartsAt.Equal(req.StartsAt) || !sess.EndsAt.Equal(req.EndsAt)
	sess.Title = req.Title
	sess.Description = req.Description
	sess.Location = req.Location
	sess.StartsAt = req.StartsAt
	sess.EndsAt = req.EndsAt
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}

	s.activity.RecordBy(ctx, actor, ActionSessionUpdated, "session", id, nil)
	if rescheduled {
		s.notifyTrainees(ctx, course, "Session rescheduled",
			fmt.Sprintf("%s: %s moved to %s.", course.Title, sess.Title, sess.StartsAt.Format("Mon 02 Jan 2006 15:04")))
	}
	return sess, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	course, err := s.courses.GetByID(ctx, sess.CourseID)
	if err != nil {
		return err
	}
	if err := CanTeach(actor, course); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.RecordBy(ctx, actor, ActionSessionDeleted, "session", id, map[string]interface{}{"course_id": course.ID})
	return nil
}

func (s *SessionService) notifyTrainees(ctx context.Context, course *model.Course, title, body string) {
	trainees, err := s.enrollmentRepo.ActiveUserIDs(ctx, course.ID)
	if err != nil {
		s.log.Error().Err(err).Str("course_id", course.ID.String()).Msg("List trainees for notification")
		return
	}
	s.notifications.Notify(ctx, trainees, model.NotificationKindSession, title, body, courseLink(course.ID))
}
