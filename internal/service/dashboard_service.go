package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

const (
	adminDashboardTTL     = 30 * time.Second
	dashboardPendingLimit = 10
	dashboardActivity     = 15
	dashboardNotifyLimit  = 5
)

// DashboardService assembles the role-specific landing data.
type DashboardService struct {
	repo           *repository.DashboardRepository
	activityRepo   *repository.ActivityRepository
	courseRepo     *repository.CourseRepository
	enrollmentRepo *repository.EnrollmentRepository
	feedbackRepo   *repository.FeedbackRepository
	users          *repository.UserRepository
	sessions       *SessionService
	notifications  *NotificationService
	settings       *SettingService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	repo *repository.DashboardRepository,
	activityRepo *repository.ActivityRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	feedbackRepo *repository.FeedbackRepository,
	users *repository.UserRepository,
	sessions *SessionService,
	notifications *NotificationService,
	settings *SettingService,
	rdb *redis.Client,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		repo:           repo,
		activityRepo:   activityRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		feedbackRepo:   feedbackRepo,
		users:          users,
		sessions:       sessions,
		notifications:  notifications,
		settings:       settings,
		rdb:            rdb,
		log:            log.With().Str("component", "dashboard_service").Logger(),
	}
}

// ForActor returns the dashboard matching the caller's role.
func (s *DashboardService) ForActor(ctx context.Context, actor Actor) (interface{}, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return s.Admin(ctx)
	case model.RoleTrainer:
		return s.Trainer(ctx, actor)
	case model.RoleTrainee:
		return s.Trainee(ctx, actor)
	default:
		return s.Pending(ctx, actor)
	}
}

// Admin returns system-wide counts, cached briefly in Redis.
func (s *DashboardService) Admin(ctx context.Context) (*model.AdminDashboard, error) {
	key := config.CacheKey.AdminDashboardKey()
	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var d model.AdminDashboard
		if json.Unmarshal(cached, &d) == nil {
			return &d, nil
		}
	}

	users, courses, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.GetPendingApprovals(ctx, dashboardPendingLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.activityRepo.Recent(ctx, dashboardActivity)
	if err != nil {
		return nil, err
	}

	d := &model.AdminDashboard{
		UsersByRole:      users,
		CoursesByStatus:  courses,
		PendingApprovals: pending,
		RecentActivity:   recent,
	}
	if raw, err := json.Marshal(d); err == nil {
		s.rdb.Set(ctx, key, raw, adminDashboardTTL)
	}
	return d, nil
}

// Trainer returns the trainer's courses, next sessions and threads with unread messages.
func (s *DashboardService) Trainer(ctx context.Context, actor Actor) (*model.TrainerDashboard, error) {
	courses, err := s.courseRepo.ListByTrainer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.sessions.Upcoming(ctx, actor)
	if err != nil {
		return nil, err
	}
	threads, err := s.feedbackRepo.ListThreadsForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	unread := make([]model.FeedbackThread, 0, len(threads))
	for _, t := range threads {
		if t.UnreadCount > 0 {
			unread = append(unread, t)
		}
	}

	return &model.TrainerDashboard{
		Courses:          courses,
		UpcomingSessions: upcoming,
		Threads:          unread,
	}, nil
}

// Trainee returns the trainee's enrollments with grades, next sessions and notifications.
func (s *DashboardService) Trainee(ctx context.Context, actor Actor) (*model.TraineeDashboard, error) {
	enrollments, err := s.enrollmentRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.sessions.Upcoming(ctx, actor)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.UnreadCount(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.notifications.List(ctx, actor.ID, false, 1, dashboardNotifyLimit)
	if err != nil {
		return nil, err
	}

	return &model.TraineeDashboard{
		Enrollments:         enrollments,
		UpcomingSessions:    upcoming,
		UnreadNotifications: unread,
		RecentNotifications: recent,
	}, nil
}

// Pending returns the profile of an account awaiting approval.
func (s *DashboardService) Pending(ctx context.Context, actor Actor) (*model.PendingDashboard, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	open, err := s.settings.RegistrationOpen(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Read registration setting")
	}
	return &model.PendingDashboard{
		User:               *u,
		AwaitingApproval:   u.Role == model.RolePending,
		RegistrationIsOpen: open,
	}, nil
}

