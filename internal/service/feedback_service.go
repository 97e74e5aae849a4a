package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
	notifyPreviewLen   = 120
)

// HiddenEvent is published when a viewer hides a message. Only that viewer's
// connections act on it.
type HiddenEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// FeedbackService implements trainee/trainer conversations.
type FeedbackService struct {
	repo           *repository.FeedbackRepository
	userRepo       *repository.UserRepository
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	notifications  *NotificationService
	broker         *pubsub.Broker
	log            zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	repo *repository.FeedbackRepository,
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	notifications *NotificationService,
	broker *pubsub.Broker,
	log zerolog.Logger,
) *FeedbackService {
	return &FeedbackService{
		repo:           repo,
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		notifications:  notifications,
		broker:         broker,
		log:            log.With().Str("component", "feedback_service").Logger(),
	}
}

// StartThread opens (or returns the existing) thread between the caller and
// another participant. Trainees may write to any trainer; trainers may write
// to trainees enrolled in one of their courses.
func (s *FeedbackService) StartThread(ctx context.Context, actor Actor, req *model.StartThreadRequest) (*model.FeedbackThread, error) {
	other, err := s.userRepo.GetByID(ctx, req.ParticipantID)
	if err != nil {
		return nil, err
	}

	var traineeID, trainerID uuid.UUID
	switch {
	case actor.IsTrainee():
		if other.Role != model.RoleTrainer {
			return nil, ErrNotTrainer
		}
		traineeID, trainerID = actor.ID, other.ID
	case actor.IsTrainer():
		if other.Role != model.RoleTrainee {
			return nil, ErrNotTrainee
		}
		teaches, err := s.enrollmentRepo.IsTrainerOf(ctx, actor.ID, other.ID)
		if err != nil {
			return nil, err
		}
		if !teaches {
			return nil, ErrForbidden
		}
		traineeID, trainerID = other.ID, actor.ID
	default:
		return nil, ErrForbidden
	}

	if req.CourseID != nil {
		course, err := s.courseRepo.GetByID(ctx, *req.CourseID)
		if err != nil {
			return nil, err
		}
		if course.TrainerID == nil || *course.TrainerID != trainerID {
			return nil, ErrNotCourseTrainer
		}
	}

	thread, err := s.repo.FindThread(ctx, traineeID, trainerID, req.CourseID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if thread == nil {
		thread = &model.FeedbackThread{
			TraineeID: traineeID,
			TrainerID: trainerID,
			CourseID:  req.CourseID,
			Subject:   strings.TrimSpace(req.Subject),
		}
		if err := s.repo.CreateThread(ctx, thread); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, err
			}
			// Lost a race with the other participant; use their thread.
			if thread, err = s.repo.FindThread(ctx, traineeID, trainerID, req.CourseID); err != nil {
				return nil, err
			}
		}
	}

	if strings.TrimSpace(req.Message) != "" {
		if _, err := s.SendMessage(ctx, actor, thread.ID, req.Message); err != nil {
			return nil, err
		}
	}
	return s.repo.GetThread(ctx, thread.ID, actor.ID)
}

// ListThreads returns the caller's threads. Moderators pass all=true to list every thread.
func (s *FeedbackService) ListThreads(ctx context.Context, actor Actor, all bool, page, perPage int) ([]model.FeedbackThread, *response.Pagination, error) {
	if all && CanModerateThread(actor) {
		page, perPage, limit, offset := pageWindow(page, perPage)
		threads, total, err := s.repo.ListAllThreads(ctx, actor.ID, limit, offset)
		if err != nil {
			return nil, nil, err
		}
		return threads, response.NewPagination(page, perPage, total), nil
	}
	threads, err := s.repo.ListThreadsForUser(ctx, actor.ID)
	return threads, nil, err
}

// GetThread returns a thread visible to actor.
func (s *FeedbackService) GetThread(ctx context.Context, actor Actor, id uuid.UUID) (*model.FeedbackThread, error) {
	thread, err := s.repo.GetThread(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := CheckThreadAccess(actor, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// ListMessages returns a page of messages the caller has not hidden and
// marks the counterpart's messages as read.
func (s *FeedbackService) ListMessages(ctx context.Context, actor Actor, threadID uuid.UUID, before *time.Time, limit int) ([]model.FeedbackMessage, error) {
	thread, err := s.GetThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}

	messages, err := s.repo.ListMessages(ctx, threadID, actor.ID, before, limit)
	if err != nil {
		return nil, err
	}
	if thread.HasParticipant(actor.ID) && thread.UnreadCount > 0 {
		if _, err := s.repo.MarkThreadRead(ctx, threadID, actor.ID); err != nil {
			s.log.Warn().Err(err).Str("thread_id", threadID.String()).Msg("Mark thread read failed")
		}
	}
	return messages, nil
}

// SendMessage posts a message as a participant and notifies the counterpart.
func (s *FeedbackService) SendMessage(ctx context.Context, actor Actor, threadID uuid.UUID, body string) (*model.FeedbackMessage, error) {
	thread, err := s.repo.GetThread(ctx, threadID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}

	msg := &model.FeedbackMessage{ThreadID: threadID, SenderID: actor.ID, Body: strings.TrimSpace(body)}
	if msg.Body == "" {
		return nil, ErrInvalidMessage
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if sender, err := s.userRepo.GetByID(ctx, actor.ID); err == nil {
		msg.SenderName = sender.Name
	}

	s.publish(ctx, threadID, model.EventCreated, msg)
	s.notifications.Notify(ctx, []uuid.UUID{thread.Counterpart(actor.ID)}, model.NotificationKindFeedback,
		"New message from "+msg.SenderName, preview(msg.Body), "/feedback/"+threadID.String())
	return msg, nil
}

// EditMessage replaces the body of the caller's own message.
func (s *FeedbackService) EditMessage(ctx context.Context, actor Actor, messageID uuid.UUID, body string) (*model.FeedbackMessage, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := CheckMessageEdit(actor, msg); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrInvalidMessage
	}

	editedAt, err := s.repo.EditMessage(ctx, messageID, body)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageDeleted
		}
		return nil, err
	}
	msg.Body = body
	msg.EditedAt = &editedAt

	s.publish(ctx, msg.ThreadID, model.EventUpdated, msg)
	return msg, nil
}

// DeleteMessage soft deletes a message for everyone.
func (s *FeedbackService) DeleteMessage(ctx context.Context, actor Actor, messageID uuid.UUID) (*model.FeedbackMessage, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := CheckMessageDelete(actor, msg); err != nil {
		return nil, err
	}

	deletedAt, err := s.repo.SoftDeleteMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageDeleted
		}
		return nil, err
	}
	msg.Body = ""
	msg.DeletedAt = &deletedAt

	s.publish(ctx, msg.ThreadID, model.EventDeleted, msg)
	return msg, nil
}

// HideMessage hides a message from the caller's own view only.
func (s *FeedbackService) HideMessage(ctx context.Context, actor Actor, messageID uuid.UUID) (*HiddenEvent, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetThread(ctx, actor, msg.ThreadID); err != nil {
		return nil, err
	}
	if err := s.repo.HideMessage(ctx, messageID, actor.ID); err != nil {
		return nil, err
	}

	evt := &HiddenEvent{MessageID: messageID, UserID: actor.ID}
	s.publish(ctx, msg.ThreadID, model.EventHidden, evt)
	return evt, nil
}

func (s *FeedbackService) publish(ctx context.Context, threadID uuid.UUID, eventType string, data interface{}) {
	s.broker.Publish(ctx, config.CacheKey.FeedbackThreadChannel(threadID), pubsub.TopicFeedback, eventType, data)
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= notifyPreviewLen {
		return body
	}
	return string(r[:notifyPreviewLen]) + "…"
}
