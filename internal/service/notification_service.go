package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
)

const unreadCountTTL = 5 * time.Minute

// NotificationService enqueues notifications for the notification worker and
// serves the per-user inbox.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	activity *ActivityService
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	activity *ActivityService,
	rdb *redis.Client,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		activity: activity,
		rdb:      rdb,
		log:      log.With().Str("component", "notification_service").Logger(),
	}
}

// Notify enqueues one notification per recipient. Enqueue errors are logged;
// a notification is never a reason to fail the write that triggered it.
func (s *NotificationService) Notify(ctx context.Context, userIDs []uuid.UUID, kind model.NotificationKind, title, body, link string) {
	if len(userIDs) == 0 {
		return
	}
	payloads := make([]interface{}, 0, len(userIDs))
	for _, id := range userIDs {
		raw, err := json.Marshal(model.Notification{UserID: id, Kind: kind, Title: title, Body: body, Link: link})
		if err != nil {
			s.log.Error().Err(err).Msg("Marshal notification")
			continue
		}
		payloads = append(payloads, raw)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.NotifyQueue, payloads...).Err(); err != nil {
		s.log.Error().Err(err).Int("count", len(payloads)).Msg("Enqueue notifications")
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, perPage int) ([]model.Notification, *response.Pagination, error) {
	page, perPage, limit, offset := pageWindow(page, perPage)
	list, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return list, response.NewPagination(page, perPage, total), nil
}

// UnreadCount returns the user's unread count, served from Redis when cached.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := config.CacheKey.UnreadNotificationsKey(userID)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			return n, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Unread count cache read failed")
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.rdb.Set(ctx, key, n, unreadCountTTL)
	return n, nil
}

// InvalidateUnread drops the cached unread count of the given users.
func (s *NotificationService) InvalidateUnread(ctx context.Context, userIDs ...uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, config.CacheKey.UnreadNotificationsKey(id))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Unread count cache invalidation failed")
	}
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.InvalidateUnread(ctx, userID)
	return nil
}

// MarkAllRead marks all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.InvalidateUnread(ctx, userID)
	return n, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.InvalidateUnread(ctx, userID)
	return nil
}

// Broadcast notifies every user holding req.Role and returns the recipient count.
func (s *NotificationService) Broadcast(ctx context.Context, actor Actor, req *model.BroadcastRequest) (int, error) {
	users, err := s.userRepo.ListByRole(ctx, req.Role)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	s.Notify(ctx, ids, model.NotificationKindBroadcast, req.Title, req.Body, req.Link)

	s.activity.Record(ctx, &actor.ID, ActionBroadcastSent, "notification", nil, map[string]interface{}{
		"role":       req.Role,
		"title":      req.Title,
		"recipients": len(ids),
	})
	return len(ids), nil
}
