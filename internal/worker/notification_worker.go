package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/mailer"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

const (
	NotifyBatchSize    = 50
	NotifyBatchTimeout = 500 * time.Millisecond
)

// NotificationStore persists queued notifications.
type NotificationStore interface {
	InsertBatch(ctx context.Context, items []*model.Notification) error
	Insert(ctx context.Context, n *model.Notification) error
}

// NotificationWorker consumes notify_queue: it persists notifications, pushes
// them to the recipients' live channels and optionally emails them.
type NotificationWorker struct {
	repo     NotificationStore
	users    *repository.UserRepository
	broker   *pubsub.Broker
	mailer   mailer.Mailer
	sendMail bool
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker. Email is only sent
// when sendMail is true.
func NewNotificationWorker(
	repo NotificationStore,
	users *repository.UserRepository,
	broker *pubsub.Broker,
	m mailer.Mailer,
	sendMail bool,
	rdb *redis.Client,
	log zerolog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		repo:     repo,
		users:    users,
		broker:   broker,
		mailer:   m,
		sendMail: sendMail,
		rdb:      rdb,
		log:      log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Bool("email", w.sendMail).Msg("NotificationWorker started")

	batch := make([]*model.Notification, 0, NotifyBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 && (len(batch) >= NotifyBatchSize || time.Since(lastFlush) >= NotifyBatchTimeout) {
			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background(), batch)
			w.log.Info().Msg("Worker stopped")
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.NotifyQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("BLPop error")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		n := &model.Notification{}
		if err := json.Unmarshal([]byte(result[1]), n); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed notification")
			continue
		}
		batch = append(batch, n)
	}
}

// flush persists the batch and fans out whatever was stored. Rows that
// failed for a transient reason go back on the queue.
func (w *NotificationWorker) flush(ctx context.Context, batch []*model.Notification) {
	stored, retry := w.persist(ctx, batch)
	if len(retry) > 0 {
		w.requeue(ctx, retry)
	}
	if len(stored) == 0 {
		return
	}
	batch = stored

	recipients := make(map[uuid.UUID]struct{}, len(batch))
	keys := make([]string, 0, len(batch))
	for _, n := range batch {
		if _, ok := recipients[n.UserID]; !ok {
			recipients[n.UserID] = struct{}{}
			keys = append(keys, config.CacheKey.UnreadNotificationsKey(n.UserID))
		}
		w.broker.Publish(ctx, config.CacheKey.NotificationsChannel(n.UserID),
			pubsub.TopicNotifications, model.EventCreated, n)
	}
	if err := w.rdb.Del(ctx, keys...).Err(); err != nil {
		w.log.Warn().Err(err).Msg("Unread cache invalidation failed")
	}

	if w.sendMail {
		w.email(ctx, batch)
	}
}

// persist tries one batch insert, then falls back to row-by-row inserts.
// Notifications whose recipient no longer exists are dropped.
func (w *NotificationWorker) persist(ctx context.Context, batch []*model.Notification) (stored, retry []*model.Notification) {
	err := w.repo.InsertBatch(ctx, batch)
	if err == nil {
		return batch, nil
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Batch insert failed, attempting row-by-row recovery")

	stored = make([]*model.Notification, 0, len(batch))
	for _, n := range batch {
		err := w.repo.Insert(ctx, n)
		switch {
		case err == nil:
			stored = append(stored, n)
		case errors.Is(err, repository.ErrDependencyUsed):
			w.log.Warn().Str("user_id", n.UserID.String()).Str("kind", string(n.Kind)).Msg("Recipient gone, dropping notification")
		default:
			w.log.Error().Err(err).Str("user_id", n.UserID.String()).Msg("Insert failed, requeueing")
			retry = append(retry, n)
		}
	}
	return stored, retry
}

// email sends one message per notification. Failures are logged only.
func (w *NotificationWorker) email(ctx context.Context, batch []*model.Notification) {
	users := map[uuid.UUID]*model.User{}
	for _, n := range batch {
		u, ok := users[n.UserID]
		if !ok {
			var err error
			if u, err = w.users.GetByID(ctx, n.UserID); err != nil {
				w.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Recipient lookup failed")
				continue
			}
			users[n.UserID] = u
		}

		text := n.Body
		if n.Link != "" {
			text += "\n\n" + n.Link
		}
		if err := w.mailer.Send(ctx, mailer.Message{
			ToName:    u.Name,
			ToAddress: u.Email,
			Subject:   n.Title,
			Text:      text,
		}); err != nil {
			w.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Email failed")
		}
	}
}

func (w *NotificationWorker) requeue(ctx context.Context, batch []*model.Notification) {
	pipe := w.rdb.Pipeline()
	for _, n := range batch {
		data, _ := json.Marshal(n)
		pipe.RPush(ctx, config.WorkerKey.NotifyQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(batch)).Msg("CRITICAL: Failed to requeue notifications")
		return
	}
	time.Sleep(2 * time.Second)
}

// drain flushes the in-memory batch and whatever is still queued.
func (w *NotificationWorker) drain(ctx context.Context, batch []*model.Notification) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	drained := len(batch)
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.NotifyQueue).Result()
		if err != nil {
			break
		}
		n := &model.Notification{}
		if err := json.Unmarshal([]byte(raw), n); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}
		batch = append(batch, n)
		drained++
		if len(batch) >= NotifyBatchSize {
			w.flush(ctx, batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		w.flush(ctx, batch)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
