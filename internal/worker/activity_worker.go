package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ActivityWorker consumes activity_queue and persists entries in batches to
// PostgreSQL, mirroring them to MongoDB when configured.
type ActivityWorker struct {
	repo   *repository.ActivityRepository
	mirror *repository.ActivityMirror
	broker *pubsub.Broker
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewActivityWorker creates a new ActivityWorker. mirror may be nil.
func NewActivityWorker(
	repo *repository.ActivityRepository,
	mirror *repository.ActivityMirror,
	broker *pubsub.Broker,
	rdb *redis.Client,
	log zerolog.Logger,
) *ActivityWorker {
	return &ActivityWorker{
		repo:   repo,
		mirror: mirror,
		broker: broker,
		rdb:    rdb,
		log:    log.With().Str("component", "activity_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *ActivityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ActivityWorker started")

	buffer := make([]model.ActivityLog, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.ActivityQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var entry model.ActivityLog
		if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed activity")
			continue
		}
		buffer = append(buffer, entry)
	}
}

// flushSafe tries a bulk copy, then falls back to row-by-row inserts,
// requeueing whatever still fails.
func (w *ActivityWorker) flushSafe(ctx context.Context, batch []model.ActivityLog) {
	stored := batch
	if err := w.repo.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		stored = w.fallbackInsert(ctx, batch)
	}
	if len(stored) == 0 {
		return
	}

	if err := w.mirror.InsertBatch(ctx, stored); err != nil {
		w.log.Warn().Err(err).Int("count", len(stored)).Msg("Mongo mirror write failed")
	}
	for _, l := range stored {
		w.broker.Publish(ctx, config.CacheKey.ActivityChannel(), pubsub.TopicActivity, model.EventCreated, l)
	}
}

func (w *ActivityWorker) fallbackInsert(ctx context.Context, batch []model.ActivityLog) []model.ActivityLog {
	stored := make([]model.ActivityLog, 0, len(batch))
	var requeue []model.ActivityLog

	for _, l := range batch {
		err := w.repo.Insert(ctx, l)
		switch {
		case err == nil:
			stored = append(stored, l)
		case errors.Is(err, repository.ErrDependencyUsed):
			// The actor was deleted before the entry was flushed.
			l.ActorID = nil
			if err := w.repo.Insert(ctx, l); err != nil {
				requeue = append(requeue, l)
				continue
			}
			stored = append(stored, l)
		default:
			w.log.Error().Err(err).Str("action", l.Action).Msg("Insert failed, requeueing")
			requeue = append(requeue, l)
		}
	}

	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
	return stored
}

func (w *ActivityWorker) requeue(ctx context.Context, items []model.ActivityLog) {
	pipe := w.rdb.Pipeline()
	for _, l := range items {
		data, _ := json.Marshal(l)
		pipe.RPush(ctx, config.WorkerKey.ActivityQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue activity. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed activity")
	time.Sleep(2 * time.Second)
}

func (w *ActivityWorker) shutdown(buffer []model.ActivityLog) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Pick up whatever is still queued so a restart starts clean.
	for len(buffer) < BatchSize*4 {
		raw, err := w.rdb.LPop(shutdownCtx, config.WorkerKey.ActivityQueue).Result()
		if err != nil {
			break
		}
		var entry model.ActivityLog
		if json.Unmarshal([]byte(raw), &entry) == nil {
			buffer = append(buffer, entry)
		}
	}

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
	w.log.Info().Int("count", len(buffer)).Msg("Worker stopped")
}
