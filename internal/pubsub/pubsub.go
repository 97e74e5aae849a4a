// Package pubsub carries live events between API instances over Redis Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/trainhub-backend/internal/model"
)

// Live topic names accepted by the stream endpoint.
const (
	TopicCourses       = "courses"
	TopicEnrollments   = "enrollments"
	TopicNotifications = "notifications"
	TopicActivity      = "activity"
	TopicFeedback      = "feedback"
)

// Broker publishes and subscribes to live events.
type Broker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewBroker creates a new Broker.
func NewBroker(rdb *redis.Client, log zerolog.Logger) *Broker {
	return &Broker{
		rdb: rdb,
		log: log.With().Str("component", "pubsub").Logger(),
	}
}

// Publish sends an event on channel. Failures are logged and returned; live
// delivery is best effort and never rolls back the write that caused it.
func (b *Broker) Publish(ctx context.Context, channel, topic, eventType string, data interface{}) error {
	payload, err := json.Marshal(model.LiveEvent{Type: eventType, Topic: topic, Data: data})
	if err != nil {
		return fmt.Errorf("marshal live event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		b.log.Warn().Err(err).Str("channel", channel).Msg("Publish failed")
		return err
	}
	return nil
}

// Subscribe opens a subscription on the given channels. The caller must Close it.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return b.rdb.Subscribe(ctx, channels...)
}
