package service

import (
	"fmt"
	"strings"

	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
)

// DefaultStreamTopics is used when a client subscribes without naming topics.
var DefaultStreamTopics = []string{pubsub.TopicCourses, pubsub.TopicNotifications}

// ParseTopics splits a comma separated topic list, dropping blanks and duplicates.
func ParseTopics(raw string) []string {
	seen := map[string]bool{}
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics
}

// StreamChannels maps requested topics to the Redis channels the actor may
// listen on. Any unknown or forbidden topic rejects the whole request.
func StreamChannels(actor Actor, topics []string) ([]string, error) {
	if !actor.Approved() {
		return nil, ErrForbidden
	}
	if len(topics) == 0 {
		topics = DefaultStreamTopics
	}

	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		switch t {
		case pubsub.TopicCourses:
			channels = append(channels, config.CacheKey.CoursesChannel())
		case pubsub.TopicNotifications:
			channels = append(channels, config.CacheKey.NotificationsChannel(actor.ID))
		case pubsub.TopicEnrollments:
			if !actor.IsAdmin() {
				return nil, fmt.Errorf("%w: %s", ErrTopicNotPermitted, t)
			}
			channels = append(channels, config.CacheKey.EnrollmentsChannel())
		case pubsub.TopicActivity:
			if !actor.IsAdmin() {
				return nil, fmt.Errorf("%w: %s", ErrTopicNotPermitted, t)
			}
			channels = append(channels, config.CacheKey.ActivityChannel())
		default:
			return nil, fmt.Errorf("%w: %s", ErrTopicNotPermitted, t)
		}
	}
	return channels, nil
}
