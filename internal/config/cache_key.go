package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey returns the cache key marking a JWT (by JTI) as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// TokensValidAfterKey returns the cache key holding the unix time before which
// a user's tokens are rejected (set on role change or deletion)
func (r *CacheKeyStruct) TokensValidAfterKey(userID uuid.UUID) string {
	return fmt.Sprintf("auth:valid_after:%s", userID)
}

// RateLimitKey returns the counter key for one client in one limiter window
func (r *CacheKeyStruct) RateLimitKey(scope, ip string, windowStart int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, ip, windowStart)
}

// UnreadNotificationsKey returns the cache key for a user's unread notification count
func (r *CacheKeyStruct) UnreadNotificationsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:unread_notifications", userID)
}

// AdminDashboardKey returns the cache key for the admin dashboard summary
func (r *CacheKeyStruct) AdminDashboardKey() string {
	return "dashboard:admin"
}

// PublicSettingsKey returns the cache key for the public settings map
func (r *CacheKeyStruct) PublicSettingsKey() string {
	return "settings:public"
}

// CoursesChannel is the PubSub channel for course changes
func (r *CacheKeyStruct) CoursesChannel() string {
	return "live:courses"
}

// EnrollmentsChannel is the PubSub channel for enrollment changes
func (r *CacheKeyStruct) EnrollmentsChannel() string {
	return "live:enrollments"
}

// ActivityChannel is the PubSub channel for new activity log entries
func (r *CacheKeyStruct) ActivityChannel() string {
	return "live:activity"
}

// NotificationsChannel returns the PubSub channel for a user's notifications
func (r *CacheKeyStruct) NotificationsChannel(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:%s", userID)
}

// FeedbackThreadChannel returns the PubSub channel for a feedback thread
func (r *CacheKeyStruct) FeedbackThreadChannel(threadID uuid.UUID) string {
	return fmt.Sprintf("feedback:%s", threadID)
}

var CacheKey = NewCacheKeyStruct()
