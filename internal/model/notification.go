package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies notifications for client-side icons and filters.
type NotificationKind string

const (
	NotificationKindEnrollment NotificationKind = "enrollment"
	NotificationKindSession    NotificationKind = "session"
	NotificationKindMaterial   NotificationKind = "material"
	NotificationKindGrade      NotificationKind = "grade"
	NotificationKindFeedback   NotificationKind = "feedback"
	NotificationKindCourse     NotificationKind = "course"
	NotificationKindAccount    NotificationKind = "account"
	NotificationKindBroadcast  NotificationKind = "broadcast"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Link      string           `json:"link,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// BroadcastRequest sends a notification to every user with the given role.
type BroadcastRequest struct {
	Role  Role   `json:"role" binding:"required,oneof=admin trainer trainee pending"`
	Title string `json:"title" binding:"required,min=2,max=255"`
	Body  string `json:"body" binding:"required,min=1,max=4000"`
	Link  string `json:"link" binding:"omitempty,max=500"`
}
