package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a scheduled meeting of a course.
type Session struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionRequest is the payload for creating or updating a session.
type SessionRequest struct {
	Title       string    `json:"title" binding:"required,min=2,max=255"`
	Description string    `json:"description" binding:"omitempty,max=5000"`
	Location    string    `json:"location" binding:"omitempty,max=255"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
}
