package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus enumerates the lifecycle states of a course.
type CourseStatus string

const (
	CourseStatusUnassigned CourseStatus = "unassigned"
	CourseStatusUpcoming   CourseStatus = "upcoming"
	CourseStatusOngoing    CourseStatus = "ongoing"
	CourseStatusCompleted  CourseStatus = "completed"
	CourseStatusCancelled  CourseStatus = "cancelled"
)

// Open reports whether trainees may still enroll.
func (s CourseStatus) Open() bool {
	return s == CourseStatusUpcoming || s == CourseStatusOngoing
}

// Course represents a training course. TrainerName is a denormalized copy.
type Course struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        string       `json:"category"`
	TrainerID       *uuid.UUID   `json:"trainer_id,omitempty"`
	TrainerName     string       `json:"trainer_name"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Capacity        int          `json:"capacity"`
	Status          CourseStatus `json:"status"`
	CreatedBy       *uuid.UUID   `json:"created_by,omitempty"`
	EnrollmentCount int          `json:"enrollment_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Status    CourseStatus
	TrainerID *uuid.UUID
	Search    string
	OpenOnly  bool
}

// CreateCourseRequest is the payload for creating or updating a course.
type CreateCourseRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=255"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Category    string     `json:"category" binding:"omitempty,max=100"`
	TrainerID   *uuid.UUID `json:"trainer_id"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     time.Time  `json:"end_date" binding:"required,gtefield=StartDate"`
	Capacity    int        `json:"capacity" binding:"omitempty,min=0,max=10000"`
}

// AssignTrainerRequest assigns (or clears, when nil) a course trainer.
type AssignTrainerRequest struct {
	TrainerID *uuid.UUID `json:"trainer_id"`
}
