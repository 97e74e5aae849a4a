package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment links a trainee to a course. CourseTitle and TrainerName are
// copied from the course and kept in sync by course writes.
type Enrollment struct {
	ID          uuid.UUID        `json:"id"`
	CourseID    uuid.UUID        `json:"course_id"`
	UserID      uuid.UUID        `json:"user_id"`
	UserName    string           `json:"user_name,omitempty"`
	UserEmail   string           `json:"user_email,omitempty"`
	CourseTitle string           `json:"course_title"`
	TrainerName string           `json:"trainer_name"`
	Status      EnrollmentStatus `json:"status"`
	Grade       *Grade           `json:"grade,omitempty"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// AdminEnrollRequest lets an admin enroll a trainee into a course.
type AdminEnrollRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}
