package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Grade is a trainer's assessment of one enrollment.
type Grade struct {
	ID           uuid.UUID  `json:"id"`
	EnrollmentID uuid.UUID  `json:"enrollment_id"`
	CourseID     uuid.UUID  `json:"course_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Score        float64    `json:"score"`
	Letter       string     `json:"letter"`
	Remarks      string     `json:"remarks"`
	GradedBy     *uuid.UUID `json:"graded_by,omitempty"`
	GradedAt     time.Time  `json:"graded_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GradebookRow is one trainee's line in a course gradebook.
type GradebookRow struct {
	EnrollmentID uuid.UUID        `json:"enrollment_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Status       EnrollmentStatus `json:"status"`
	Score        *float64         `json:"score,omitempty"`
	Letter       string           `json:"letter,omitempty"`
	Remarks      string           `json:"remarks,omitempty"`
	GradedAt     *time.Time       `json:"graded_at,omitempty"`
}

// GradeRequest sets a score for an enrollment.
type GradeRequest struct {
	Score   *float64 `json:"score" binding:"required,min=0,max=100"`
	Remarks string   `json:"remarks" binding:"omitempty,max=2000"`
}

// RoundScore rounds a score to the two decimals the grades table stores.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

// LetterFor maps a 0..100 score to a letter grade.
func LetterFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
