package model

import (
	"time"

	"github.com/google/uuid"
)

// Material is a file attached to a course.
type Material struct {
	ID          uuid.UUID  `json:"id"`
	CourseID    uuid.UUID  `json:"course_id"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	Title       string     `json:"title"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Base64MaterialRequest uploads a material whose content is inlined as base64,
// optionally as a data URL ("data:application/pdf;base64,...").
type Base64MaterialRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	FileName string `json:"file_name" binding:"required,min=1,max=255"`
	Content  string `json:"content" binding:"required"`
}
