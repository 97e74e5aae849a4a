package model

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackThread is a conversation between one trainee and one trainer.
type FeedbackThread struct {
	ID            uuid.UUID  `json:"id"`
	TraineeID     uuid.UUID  `json:"trainee_id"`
	TraineeName   string     `json:"trainee_name"`
	TrainerID     uuid.UUID  `json:"trainer_id"`
	TrainerName   string     `json:"trainer_name"`
	CourseID      *uuid.UUID `json:"course_id,omitempty"`
	Subject       string     `json:"subject"`
	LastMessageAt time.Time  `json:"last_message_at"`
	UnreadCount   int        `json:"unread_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasParticipant reports whether userID is the trainee or trainer of the thread.
func (t *FeedbackThread) HasParticipant(userID uuid.UUID) bool {
	return t.TraineeID == userID || t.TrainerID == userID
}

// Counterpart returns the other participant's id.
func (t *FeedbackThread) Counterpart(userID uuid.UUID) uuid.UUID {
	if t.TraineeID == userID {
		return t.TrainerID
	}
	return t.TraineeID
}

// FeedbackMessage is a single message in a thread. Deleted messages keep
// their row with an empty body so clients can render a tombstone.
type FeedbackMessage struct {
	ID         uuid.UUID  `json:"id"`
	ThreadID   uuid.UUID  `json:"thread_id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Body       string     `json:"body"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Deleted reports whether the message was soft deleted.
func (m *FeedbackMessage) Deleted() bool {
	return m.DeletedAt != nil
}

// StartThreadRequest opens a thread with another participant.
type StartThreadRequest struct {
	ParticipantID uuid.UUID  `json:"participant_id" binding:"required"`
	CourseID      *uuid.UUID `json:"course_id"`
	Subject       string     `json:"subject" binding:"required,min=2,max=255"`
	Message       string     `json:"message" binding:"omitempty,max=4000"`
}

// SendMessageRequest posts a message.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=4000"`
}
