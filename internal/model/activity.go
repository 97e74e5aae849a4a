package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityLog records who did what to which entity.
type ActivityLog struct {
	ID        uuid.UUID       `json:"id"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	ActorName string          `json:"actor_name,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  *uuid.UUID      `json:"entity_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ActorID *uuid.UUID
	Entity  string
}
