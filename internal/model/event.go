package model

// LiveEvent is the JSON frame delivered to live subscribers.
type LiveEvent struct {
	Type  string      `json:"type"`
	Topic string      `json:"topic"`
	Data  interface{} `json:"data,omitempty"`
}

// Live event types.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventHidden  = "hidden"
	EventPing    = "ping"
)
