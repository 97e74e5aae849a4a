package websocket

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSend   Action = "send"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionHide   Action = "hide"
	ActionPing   Action = "ping"
)

// RequestPayload is a single client frame. RequestID is echoed back in the
// ack or error so clients can match replies to requests.
type RequestPayload struct {
	Action    Action     `json:"action"`
	RequestID string     `json:"request_id,omitempty"`
	MessageID *uuid.UUID `json:"message_id,omitempty"`
	Body      string     `json:"body,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventAck   Event = "ack"
	EventPong  Event = "pong"
	EventLive  Event = "live"
)

// AckResponse confirms a mutation and carries its result.
type AckResponse struct {
	Event     Event       `json:"event"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// LiveResponse forwards a thread event published by any API instance.
type LiveResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event     Event  `json:"event"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
