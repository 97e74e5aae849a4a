package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	ws "github.com/stemsi/trainhub-backend/internal/websocket"
)

const wsActionTimeout = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedbackWSHandler streams a feedback thread over WebSocket and accepts
// message mutations on the same connection.
type FeedbackWSHandler struct {
	feedbackService *service.FeedbackService
	broker          *pubsub.Broker
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewFeedbackWSHandler creates a new FeedbackWSHandler.
func NewFeedbackWSHandler(feedbackService *service.FeedbackService, broker *pubsub.Broker, log zerolog.Logger, allowedOrigins []string) *FeedbackWSHandler {
	return &FeedbackWSHandler{
		feedbackService: feedbackService,
		broker:          broker,
		log:             log.With().Str("component", "feedback_ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// ThreadStream godoc
// WS /ws/v1/feedback/threads/:id?token=<jwt>
// Upgrades to WebSocket. Live thread events are pushed as "live" frames;
// send/edit/delete/hide/ping frames are answered with "ack", "pong" or "error".
func (h *FeedbackWSHandler) ThreadStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	actor := claims.Actor()

	threadID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	// Access is checked before the upgrade so failures are plain HTTP errors.
	if _, err := h.feedbackService.GetThread(c.Request.Context(), actor, threadID); err != nil {
		respondError(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer raw.Close()

	wsLog := h.log.With().
		Str("user_id", actor.ID.String()).
		Str("thread_id", threadID.String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.broker.Subscribe(ctx, config.CacheKey.FeedbackThreadChannel(threadID))
	defer sub.Close()
	go h.forward(ctx, conn, sub.Channel(), actor.ID, wsLog)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(raw, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSend, ws.ActionEdit, ws.ActionDelete, ws.ActionHide:
			h.handleAction(conn, actor, threadID, &msg, wsLog)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError(msg.RequestID, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAction applies one mutation and acks it. Other connections learn
// about the change from the published live event.
func (h *FeedbackWSHandler) handleAction(conn *ws.Conn, actor service.Actor, threadID uuid.UUID, msg *ws.RequestPayload, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), wsActionTimeout)
	defer cancel()

	if msg.Action != ws.ActionSend && msg.MessageID == nil {
		conn.WriteError(msg.RequestID, "message_id is required")
		return
	}

	var (
		result interface{}
		err    error
	)
	switch msg.Action {
	case ws.ActionSend:
		result, err = h.feedbackService.SendMessage(ctx, actor, threadID, msg.Body)
	case ws.ActionEdit:
		result, err = h.feedbackService.EditMessage(ctx, actor, *msg.MessageID, msg.Body)
	case ws.ActionDelete:
		result, err = h.feedbackService.DeleteMessage(ctx, actor, *msg.MessageID)
	case ws.ActionHide:
		result, err = h.feedbackService.HideMessage(ctx, actor, *msg.MessageID)
	}

	if err != nil {
		status, code := mapError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("action", string(msg.Action)).Msg("Feedback action failed")
		}
		conn.WriteError(msg.RequestID, string(code))
		return
	}
	conn.WriteAck(msg.RequestID, result)
}

// forward relays published thread events to the client. Hidden events are
// delivered only to the viewer who hid the message.
func (h *FeedbackWSHandler) forward(ctx context.Context, conn *ws.Conn, ch <-chan *redis.Message, viewerID uuid.UUID, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			if !visibleTo(m.Payload, viewerID) {
				continue
			}
			if err := conn.WriteTyped(ws.LiveResponse{Event: ws.EventLive, Data: json.RawMessage(m.Payload)}); err != nil {
				log.Debug().Err(err).Msg("Live write failed")
				return
			}
		}
	}
}

// visibleTo reports whether a thread event payload should reach viewerID.
func visibleTo(payload string, viewerID uuid.UUID) bool {
	var evt struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return false
	}
	if evt.Type != model.EventHidden {
		return true
	}
	var hidden service.HiddenEvent
	if err := json.Unmarshal(evt.Data, &hidden); err != nil {
		return false
	}
	return hidden.UserID == viewerID
}
