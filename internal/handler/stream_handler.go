package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/pubsub"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

const keepAliveInterval = 30 * time.Second

// StreamHandler pushes live events to browsers over Server-Sent Events.
type StreamHandler struct {
	broker *pubsub.Broker
	log    zerolog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(broker *pubsub.Broker, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		broker: broker,
		log:    log.With().Str("component", "stream_handler").Logger(),
	}
}

// Stream godoc
// GET /api/v1/stream?topics=courses,notifications&token=<jwt>
// Subscribes to the requested topics. Admins may also request enrollments
// and activity. Without topics the stream carries courses and notifications.
func (h *StreamHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	channels, err := service.StreamChannels(claims.Actor(), service.ParseTopics(c.Query("topics")))
	if err != nil {
		respondError(c, err)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	sub := h.broker.Subscribe(reqCtx, channels...)
	defer sub.Close()
	ch := sub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	streamLog := h.log.With().Str("user_id", claims.UserID.String()).Strs("channels", channels).Logger()
	streamLog.Info().Msg("Client attached to live stream")

	// Pre-allocate a reusable ping payload (never changes)
	pingPayload, _ := json.Marshal(model.LiveEvent{Type: model.EventPing})

	for {
		select {
		case <-reqCtx.Done():
			streamLog.Info().Msg("Client detached from live stream")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already LiveEvent JSON; forward as-is.
			writeSSE(c, []byte(msg.Payload))

		case <-keepAliveTicker.C:
			writeSSE(c, pingPayload)
		}
	}
}

func writeSSE(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
