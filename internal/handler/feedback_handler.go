package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
)

// FeedbackHandler handles the REST side of feedback threads.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// StartThread godoc
// POST /api/v1/feedback/threads
// Returns the existing thread when the pair already has one.
func (h *FeedbackHandler) StartThread(c *gin.Context) {
	var req model.StartThreadRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	thread, err := h.feedbackService.StartThread(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"thread": thread})
}

// ListThreads godoc
// GET /api/v1/feedback/threads?all=true&page=&per_page=
// all=true lists every thread for moderators and is paginated.
func (h *FeedbackHandler) ListThreads(c *gin.Context) {
	page, perPage := pageParams(c)
	all, _ := strconv.ParseBool(c.Query("all"))

	threads, pagination, err := h.feedbackService.ListThreads(c.Request.Context(), middleware.GetActor(c), all, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	if pagination != nil {
		response.SuccessWithPagination(c, http.StatusOK, gin.H{"threads": threads}, pagination)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"threads": threads})
}

// GetThread godoc
// GET /api/v1/feedback/threads/:id
func (h *FeedbackHandler) GetThread(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	thread, err := h.feedbackService.GetThread(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"thread": thread})
}

// ListMessages godoc
// GET /api/v1/feedback/threads/:id/messages?before=<RFC3339>&limit=
// Pages backwards from before; marks the counterpart's messages read.
func (h *FeedbackHandler) ListMessages(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"before": "before must be an RFC3339 timestamp"})
			return
		}
		before = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.feedbackService.ListMessages(c.Request.Context(), middleware.GetActor(c), id, before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": messages})
}

// SendMessage godoc
// POST /api/v1/feedback/threads/:id/messages
func (h *FeedbackHandler) SendMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.feedbackService.SendMessage(c.Request.Context(), middleware.GetActor(c), id, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"message": msg})
}

// EditMessage godoc
// PUT /api/v1/feedback/messages/:id
func (h *FeedbackHandler) EditMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.feedbackService.EditMessage(c.Request.Context(), middleware.GetActor(c), id, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// DeleteMessage godoc
// DELETE /api/v1/feedback/messages/:id
// Soft deletes for everyone.
func (h *FeedbackHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.feedbackService.DeleteMessage(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// HideMessage godoc
// POST /api/v1/feedback/messages/:id/hide
// Hides the message from the caller's view only.
func (h *FeedbackHandler) HideMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	evt, err := h.feedbackService.HideMessage(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"hidden": evt})
}
