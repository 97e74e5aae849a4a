package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// ActivityHandler exposes the audit log to admins.
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListActivity godoc
// GET /api/v1/activity?actor_id=&entity=&page=&per_page=
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	page, perPage := pageParams(c)

	actorID, ok := optionalUUIDQuery(c, "actor_id")
	if !ok {
		return
	}
	filter := model.ActivityFilter{
		ActorID: actorID,
		Entity:  strings.TrimSpace(c.Query("entity")),
	}

	logs, pagination, err := h.activityService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"activity": logs}, pagination)
}
