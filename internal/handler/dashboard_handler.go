package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// DashboardHandler handles the role-aware dashboard endpoint.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/dashboard
// Returns the dashboard for the caller's role: admin summary cards, a
// trainer's courses and open threads, a trainee's enrollments, or the
// approval state of a pending account.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.ForActor(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
