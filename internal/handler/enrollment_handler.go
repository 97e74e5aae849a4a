package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
)

// EnrollmentHandler handles enrollment endpoints for trainees, trainers and admins.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// Enroll godoc
// POST /api/v1/courses/:id/enroll
// The calling trainee enrolls in an open course.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.SelfEnroll(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"enrollment": enrollment})
}

// AdminEnroll godoc
// POST /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) AdminEnroll(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.AdminEnrollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	enrollment, err := h.enrollmentService.AdminEnroll(c.Request.Context(), middleware.GetActor(c), courseID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"enrollment": enrollment})
}

// ListMine godoc
// GET /api/v1/enrollments/me
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	enrollments, err := h.enrollmentService.ListMine(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// Roster godoc
// GET /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.Roster(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// GetEnrollment godoc
// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetByID(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Drop godoc
// POST /api/v1/enrollments/:id/drop
// Marks the enrollment dropped; the row and its grade are kept.
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Drop(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Remove godoc
// DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.enrollmentService.Remove(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "enrollment removed"})
}
