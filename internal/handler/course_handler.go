package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
)

// CourseHandler handles course catalog and administration endpoints.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/v1/courses?status=&search=&trainer_id=&page=&per_page=
// Trainers only see their own courses, trainees only open ones.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, perPage := pageParams(c)

	trainerID, ok := optionalUUIDQuery(c, "trainer_id")
	if !ok {
		return
	}

	filter := model.CourseFilter{
		Status:    model.CourseStatus(c.Query("status")),
		Search:    strings.TrimSpace(c.Query("search")),
		TrainerID: trainerID,
	}

	courses, pagination, err := h.courseService.List(c.Request.Context(), middleware.GetActor(c), filter, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	course, err := h.courseService.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.courseService.CanView(ctx, middleware.GetActor(c), course); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), middleware.GetActor(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// AssignTrainer godoc
// PUT /api/v1/courses/:id/trainer
// A null trainer_id unassigns the course.
func (h *CourseHandler) AssignTrainer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.AssignTrainerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.AssignTrainer(c.Request.Context(), middleware.GetActor(c), id, req.TrainerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CancelCourse godoc
// POST /api/v1/courses/:id/cancel
func (h *CourseHandler) CancelCourse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.Cancel(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted"})
}
