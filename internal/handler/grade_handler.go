package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GradeHandler handles grading and gradebook endpoints.
type GradeHandler struct {
	gradeService *service.GradeService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradeService *service.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

// SetGrade godoc
// PUT /api/v1/enrollments/:id/grade
func (h *GradeHandler) SetGrade(c *gin.Context) {
	enrollmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.SetGrade(c.Request.Context(), middleware.GetActor(c), enrollmentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// MyGrades godoc
// GET /api/v1/grades/me
func (h *GradeHandler) MyGrades(c *gin.Context) {
	enrollments, err := h.gradeService.MyGrades(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// Gradebook godoc
// GET /api/v1/courses/:id/gradebook
func (h *GradeHandler) Gradebook(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	course, rows, err := h.gradeService.Gradebook(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course, "rows": rows})
}

// ExportGradebook godoc
// GET /api/v1/courses/:id/gradebook/export
// Downloads the gradebook as an .xlsx workbook.
func (h *GradeHandler) ExportGradebook(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	filename, data, err := h.gradeService.ExportGradebook(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, xlsxContentType, data)
}
