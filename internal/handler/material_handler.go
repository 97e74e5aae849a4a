package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stemsi/trainhub-backend/internal/validator"
)

// MaterialHandler handles course material uploads.
type MaterialHandler struct {
	materialService *service.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(materialService *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// ListMaterials godoc
// GET /api/v1/courses/:id/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	materials, err := h.materialService.List(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// UploadMaterial godoc
// POST /api/v1/courses/:id/materials
// Accepts multipart/form-data (file, title) or a JSON body with base64 content.
func (h *MaterialHandler) UploadMaterial(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.uploadMultipart(c, courseID)
		return
	}

	var req model.Base64MaterialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	material, err := h.materialService.UploadBase64(c.Request.Context(), middleware.GetActor(c), courseID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"material": material})
}

func (h *MaterialHandler) uploadMultipart(c *gin.Context, courseID uuid.UUID) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = header.Filename
	}

	material, err := h.materialService.Upload(c.Request.Context(), middleware.GetActor(c), courseID, title, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"material": material})
}

// DeleteMaterial godoc
// DELETE /api/v1/materials/:id
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "material deleted"})
}
