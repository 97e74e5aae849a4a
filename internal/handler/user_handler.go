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

// UserHandler handles admin user management and the trainer directory.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers godoc
// GET /api/v1/users?role=&search=&page=&per_page=
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, perPage := pageParams(c)

	filter := model.UserFilter{
		Role:   model.Role(c.Query("role")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
		return
	}

	users, pagination, err := h.userService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// ListPending godoc
// GET /api/v1/users/pending
// Lists accounts awaiting approval.
func (h *UserHandler) ListPending(c *gin.Context) {
	users, err := h.userService.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// GetUser godoc
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// CreateUser godoc
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"user": user})
}

// UpdateUser godoc
// PUT /api/v1/users/:id
// Updates profile fields and optionally the password.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetActor(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ChangeRole godoc
// PUT /api/v1/users/:id/role
// Approves pending accounts, promotes or demotes users.
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ChangeRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), middleware.GetActor(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// DeleteUser godoc
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}

// SearchTrainers godoc
// GET /api/v1/trainers?q=
// Trainer directory for any approved user.
func (h *UserHandler) SearchTrainers(c *gin.Context) {
	trainers, err := h.userService.SearchTrainers(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		respondError(c, err)
		return
	}

	// The directory exposes contact details only.
	list := make([]gin.H, 0, len(trainers))
	for _, t := range trainers {
		list = append(list, gin.H{
			"id":         t.ID,
			"name":       t.Name,
			"email":      t.Email,
			"bio":        t.Bio,
			"avatar_url": t.AvatarURL,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"trainers": list})
}
