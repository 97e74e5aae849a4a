package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// errorMapping pairs a sentinel with the HTTP status and code it renders as.
type errorMapping struct {
	target error
	status int
	code   response.ErrCode
}

// Order matters only where one error wraps another.
var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrWrongPassword, http.StatusBadRequest, response.ErrWrongPassword},
	{service.ErrRegistrationClosed, http.StatusForbidden, response.ErrRegistrationClosed},
	{service.ErrTokenRevoked, http.StatusUnauthorized, response.ErrTokenRevoked},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},

	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
	{service.ErrRoleChangeDenied, http.StatusForbidden, response.ErrRoleChangeDenied},
	{service.ErrSelfAction, http.StatusForbidden, response.ErrSelfActionDenied},
	{service.ErrNotCourseTrainer, http.StatusForbidden, response.ErrNotCourseTrainer},
	{service.ErrNotParticipant, http.StatusForbidden, response.ErrNotParticipant},
	{service.ErrNotMessageSender, http.StatusForbidden, response.ErrNotMessageSender},
	{service.ErrTopicNotPermitted, http.StatusForbidden, response.ErrTopicNotPermitted},

	{service.ErrNotTrainer, http.StatusUnprocessableEntity, response.ErrNotTrainer},
	{service.ErrNotTrainee, http.StatusUnprocessableEntity, response.ErrNotTrainee},
	{service.ErrCourseNotOpen, http.StatusConflict, response.ErrCourseNotOpen},
	{service.ErrCourseFull, http.StatusConflict, response.ErrCourseFull},
	{service.ErrCourseCancelled, http.StatusConflict, response.ErrCourseCancelled},
	{service.ErrAlreadyEnrolled, http.StatusConflict, response.ErrAlreadyEnrolled},
	{service.ErrSessionOutOfRange, http.StatusUnprocessableEntity, response.ErrSessionOutOfRange},
	{service.ErrEnrollmentDropped, http.StatusConflict, response.ErrEnrollmentDropped},
	{service.ErrEnrollmentClosed, http.StatusConflict, response.ErrActionForbidden},
	{service.ErrMessageDeleted, http.StatusConflict, response.ErrMessageDeleted},
	{service.ErrInvalidMessage, http.StatusBadRequest, response.ErrInvalidPayload},

	{service.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	{service.ErrEmptyFile, http.StatusBadRequest, response.ErrFileRequired},
	{service.ErrInvalidContent, http.StatusBadRequest, response.ErrInvalidPayload},
	{service.ErrUnknownSetting, http.StatusBadRequest, response.ErrValidation},

	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{repository.ErrDependencyUsed, http.StatusConflict, response.ErrDependencyExists},
}

// mapError returns the status and code for err, defaulting to 500.
func mapError(err error) (int, response.ErrCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// respondError writes the envelope for err. Unmapped errors are attached to
// the gin context so the request logger records them.
func respondError(c *gin.Context, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}

// parseUUIDParam reads a path parameter as a UUID, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and per_page; the service clamps them.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return page, perPage
}

// optionalUUIDQuery parses an optional UUID query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}
	return &id, true
}
