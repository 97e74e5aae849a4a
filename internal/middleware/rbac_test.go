package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve runs guard behind a middleware that installs claims (when non-nil).
func serve(t *testing.T, claims *service.Claims, guard gin.HandlerFunc) (*httptest.ResponseRecorder, response.ErrCode) {
	t.Helper()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code == http.StatusNoContent {
		return w, ""
	}

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return w, body.Error.Code
}

func claimsFor(role model.Role, perms ...model.Permission) *service.Claims {
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = string(p)
	}
	return &service.Claims{UserID: uuid.New(), Role: role, Permissions: codes}
}

func TestRequireApproved(t *testing.T) {
	w, code := serve(t, nil, RequireApproved())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, code)

	w, code = serve(t, claimsFor(model.RolePending), RequireApproved())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrApprovalRequired, code)

	w, _ = serve(t, claimsFor(model.RoleTrainee), RequireApproved())
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequirePermission(t *testing.T) {
	guard := RequirePermission(model.PermissionCoursesWrite)

	w, _ := serve(t, claimsFor(model.RoleAdmin, model.PermissionCoursesWrite), guard)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, code := serve(t, claimsFor(model.RoleTrainer, model.PermissionCoursesTeach), guard)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrPermissionDenied, code)

	w, code = serve(t, nil, guard)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, code)
}

func TestRequireAnyPermission(t *testing.T) {
	guard := RequireAnyPermission(model.PermissionFeedbackUse, model.PermissionFeedbackModerate)

	w, _ := serve(t, claimsFor(model.RoleAdmin, model.PermissionFeedbackModerate), guard)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = serve(t, claimsFor(model.RoleTrainee, model.PermissionFeedbackUse), guard)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, code := serve(t, claimsFor(model.RoleTrainee, model.PermissionCoursesEnroll), guard)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrPermissionDenied, code)
}
