package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// RevocationChecker reports whether a token was logged out or superseded.
type RevocationChecker interface {
	CheckNotRevoked(ctx context.Context, claims *service.Claims) error
}

// CheckTokenNotRevoked rejects tokens revoked by logout or by a role change.
func CheckTokenNotRevoked(auth RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := auth.CheckNotRevoked(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrTokenRevoked) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
				return
			}
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrInternal)
			return
		}

		c.Next()
	}
}
