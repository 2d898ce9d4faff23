package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	userKey = "lexiquiz.user"
)

// Identity reads the authenticated user set by the gateway in front of the service.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid user identity", "code": "unauthorized", "retryable": false},
			})
			return
		}

		c.Set(userKey, entities.User{
			ID:   id,
			Role: entities.ParseRole(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole)))),
		})
		c.Next()
	}
}

// RequireRole rejects users without role. It must run after Identity.
func RequireRole(role entities.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden", "retryable": false},
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Identity.
func CurrentUser(c *gin.Context) (entities.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return entities.User{}, false
	}
	u, ok := v.(entities.User)
	return u, ok
}
