package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

func newRouter(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(log))
	r.Use(Identity())
	r.GET("/me", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role})
	})
	r.GET("/admin", RequireRole(entities.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		path   string
		userID string
		role   string
		status int
	}{
		{name: "missing identity", path: "/me", status: http.StatusUnauthorized},
		{name: "not a number", path: "/me", userID: "abc", status: http.StatusUnauthorized},
		{name: "not positive", path: "/me", userID: "0", status: http.StatusUnauthorized},
		{name: "learner", path: "/me", userID: "42", status: http.StatusOK},
		{name: "learner on admin route", path: "/admin", userID: "42", role: "learner", status: http.StatusForbidden},
		{name: "unknown role is learner", path: "/admin", userID: "42", role: "root", status: http.StatusForbidden},
		{name: "admin", path: "/admin", userID: "1", role: "ADMIN", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}

			rec := httptest.NewRecorder()
			newRouter(zap.NewNop()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, "7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])
		assert.Equal(t, "/me", entries[0].ContextMap()["path"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, int64(http.StatusUnauthorized), entries[1].ContextMap()["status"])
	}
}
