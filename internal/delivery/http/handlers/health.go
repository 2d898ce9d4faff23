package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errInvalidUserID = errors.New("invalid user id")

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
