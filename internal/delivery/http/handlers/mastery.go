package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/lexiquiz/internal/delivery/http/response"
)

type MasteryHandler struct {
	mastery MasteryService
	ledger  LedgerService
}

func NewMasteryHandler(mastery MasteryService, ledger LedgerService) *MasteryHandler {
	return &MasteryHandler{mastery: mastery, ledger: ledger}
}

// GET /api/mastery/words
func (h *MasteryHandler) GetWordMastery(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	rows, err := h.mastery.GetWordMastery(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"words": toWordMastery(rows)})
}

// GET /api/mastery/words/categories
func (h *MasteryHandler) GetWordMasteryByCategory(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	rows, err := h.mastery.GetWordMasteryByCategory(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"words": toWordMastery(rows)})
}

// GET /api/mastery/overview
func (h *MasteryHandler) GetProgressOverview(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	ov, err := h.mastery.GetProgressOverview(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overview": toOverview(ov)})
}

// POST /api/admin/users/:id/mastery/rebuild
func (h *MasteryHandler) RebuildUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.RespondError(c, http.StatusBadRequest, codeValidation, errInvalidUserID)
		return
	}

	rows, err := h.ledger.RebuildUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user_id": userID, "words": toWordMastery(rows)})
}
