package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/delivery/http/middleware"
	"github.com/aliskhannn/lexiquiz/internal/delivery/http/response"
	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
)

const codeValidation = string(service.KindValidation)

type QuizHandler struct {
	quiz    QuizService
	mastery MasteryService
}

func NewQuizHandler(quiz QuizService, mastery MasteryService) *QuizHandler {
	return &QuizHandler{quiz: quiz, mastery: mastery}
}

// POST /api/quiz/sessions
func (h *QuizHandler) CreateSession(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, codeValidation, err)
		return
	}

	var category entities.Category
	if req.Category != "" {
		var err error
		category, err = entities.ParseCategory(req.Category)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, codeValidation, err)
			return
		}
	}

	in := service.CreateSessionRequest{
		UserID:             user.ID,
		TargetCount:        req.QuestionCount,
		ExcludeRecentCount: req.ExcludeRecentCount,
		Category:           category,
	}

	create := h.quiz.CreateSession
	if entities.SessionMode(req.Mode) == entities.ModeSingle {
		create = h.quiz.CreateAssessment
	}

	view, err := create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	response.RespondCreated(c, gin.H{"session": toSession(view)})
}

// POST /api/quiz/sessions/:id/rounds
func (h *QuizHandler) SubmitRound(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, codeValidation, err)
		return
	}

	var req submitRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, codeValidation, err)
		return
	}

	subs := make([]service.Submission, 0, len(req.Responses))
	for _, r := range req.Responses {
		subs = append(subs, service.Submission{QuestionID: r.QuestionID, Answer: r.Answer})
	}

	res, err := h.quiz.SubmitRound(c.Request.Context(), service.SubmitRoundRequest{
		SessionID: sessionID,
		UserID:    user.ID,
		Round:     req.Round,
		Responses: subs,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{"result": toSubmitResult(res)})
}

// GET /api/quiz/sessions/:id
func (h *QuizHandler) GetSession(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, codeValidation, err)
		return
	}

	view, err := h.quiz.GetSession(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{"session": toSession(view)})
}

// GET /api/quiz/categories
func (h *QuizHandler) ListCategories(c *gin.Context) {
	counts, err := h.mastery.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	out := make([]categoryDTO, 0, len(counts))
	for _, cc := range counts {
		out = append(out, categoryDTO{Category: string(cc.Category), QuestionCount: cc.QuestionCount})
	}
	response.RespondOK(c, gin.H{"categories": out})
}

func requireUser(c *gin.Context) (entities.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing user identity"))
	}
	return user, ok
}
