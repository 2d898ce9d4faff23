package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lexhttp "github.com/aliskhannn/lexiquiz/internal/delivery/http"
	"github.com/aliskhannn/lexiquiz/internal/delivery/http/handlers"
	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

type testServer struct {
	router  *gin.Engine
	answers map[int64]string
}

func newTestServer(t *testing.T, questions int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := storage.NewMemoryStore()
	answers := make(map[int64]string)
	words := []string{"calm", "bold", "keen", "vivid", "brisk"}
	for i := 0; i < questions; i++ {
		w := words[i%len(words)]
		q := &entities.Question{
			Category:      entities.CategorySynonym,
			Text:          "closest to " + w,
			CorrectAnswer: w,
			Options:       []string{w, w + "-not"},
			Active:        true,
		}
		id, err := mem.AddQuestion(context.Background(), q)
		require.NoError(t, err)
		answers[id] = w
	}

	log := zap.NewNop()
	ledger := service.NewLedgerService(mem, 2, log)
	selector := service.NewQuestionSelector(mem, storage.NewRecentWindow(5), service.SelectorConfig{Seed: 7}, log)
	quiz := service.NewQuizService(mem, ledger, selector, service.QuizConfig{AllowShortQuiz: true}, log)
	mastery := service.NewMasteryService(mem, log)

	return &testServer{
		router: lexhttp.NewRouter(lexhttp.RouterConfig{
			Logger:         log,
			QuizHandler:    handlers.NewQuizHandler(quiz, mastery),
			MasteryHandler: handlers.NewMasteryHandler(mastery, ledger),
			HealthHandler:  handlers.NewHealthHandler(),
		}),
		answers: answers,
	}
}

func (s *testServer) do(t *testing.T, method, path, user, role string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "error envelope expected, got %v", body)
	code, _ := e["code"].(string)
	return code
}

func questionIDs(t *testing.T, raw any) []int64 {
	t.Helper()
	list, ok := raw.([]any)
	require.True(t, ok)
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		q := item.(map[string]any)
		_, leaked := q["correct_answer"]
		assert.False(t, leaked, "questions must not expose the correct answer")
		ids = append(ids, int64(q["id"].(float64)))
	}
	return ids
}

func TestRouter_QuizFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 3)

	rec, body := s.do(t, http.MethodPost, "/api/quiz/sessions", "", "", map[string]any{"question_count": 3})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, body))

	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions", "1", "", map[string]any{"question_count": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	session := body["session"].(map[string]any)
	id := session["session_id"].(string)
	assert.Equal(t, "round_in_progress", session["state"])
	assert.Equal(t, float64(3), session["requested_count"])
	assert.Equal(t, float64(3), session["actual_count"])
	assert.Equal(t, false, session["short"])

	ids := questionIDs(t, session["questions"])
	require.Len(t, ids, 3)

	// The last question is left unanswered.
	round1 := map[string]any{
		"round": 1,
		"responses": []map[string]any{
			{"question_id": ids[0], "answer": s.answers[ids[0]]},
			{"question_id": ids[1], "answer": "  " + strings.ToUpper(s.answers[ids[1]])},
		},
	}
	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/rounds", "1", "", round1)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := body["result"].(map[string]any)
	assert.Equal(t, false, result["session_completed"])
	assert.Equal(t, float64(2), result["next_round"])
	assert.Equal(t, []int64{ids[2]}, questionIDs(t, result["next_questions"]))

	round := result["round"].(map[string]any)
	assert.Equal(t, float64(2), round["correct_count"])
	assert.Equal(t, float64(3), round["total_count"])
	assert.Equal(t, 66.67, round["score_pct"])
	assert.NotEmpty(t, result["mastery_updates"])

	// Stale round number.
	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/rounds", "1", "", round1)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "concurrent_modification", errorCode(t, body))

	// Another user cannot see or submit the session.
	rec, body = s.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "2", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, body))

	round2 := map[string]any{
		"round":     2,
		"responses": []map[string]any{{"question_id": ids[2], "answer": s.answers[ids[2]]}},
	}
	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/rounds", "1", "", round2)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result = body["result"].(map[string]any)
	assert.Equal(t, true, result["session_completed"])
	summary := result["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["total_rounds"])
	assert.Equal(t, 66.67, summary["first_round_score"])
	assert.Equal(t, float64(3), summary["original_question_count"])

	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/rounds", "1", "", round2)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_already_completed", errorCode(t, body))

	rec, body = s.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session = body["session"].(map[string]any)
	assert.Equal(t, "completed", session["state"])
	assert.Empty(t, session["questions"])
	assert.NotNil(t, session["summary"])
}

func TestRouter_SubmitValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 2)

	rec, body := s.do(t, http.MethodPost, "/api/quiz/sessions", "5", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := body["session"].(map[string]any)
	id := session["session_id"].(string)
	ids := questionIDs(t, session["questions"])
	assert.Equal(t, float64(20), session["requested_count"])
	assert.Equal(t, true, session["short"])

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{name: "bad session id", path: "/api/quiz/sessions/nope/rounds", body: map[string]any{}, status: http.StatusBadRequest, code: "validation"},
		{name: "bad json", path: "/api/quiz/sessions/" + id + "/rounds", body: "{", status: http.StatusBadRequest, code: "validation"},
		{name: "empty", path: "/api/quiz/sessions/" + id + "/rounds", body: map[string]any{"responses": []any{}}, status: http.StatusBadRequest, code: "empty_responses"},
		{
			name:   "duplicate",
			path:   "/api/quiz/sessions/" + id + "/rounds",
			body:   map[string]any{"responses": []map[string]any{{"question_id": ids[0]}, {"question_id": ids[0]}}},
			status: http.StatusBadRequest,
			code:   "duplicate_response",
		},
		{
			name:   "foreign question",
			path:   "/api/quiz/sessions/" + id + "/rounds",
			body:   map[string]any{"responses": []map[string]any{{"question_id": 999}}},
			status: http.StatusBadRequest,
			code:   "unknown_question",
		},
		{
			name:   "unknown session",
			path:   "/api/quiz/sessions/6f1c1d7e-8f63-4f7a-9a43-0f0c8d1f5a11/rounds",
			body:   map[string]any{"responses": []map[string]any{{"question_id": ids[0]}}},
			status: http.StatusNotFound,
			code:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, tt.path, "5", "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}

	// Nothing above was recorded: the round is still open.
	rec, body = s.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "round_in_progress", body["session"].(map[string]any)["state"])
}

func TestRouter_CreateSessionErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 2)
	empty := newTestServer(t, 0)

	tests := []struct {
		name   string
		server *testServer
		body   any
		status int
		code   string
	}{
		{name: "unknown category", server: s, body: map[string]any{"category": "riddle"}, status: http.StatusBadRequest, code: "validation"},
		{name: "too many questions", server: s, body: map[string]any{"question_count": 500}, status: http.StatusBadRequest, code: "validation"},
		{name: "negative count", server: s, body: map[string]any{"question_count": -1}, status: http.StatusBadRequest, code: "validation"},
		{name: "unknown mode", server: s, body: map[string]any{"mode": "endless"}, status: http.StatusBadRequest, code: "validation"},
		{name: "no questions", server: empty, body: map[string]any{}, status: http.StatusUnprocessableEntity, code: "precondition_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := tt.server.do(t, http.MethodPost, "/api/quiz/sessions", "3", "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}

func TestRouter_SingleRoundAssessment(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 2)

	rec, body := s.do(t, http.MethodPost, "/api/quiz/sessions", "4", "", map[string]any{"mode": "single", "question_count": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := body["session"].(map[string]any)
	assert.Equal(t, "single", session["mode"])
	ids := questionIDs(t, session["questions"])

	rec, body = s.do(t, http.MethodPost, "/api/quiz/sessions/"+session["session_id"].(string)+"/rounds", "4", "",
		map[string]any{"responses": []map[string]any{{"question_id": ids[0], "answer": "wrong"}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := body["result"].(map[string]any)
	assert.Equal(t, true, result["session_completed"])
	assert.Equal(t, float64(0), result["round"].(map[string]any)["score_pct"])
}

func TestRouter_MasteryAndAdmin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1)

	// Two perfect sessions master the only question.
	for i := 0; i < 2; i++ {
		rec, body := s.do(t, http.MethodPost, "/api/quiz/sessions", "9", "", map[string]any{"question_count": 1, "exclude_recent_count": 0})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		session := body["session"].(map[string]any)
		ids := questionIDs(t, session["questions"])
		require.Len(t, ids, 1)

		rec, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+session["session_id"].(string)+"/rounds", "9", "",
			map[string]any{"responses": []map[string]any{{"question_id": ids[0], "answer": s.answers[ids[0]]}}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec, body := s.do(t, http.MethodGet, "/api/mastery/words", "9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	words := body["words"].([]any)
	require.Len(t, words, 2)
	for _, w := range words {
		row := w.(map[string]any)
		assert.Equal(t, 100.0, row["mastery_pct"])
		assert.Equal(t, "Fully Mastered", row["status"])
	}

	rec, body = s.do(t, http.MethodGet, "/api/mastery/words/categories", "9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["words"], 2)

	rec, body = s.do(t, http.MethodGet, "/api/mastery/overview", "9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ov := body["overview"].(map[string]any)
	assert.Equal(t, float64(2), ov["fully_mastered_words"])
	assert.Equal(t, 100.0, ov["fully_mastered_percentage"])

	rec, body = s.do(t, http.MethodGet, "/api/quiz/categories", "9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["categories"], len(entities.Categories))

	rec, _ = s.do(t, http.MethodPost, "/api/admin/users/9/mastery/rebuild", "9", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/api/admin/users/x/mastery/rebuild", "1", "admin", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", errorCode(t, body))

	rec, body = s.do(t, http.MethodPost, "/api/admin/users/9/mastery/rebuild", "1", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(9), body["user_id"])
	assert.Len(t, body["words"], 2)
}

func TestRouter_HealthCheck(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 0)
	rec, _ := s.do(t, http.MethodGet, "/healthcheck", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
