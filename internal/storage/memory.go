package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
)

type ledgerKey struct {
	userID     int64
	word       string
	questionID int64
}

type masteryKey struct {
	userID   int64
	word     string
	category entities.Category
}

// state is copy-on-write: a committed state is never mutated, writers work on a clone.
type state struct {
	questions     map[int64]*entities.Question
	words         map[string]entities.Word
	questionWords map[int64][]string
	wordQuestions map[string][]int64
	ledger        map[ledgerKey]*entities.LedgerEntry
	mastery       map[masteryKey]entities.WordMastery
	sessions      map[uuid.UUID]*entities.QuizSession
	nextID        int64
}

func newState() *state {
	return &state{
		questions:     make(map[int64]*entities.Question),
		words:         make(map[string]entities.Word),
		questionWords: make(map[int64][]string),
		wordQuestions: make(map[string][]int64),
		ledger:        make(map[ledgerKey]*entities.LedgerEntry),
		mastery:       make(map[masteryKey]entities.WordMastery),
		sessions:      make(map[uuid.UUID]*entities.QuizSession),
	}
}

// clone copies the maps. Values are replaced on write, never modified in place.
func (s *state) clone() *state {
	c := &state{
		questions:     make(map[int64]*entities.Question, len(s.questions)),
		words:         make(map[string]entities.Word, len(s.words)),
		questionWords: make(map[int64][]string, len(s.questionWords)),
		wordQuestions: make(map[string][]int64, len(s.wordQuestions)),
		ledger:        make(map[ledgerKey]*entities.LedgerEntry, len(s.ledger)),
		mastery:       make(map[masteryKey]entities.WordMastery, len(s.mastery)),
		sessions:      make(map[uuid.UUID]*entities.QuizSession, len(s.sessions)),
		nextID:        s.nextID,
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.words {
		c.words[k] = v
	}
	for k, v := range s.questionWords {
		c.questionWords[k] = v
	}
	for k, v := range s.wordQuestions {
		c.wordQuestions[k] = v
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	for k, v := range s.mastery {
		c.mastery[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	return c
}

// MemoryStore is an in-memory implementation of the engine store.
//
// It is a single-writer store: transactions of every user are serialized and
// either swap in their whole result or leave nothing behind. Reads through
// Repos never wait for writers, they see the last committed state. Use the
// postgres backend when writes of different users must run in parallel.
type MemoryStore struct {
	txMu sync.Mutex // serializes writers

	mu sync.RWMutex // guards st
	st *state
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: newState()}
}

func (m *MemoryStore) snapshot() *state {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st
}

// WithinTx runs fn on a private copy of the state and commits it when fn succeeds.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	return m.update(ctx, func(st *state) error {
		repos := reposFor(st)
		repos.ContentWriter = &contentWriter{st: st}
		return fn(ctx, repos)
	})
}

func (m *MemoryStore) update(ctx context.Context, fn func(st *state) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.snapshot().clone()
	if err := fn(work); err != nil {
		return err
	}

	m.mu.Lock()
	m.st = work
	m.mu.Unlock()
	return nil
}

// Repos returns repositories reading the last committed state.
func (m *MemoryStore) Repos() service.Repositories {
	return reposFor(m.snapshot())
}

func reposFor(st *state) service.Repositories {
	return service.Repositories{
		Content: &contentRepo{st: st},
		Ledger:  &ledgerRepo{st: st},
		Quiz:    &quizRepo{st: st},
	}
}

// AddWord creates a word or updates its meaning.
func (m *MemoryStore) AddWord(ctx context.Context, w entities.Word) error {
	return m.update(ctx, func(st *state) error {
		return st.addWord(w)
	})
}

// AddQuestion validates and stores a question, creating its words lazily.
// A zero ID is assigned from the store sequence.
// Derived word mastery is left as is; service.ContentService refreshes it.
func (m *MemoryStore) AddQuestion(ctx context.Context, q *entities.Question) (int64, error) {
	var id int64
	err := m.update(ctx, func(st *state) error {
		var err error
		id, err = st.addQuestion(q)
		return err
	})
	return id, err
}

// SetQuestionActive toggles whether a question can be selected.
func (m *MemoryStore) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	return m.update(ctx, func(st *state) error {
		return st.setQuestionActive(id, active)
	})
}

func (st *state) addWord(w entities.Word) error {
	w.Text = entities.NormalizeWord(w.Text)
	if w.Text == "" {
		return fmt.Errorf("add word: empty text")
	}
	if cur, ok := st.words[w.Text]; ok && w.Meaning == "" {
		w.Meaning = cur.Meaning
	}
	st.words[w.Text] = w
	return nil
}

func (st *state) addQuestion(q *entities.Question) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("add question: %w", err)
	}

	stored := cloneQuestion(q)
	if stored.ID == 0 {
		st.nextID++
		stored.ID = st.nextID
	} else if stored.ID > st.nextID {
		st.nextID = stored.ID
	}
	if _, ok := st.questions[stored.ID]; ok {
		return 0, fmt.Errorf("add question: id %d already exists", stored.ID)
	}

	words := stored.AssociatedWords()
	for _, w := range stored.Words {
		if n := entities.NormalizeWord(w); n != "" && !contains(words, n) {
			words = append(words, n)
		}
	}
	stored.Words = words

	for _, w := range words {
		if _, ok := st.words[w]; !ok {
			st.words[w] = entities.Word{Text: w}
		}
		st.wordQuestions[w] = appendID(st.wordQuestions[w], stored.ID)
	}
	st.questionWords[stored.ID] = words
	st.questions[stored.ID] = stored

	return stored.ID, nil
}

func (st *state) setQuestionActive(id int64, active bool) error {
	q, ok := st.questions[id]
	if !ok {
		return entities.ErrQuestionNotFound
	}
	c := cloneQuestion(q)
	c.Active = active
	st.questions[id] = c
	return nil
}

// contentWriter writes content into the working state of a transaction.
type contentWriter struct{ st *state }

func (w *contentWriter) AddWord(_ context.Context, word entities.Word) error {
	return w.st.addWord(word)
}

func (w *contentWriter) AddQuestion(_ context.Context, q *entities.Question) (int64, error) {
	return w.st.addQuestion(q)
}

func (w *contentWriter) SetQuestionActive(_ context.Context, id int64, active bool) error {
	return w.st.setQuestionActive(id, active)
}

type contentRepo struct{ st *state }

func (r *contentRepo) GetActiveQuestions(_ context.Context, filter entities.QuestionFilter) ([]*entities.Question, error) {
	out := make([]*entities.Question, 0, len(r.st.questions))
	for _, q := range r.st.questions {
		if !q.Active {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		out = append(out, cloneQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *contentRepo) GetQuestionsByIDs(_ context.Context, ids []int64) ([]*entities.Question, error) {
	out := make([]*entities.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := r.st.questions[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, id)
		}
		out = append(out, cloneQuestion(q))
	}
	return out, nil
}

func (r *contentRepo) GetWordsForQuestion(_ context.Context, questionID int64) ([]string, error) {
	if _, ok := r.st.questions[questionID]; !ok {
		return nil, fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, questionID)
	}
	return append([]string(nil), r.st.questionWords[questionID]...), nil
}

func (r *contentRepo) GetQuestionsForWord(_ context.Context, word string) ([]entities.WordQuestion, error) {
	ids := r.st.wordQuestions[word]
	out := make([]entities.WordQuestion, 0, len(ids))
	for _, id := range ids {
		q := r.st.questions[id]
		if q == nil || !q.Active {
			continue
		}
		out = append(out, entities.WordQuestion{Word: word, QuestionID: id, Category: q.Category})
	}
	return out, nil
}

func (r *contentRepo) ListCategories(_ context.Context) ([]entities.CategoryCount, error) {
	counts := make(map[entities.Category]int)
	for _, q := range r.st.questions {
		if q.Active {
			counts[q.Category]++
		}
	}

	out := make([]entities.CategoryCount, 0, len(entities.Categories))
	for _, c := range entities.Categories {
		out = append(out, entities.CategoryCount{Category: c, QuestionCount: counts[c]})
	}
	return out, nil
}

type ledgerRepo struct{ st *state }

// LockWords is a no-op: memory transactions are already serialized.
func (r *ledgerRepo) LockWords(context.Context, int64, []string) error {
	return nil
}

func (r *ledgerRepo) GetEntriesForUpdate(
	_ context.Context, userID, questionID int64, words []string,
) (map[string]*entities.LedgerEntry, error) {
	out := make(map[string]*entities.LedgerEntry, len(words))
	for _, w := range words {
		if e, ok := r.st.ledger[ledgerKey{userID, w, questionID}]; ok {
			c := *e
			out[w] = &c
		}
	}
	return out, nil
}

func (r *ledgerRepo) UpsertEntry(_ context.Context, e *entities.LedgerEntry) error {
	c := *e
	r.st.ledger[ledgerKey{e.UserID, e.Word, e.QuestionID}] = &c
	return nil
}

func (r *ledgerRepo) GetWordEntries(_ context.Context, userID int64, word string) ([]*entities.LedgerEntry, error) {
	var out []*entities.LedgerEntry
	for k, e := range r.st.ledger {
		if k.userID == userID && k.word == word {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *ledgerRepo) UserWords(_ context.Context, userID int64) ([]string, error) {
	seen := make(map[string]struct{})
	for k := range r.st.ledger {
		if k.userID == userID {
			seen[k.word] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}

func (r *ledgerRepo) UsersForWords(_ context.Context, words []string) (map[int64][]string, error) {
	out := make(map[int64][]string)
	seen := make(map[ledgerKey]struct{})
	for k := range r.st.ledger {
		if !contains(words, k.word) {
			continue
		}
		uk := ledgerKey{userID: k.userID, word: k.word}
		if _, ok := seen[uk]; ok {
			continue
		}
		seen[uk] = struct{}{}
		out[k.userID] = append(out[k.userID], k.word)
	}
	for _, ws := range out {
		sort.Strings(ws)
	}
	return out, nil
}

func (r *ledgerRepo) CountUserQuestions(_ context.Context, userID int64) (int, int, error) {
	attempted := make(map[int64]struct{})
	mastered := make(map[int64]struct{})
	for k, e := range r.st.ledger {
		if k.userID != userID {
			continue
		}
		if e.TotalAttempts > 0 {
			attempted[k.questionID] = struct{}{}
		}
		if e.Mastered {
			mastered[k.questionID] = struct{}{}
		}
	}
	return len(attempted), len(mastered), nil
}

func (r *ledgerRepo) SaveWordMastery(_ context.Context, word entities.WordMastery, byCategory []entities.WordMastery) error {
	for k := range r.st.mastery {
		if k.userID == word.UserID && k.word == word.Word {
			delete(r.st.mastery, k)
		}
	}
	r.st.mastery[masteryKey{word.UserID, word.Word, ""}] = word
	for _, m := range byCategory {
		r.st.mastery[masteryKey{m.UserID, m.Word, m.Category}] = m
	}
	return nil
}

func (r *ledgerRepo) DeleteWordMastery(_ context.Context, userID int64) error {
	for k := range r.st.mastery {
		if k.userID == userID {
			delete(r.st.mastery, k)
		}
	}
	return nil
}

func (r *ledgerRepo) GetWordMastery(_ context.Context, userID int64) ([]entities.WordMastery, error) {
	return r.mastery(userID, func(c entities.Category) bool { return c == "" }), nil
}

func (r *ledgerRepo) GetWordMasteryByCategory(_ context.Context, userID int64) ([]entities.WordMastery, error) {
	return r.mastery(userID, func(c entities.Category) bool { return c != "" }), nil
}

func (r *ledgerRepo) mastery(userID int64, keep func(entities.Category) bool) []entities.WordMastery {
	var out []entities.WordMastery
	for k, m := range r.st.mastery {
		if k.userID == userID && keep(k.category) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Word != out[j].Word {
			return out[i].Word < out[j].Word
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type quizRepo struct{ st *state }

func (r *quizRepo) Create(_ context.Context, s *entities.QuizSession) error {
	if _, ok := r.st.sessions[s.ID]; ok {
		return fmt.Errorf("create quiz session: id %s already exists", s.ID)
	}
	r.st.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *quizRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	return r.Get(ctx, id)
}

func (r *quizRepo) Get(_ context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r *quizRepo) SaveRound(_ context.Context, sessionID uuid.UUID, round *entities.Round) error {
	s, ok := r.st.sessions[sessionID]
	if !ok {
		return entities.ErrSessionNotFound
	}

	c := cloneSession(s)
	rc := cloneRound(round)
	switch {
	case round.Number <= len(c.Rounds):
		c.Rounds[round.Number-1] = rc
	case round.Number == len(c.Rounds)+1:
		c.Rounds = append(c.Rounds, rc)
	default:
		return fmt.Errorf("save round: round %d out of sequence", round.Number)
	}
	r.st.sessions[sessionID] = c
	return nil
}

func (r *quizRepo) Update(_ context.Context, s *entities.QuizSession) error {
	stored, ok := r.st.sessions[s.ID]
	if !ok {
		return entities.ErrSessionNotFound
	}
	if stored.Version != s.Version {
		return entities.ErrVersionConflict
	}

	c := cloneSession(stored)
	c.Status = s.Status
	c.CurrentRound = s.CurrentRound
	c.CompletedAt = s.CompletedAt
	c.Version++
	r.st.sessions[s.ID] = c

	s.Version++
	return nil
}

func cloneQuestion(q *entities.Question) *entities.Question {
	c := *q
	c.Options = append([]string(nil), q.Options...)
	c.Words = append([]string(nil), q.Words...)
	return &c
}

func cloneSession(s *entities.QuizSession) *entities.QuizSession {
	c := *s
	c.OriginalQuestionIDs = append([]int64(nil), s.OriginalQuestionIDs...)
	c.Rounds = make([]*entities.Round, len(s.Rounds))
	for i, r := range s.Rounds {
		c.Rounds[i] = cloneRound(r)
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneRound(r *entities.Round) *entities.Round {
	c := *r
	c.QuestionIDs = append([]int64(nil), r.QuestionIDs...)
	c.Responses = append([]entities.Response(nil), r.Responses...)
	if r.GradedAt != nil {
		t := *r.GradedAt
		c.GradedAt = &t
	}
	return &c
}

func appendID(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	out := make([]int64, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
