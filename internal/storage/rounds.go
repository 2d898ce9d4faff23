package storage

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// PendingRound is a round being answered question by question in a chat.
type PendingRound struct {
	SessionID uuid.UUID
	Round     int
	Questions []*entities.Question
	Answers   map[int64]string
}

// Next returns the index of the first unanswered question, or -1 when every question has an answer.
func (p *PendingRound) Next() int {
	for i, q := range p.Questions {
		if _, ok := p.Answers[q.ID]; !ok {
			return i
		}
	}
	return -1
}

// RoundStorage provides in-memory storage for pending chat rounds by user ID.
type RoundStorage struct {
	mu     sync.RWMutex
	rounds map[int64]*PendingRound
}

// NewRoundStorage creates a new RoundStorage.
func NewRoundStorage() *RoundStorage {
	return &RoundStorage{
		rounds: make(map[int64]*PendingRound),
	}
}

// Store saves the pending round of a user, replacing any previous one.
func (s *RoundStorage) Store(userID int64, sessionID uuid.UUID, round int, questions []*entities.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[userID] = &PendingRound{
		SessionID: sessionID,
		Round:     round,
		Questions: questions,
		Answers:   make(map[int64]string, len(questions)),
	}
}

// Get retrieves a copy of the pending round of a user.
func (s *RoundStorage) Get(userID int64) (*PendingRound, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rounds[userID]
	if !ok {
		return nil, false
	}
	return p.copy(), true
}

// Answer records the answer to the question at index and returns the updated round.
// It reports false when there is no pending round or the index is out of range.
func (s *RoundStorage) Answer(userID int64, index int, answer string) (*PendingRound, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rounds[userID]
	if !ok || index < 0 || index >= len(p.Questions) {
		return nil, false
	}
	p.Answers[p.Questions[index].ID] = answer
	return p.copy(), true
}

// Delete removes the pending round of a user.
func (s *RoundStorage) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, userID)
}

func (p *PendingRound) copy() *PendingRound {
	c := *p
	c.Questions = append([]*entities.Question(nil), p.Questions...)
	c.Answers = make(map[int64]string, len(p.Answers))
	for k, v := range p.Answers {
		c.Answers[k] = v
	}
	return &c
}
