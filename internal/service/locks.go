package service

import (
	"sync"

	"github.com/google/uuid"
)

// sessionLocks hands out one mutex per quiz session.
// Entries are dropped once nobody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[uuid.UUID]*sessionLock)}
}

// TryLock acquires the session lock without waiting.
// It returns the unlock func and false when another request holds the lock.
func (l *sessionLocks) TryLock(id uuid.UUID) (func(), bool) {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &sessionLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	if !lk.mu.TryLock() {
		l.release(id, lk)
		return nil, false
	}

	return func() {
		lk.mu.Unlock()
		l.release(id, lk)
	}, true
}

func (l *sessionLocks) release(id uuid.UUID, lk *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}
