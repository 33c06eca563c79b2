package practice

import (
	"sync"

	"github.com/google/uuid"
)

// sessionLocks provides per-session mutual exclusion with a non-blocking
// acquire. Cursor advancement is not commutative, so a second answer on the
// same session is rejected rather than queued.
type sessionLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{held: make(map[uuid.UUID]struct{})}
}

// TryLock acquires the lock for a session id. Returns false if another
// operation already holds it.
func (l *sessionLocks) TryLock(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

// Unlock releases the lock for a session id. Unlocking an unheld id is a
// no-op.
func (l *sessionLocks) Unlock(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
