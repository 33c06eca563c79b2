package domain

import (
	"time"

	"github.com/google/uuid"
)

// PracticeSession is one bounded practice run over a fixed queue of cards.
//
// Invariants:
//   - Queue contains each card id at most once and is fixed at start.
//   - Cursor is monotonically non-decreasing; Answered keys are a subset
//     of Queue[0:Cursor].
//   - A session with a terminal status accepts no further transitions.
type PracticeSession struct {
	ID           uuid.UUID
	DeckTopic    string
	Status       SessionStatus
	Queue        []uuid.UUID
	Cursor       int
	Answered     map[uuid.UUID]ReviewGrade
	StartedAt    time.Time
	EndedAt      *time.Time
	LastAnswerAt time.Time
	CreatedAt    time.Time
}

// CurrentCardID returns the card id at the cursor, or uuid.Nil and false
// when the queue is exhausted.
func (s *PracticeSession) CurrentCardID() (uuid.UUID, bool) {
	if s.Cursor >= len(s.Queue) {
		return uuid.Nil, false
	}
	return s.Queue[s.Cursor], true
}

// GradeCounts holds per-grade counters for a practice session.
type GradeCounts struct {
	Again int
	Hard  int
	Good  int
	Easy  int
}

// Total returns the sum of all grade counters.
func (g GradeCounts) Total() int {
	return g.Again + g.Hard + g.Good + g.Easy
}

// SessionSummary holds the aggregated outcome of a completed session.
type SessionSummary struct {
	SessionID      uuid.UUID
	DeckTopic      string
	GradeCounts    GradeCounts
	TotalAnswered  int
	AccuracyRate   float64
	ElapsedSeconds int64
}
