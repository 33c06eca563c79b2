package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is the unit of study content together with its scheduling state.
// Front/Back are opaque text supplied by content collaborators.
type Card struct {
	ID              uuid.UUID
	DeckTopic       string
	Front           string
	Back            string
	DifficultyTag   DifficultyTag
	Status          CardStatus
	IntervalDays    int
	EaseFactor      float64
	DueAt           *time.Time
	LapseCount      int
	RepetitionCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsDue reports whether the card needs review at the given time.
// NEW cards have no due time yet and are selected separately; SUSPENDED
// cards are never due.
func (c *Card) IsDue(now time.Time) bool {
	if c.Status == CardStatusSuspended || c.Status == CardStatusNew {
		return false
	}
	return c.DueAt != nil && !c.DueAt.After(now)
}

// ScheduleParams holds the fields to update on a card after a scheduling
// transition.
type ScheduleParams struct {
	Status          CardStatus
	IntervalDays    int
	EaseFactor      float64
	DueAt           *time.Time
	LapseCount      int
	RepetitionCount int
}

// ReviewEvent records a single answer. Append-only: never mutated or
// deleted once written. Forms the audit trail the dashboard reads.
type ReviewEvent struct {
	ID               uuid.UUID
	CardID           uuid.UUID
	SessionID        uuid.UUID
	Grade            ReviewGrade
	PreviousInterval int
	NewInterval      int
	ReviewedAt       time.Time
}
