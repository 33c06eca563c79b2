package domain

import (
	"time"

	"github.com/google/uuid"
)

// SRSConfig holds the spaced-repetition algorithm parameters (pure domain type).
type SRSConfig struct {
	DefaultEaseFactor  float64
	MinEaseFactor      float64
	MaxIntervalDays    int
	EasyInterval       int
	FirstIntervalEasy  int
	FirstIntervalMed   int
	FirstIntervalHard  int
	RelearnDelay       time.Duration
	AgainEasePenalty   float64
	HardEasePenalty    float64
	EasyEaseBonus      float64
	HardIntervalFactor float64
	EasyIntervalFactor float64
}

// FirstInterval returns the graduation interval prior for a difficulty tag.
func (c SRSConfig) FirstInterval(tag DifficultyTag) int {
	switch tag {
	case DifficultyTagEasy:
		return c.FirstIntervalEasy
	case DifficultyTagHard:
		return c.FirstIntervalHard
	default:
		return c.FirstIntervalMed
	}
}

// DeckDueCount holds the due-card count for a single deck topic.
type DeckDueCount struct {
	DeckTopic string
	Count     int
}

// DayCompletedCount holds the number of completed sessions on a date.
type DayCompletedCount struct {
	Date  time.Time
	Count int
}

// TagLapseRate holds the lapse rate for one difficulty tag.
type TagLapseRate struct {
	Tag       DifficultyTag
	Reviews   int
	Lapses    int
	LapseRate float64
}

// RecentSession is a dashboard row describing a recently completed session.
type RecentSession struct {
	SessionID     uuid.UUID
	DeckTopic     string
	CompletedAt   time.Time
	CardsAnswered int
	AccuracyRate  float64
}

// Dashboard holds aggregated practice statistics.
type Dashboard struct {
	DueByDeck         []DeckDueCount
	RollingAccuracy   float64
	RollingWindowSize int
	Streak            int
	LapseRates        []TagLapseRate
	CardsStudied      int
	SessionsCompleted int
	RecentSessions    []RecentSession
}
