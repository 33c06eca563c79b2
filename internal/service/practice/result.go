package practice

import (
	"time"

	"github.com/learnanything/practice-backend/internal/domain"
)

// NextCardResult is either the card at the session cursor or a completion
// signal when the queue is exhausted.
type NextCardResult struct {
	Card     *domain.Card
	Complete bool
}

// AnswerResult reports the outcome of a processed answer.
type AnswerResult struct {
	NextDue          *time.Time
	SessionCompleted bool
}

// summarize aggregates a terminal session into a SessionSummary.
// Accuracy counts GOOD and EASY as successes.
func summarize(session *domain.PracticeSession) *domain.SessionSummary {
	var counts domain.GradeCounts
	for _, grade := range session.Answered {
		switch grade {
		case domain.ReviewGradeAgain:
			counts.Again++
		case domain.ReviewGradeHard:
			counts.Hard++
		case domain.ReviewGradeGood:
			counts.Good++
		case domain.ReviewGradeEasy:
			counts.Easy++
		}
	}

	total := counts.Total()
	var accuracy float64
	if total > 0 {
		accuracy = float64(counts.Good+counts.Easy) / float64(total)
	}

	var elapsed int64
	if session.EndedAt != nil {
		elapsed = int64(session.EndedAt.Sub(session.StartedAt).Seconds())
	}

	return &domain.SessionSummary{
		SessionID:      session.ID,
		DeckTopic:      session.DeckTopic,
		GradeCounts:    counts,
		TotalAnswered:  total,
		AccuracyRate:   accuracy,
		ElapsedSeconds: elapsed,
	}
}
