package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnanything/practice-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueTopic returns a deck topic no other test run shares, so tests touching
// the shared container do not see each other's cards.
func UniqueTopic(prefix string) string {
	return prefix + "-" + uniqueSuffix()
}

// SeedNewCard creates a NEW card with default scheduling state.
// Returns the filled domain.Card.
func SeedNewCard(t *testing.T, pool *pgxpool.Pool, deckTopic string, tag domain.DifficultyTag) domain.Card {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	card := domain.Card{
		ID:            uuid.New(),
		DeckTopic:     deckTopic,
		Front:         "front-" + suffix,
		Back:          "back-" + suffix,
		DifficultyTag: tag,
		Status:        domain.CardStatusNew,
		IntervalDays:  0,
		EaseFactor:    2.5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cards (id, deck_topic, front, back, difficulty_tag, status,
		                    interval_days, ease_factor, due_at, lapse_count,
		                    repetition_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		card.ID, card.DeckTopic, card.Front, card.Back, string(card.DifficultyTag),
		string(card.Status), card.IntervalDays, card.EaseFactor, card.DueAt,
		card.LapseCount, card.RepetitionCount, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedNewCard insert card: %v", err)
	}

	return card
}

// SeedDueCard creates a REVIEW card due at the given time with the given
// interval and ease factor. Returns the filled domain.Card.
func SeedDueCard(t *testing.T, pool *pgxpool.Pool, deckTopic string, dueAt time.Time, intervalDays int, easeFactor float64) domain.Card {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	due := dueAt.UTC().Truncate(time.Microsecond)
	card := domain.Card{
		ID:              uuid.New(),
		DeckTopic:       deckTopic,
		Front:           "front-" + suffix,
		Back:            "back-" + suffix,
		DifficultyTag:   domain.DifficultyTagMedium,
		Status:          domain.CardStatusReview,
		IntervalDays:    intervalDays,
		EaseFactor:      easeFactor,
		DueAt:           &due,
		RepetitionCount: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cards (id, deck_topic, front, back, difficulty_tag, status,
		                    interval_days, ease_factor, due_at, lapse_count,
		                    repetition_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		card.ID, card.DeckTopic, card.Front, card.Back, string(card.DifficultyTag),
		string(card.Status), card.IntervalDays, card.EaseFactor, card.DueAt,
		card.LapseCount, card.RepetitionCount, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDueCard insert card: %v", err)
	}

	return card
}

// SeedSession creates an ACTIVE practice session over the given queue.
// Returns the filled domain.PracticeSession.
func SeedSession(t *testing.T, pool *pgxpool.Pool, deckTopic string, queue []uuid.UUID) domain.PracticeSession {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := domain.PracticeSession{
		ID:           uuid.New(),
		DeckTopic:    deckTopic,
		Status:       domain.SessionStatusActive,
		Queue:        queue,
		Cursor:       0,
		Answered:     map[uuid.UUID]domain.ReviewGrade{},
		StartedAt:    now,
		LastAnswerAt: now,
		CreatedAt:    now,
	}

	answeredJSON, err := json.Marshal(map[string]string{})
	if err != nil {
		t.Fatalf("testhelper: SeedSession marshal answered: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO practice_sessions (id, deck_topic, status, queue, cursor_pos,
		                                answered, started_at, last_answer_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.DeckTopic, string(session.Status), session.Queue,
		session.Cursor, answeredJSON, session.StartedAt, session.LastAnswerAt, session.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSession insert session: %v", err)
	}

	return session
}

// SeedReviewEvent appends a review event for a card within a session.
// Returns the filled domain.ReviewEvent.
func SeedReviewEvent(t *testing.T, pool *pgxpool.Pool, cardID, sessionID uuid.UUID, grade domain.ReviewGrade, reviewedAt time.Time) domain.ReviewEvent {
	t.Helper()
	ctx := context.Background()

	ev := domain.ReviewEvent{
		ID:         uuid.New(),
		CardID:     cardID,
		SessionID:  sessionID,
		Grade:      grade,
		ReviewedAt: reviewedAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO review_events (id, card_id, session_id, grade,
		                            previous_interval, new_interval, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.CardID, ev.SessionID, string(ev.Grade),
		ev.PreviousInterval, ev.NewInterval, ev.ReviewedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewEvent insert event: %v", err)
	}

	return ev
}
