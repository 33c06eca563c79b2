// Package reviewevent implements the append-only review event log
// repository using PostgreSQL.
package reviewevent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/learnanything/practice-backend/internal/adapter/postgres"
	"github.com/learnanything/practice-backend/internal/domain"
)

// Repo provides review event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const appendSQL = `
INSERT INTO review_events (id, card_id, session_id, grade,
                           previous_interval, new_interval, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listBySessionSQL = `
SELECT id, card_id, session_id, grade, previous_interval, new_interval, reviewed_at
FROM review_events
WHERE session_id = $1
ORDER BY reviewed_at ASC, id ASC`

const listRecentGradesSQL = `
SELECT grade
FROM review_events
ORDER BY reviewed_at DESC, id DESC
LIMIT $1`

const lapseRatesByTagSQL = `
SELECT c.difficulty_tag,
       count(*)                                        AS total,
       count(*) FILTER (WHERE e.grade = 'AGAIN')       AS lapses
FROM review_events e
JOIN cards c ON c.id = e.card_id
GROUP BY c.difficulty_tag
ORDER BY c.difficulty_tag`

const countDistinctCardsSQL = `
SELECT count(DISTINCT card_id) FROM review_events`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts a review event. Events are immutable once written.
func (r *Repo) Append(ctx context.Context, ev *domain.ReviewEvent) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	reviewedAt := ev.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}

	_, err := querier.Exec(ctx, appendSQL,
		ev.ID,
		ev.CardID,
		ev.SessionID,
		string(ev.Grade),
		ev.PreviousInterval,
		ev.NewInterval,
		reviewedAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_event", ev.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListBySession returns all events of a session in review order.
func (r *Repo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.ReviewEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listBySessionSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session events: %w", err)
	}
	defer rows.Close()

	var events []*domain.ReviewEvent
	for rows.Next() {
		var (
			ev    domain.ReviewEvent
			grade string
		)
		if err := rows.Scan(&ev.ID, &ev.CardID, &ev.SessionID, &grade,
			&ev.PreviousInterval, &ev.NewInterval, &ev.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		ev.Grade = domain.ReviewGrade(grade)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}

	if events == nil {
		events = []*domain.ReviewEvent{}
	}
	return events, nil
}

// ListRecentGrades returns the grades of the most recent events, newest
// first, limited to the rolling accuracy window.
func (r *Repo) ListRecentGrades(ctx context.Context, limit int) ([]domain.ReviewGrade, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listRecentGradesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent grades: %w", err)
	}
	defer rows.Close()

	var grades []domain.ReviewGrade
	for rows.Next() {
		var grade string
		if err := rows.Scan(&grade); err != nil {
			return nil, fmt.Errorf("scan recent grade: %w", err)
		}
		grades = append(grades, domain.ReviewGrade(grade))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent grades: %w", err)
	}

	if grades == nil {
		grades = []domain.ReviewGrade{}
	}
	return grades, nil
}

// LapseRatesByTag returns the share of AGAIN grades per difficulty tag over
// the whole event log. Tags with no events are omitted.
func (r *Repo) LapseRatesByTag(ctx context.Context) ([]domain.TagLapseRate, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, lapseRatesByTagSQL)
	if err != nil {
		return nil, fmt.Errorf("lapse rates by tag: %w", err)
	}
	defer rows.Close()

	var rates []domain.TagLapseRate
	for rows.Next() {
		var (
			tag    string
			total  int
			lapses int
		)
		if err := rows.Scan(&tag, &total, &lapses); err != nil {
			return nil, fmt.Errorf("scan lapse rate: %w", err)
		}

		rate := domain.TagLapseRate{
			Tag:     domain.DifficultyTag(tag),
			Reviews: total,
			Lapses:  lapses,
		}
		if total > 0 {
			rate.LapseRate = float64(lapses) / float64(total)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lapse rates: %w", err)
	}

	if rates == nil {
		rates = []domain.TagLapseRate{}
	}
	return rates, nil
}

// CountDistinctCards returns how many distinct cards have at least one
// review event.
func (r *Repo) CountDistinctCards(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDistinctCardsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count distinct cards: %w", err)
	}
	return count, nil
}
