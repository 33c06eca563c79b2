// Package session implements the PracticeSession repository using PostgreSQL.
// All queries use raw SQL since the answered column is JSONB requiring custom
// marshal/unmarshal logic and the queue column is a uuid array.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/learnanything/practice-backend/internal/adapter/postgres"
	"github.com/learnanything/practice-backend/internal/domain"
)

// Repo provides practice session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const sessionColumns = `id, deck_topic, status, queue, cursor_pos, answered,
started_at, ended_at, last_answer_at, created_at`

const createSQL = `
INSERT INTO practice_sessions (id, deck_topic, status, queue, cursor_pos,
                               answered, started_at, last_answer_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + sessionColumns

const getSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE id = $1`

const updateProgressSQL = `
UPDATE practice_sessions
SET cursor_pos = $2, answered = $3, last_answer_at = $4
WHERE id = $1 AND status = 'ACTIVE'
RETURNING ` + sessionColumns

const completeSQL = `
UPDATE practice_sessions
SET status = 'COMPLETED', ended_at = $2
WHERE id = $1 AND status = 'ACTIVE'
RETURNING ` + sessionColumns

const abandonSQL = `
UPDATE practice_sessions
SET status = 'ABANDONED', ended_at = $2
WHERE id = $1 AND status = 'ACTIVE'`

const listIdleActiveSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE status = 'ACTIVE' AND last_answer_at < $1
ORDER BY last_answer_at ASC
LIMIT $2`

const listRecentCompletedSQL = `
SELECT ` + sessionColumns + `
FROM practice_sessions
WHERE status = 'COMPLETED'
ORDER BY ended_at DESC
LIMIT $1`

const countCompletedSQL = `
SELECT count(*) FROM practice_sessions WHERE status = 'COMPLETED'`

const completedDaysSQL = `
SELECT DISTINCT (ended_at AT TIME ZONE 'UTC')::date AS day
FROM practice_sessions
WHERE status = 'COMPLETED' AND ended_at >= $1
ORDER BY day DESC`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a session by primary key. Returns domain.ErrNotFound for an
// unknown id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	session, err := scanSession(querier.QueryRow(ctx, getSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "session", id)
	}
	return session, nil
}

// ListIdleActive returns ACTIVE sessions whose last answer is older than the
// cutoff, oldest first.
func (r *Repo) ListIdleActive(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listIdleActiveSQL, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	return sessions, nil
}

// ListRecentCompleted returns COMPLETED sessions newest first.
func (r *Repo) ListRecentCompleted(ctx context.Context, limit int) ([]*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listRecentCompletedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent completed sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("list recent completed sessions: %w", err)
	}
	return sessions, nil
}

// CountCompleted returns the total number of COMPLETED sessions.
func (r *Repo) CountCompleted(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countCompletedSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return count, nil
}

// CompletedDays returns the distinct UTC dates with at least one completed
// session since the given time, newest first. Used for streak computation.
func (r *Repo) CompletedDays(ctx context.Context, since time.Time) ([]time.Time, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, completedDaysSQL, since)
	if err != nil {
		return nil, fmt.Errorf("list completed days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan completed day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed days: %w", err)
	}

	if days == nil {
		days = []time.Time{}
	}
	return days, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new practice session and returns the persisted row.
func (r *Repo) Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	answeredBytes, err := marshalAnswered(session.Answered)
	if err != nil {
		return nil, fmt.Errorf("session %s: marshal answered: %w", session.ID, err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	startedAt := session.StartedAt.UTC().Truncate(time.Microsecond)
	lastAnswerAt := session.LastAnswerAt
	if lastAnswerAt.IsZero() {
		lastAnswerAt = startedAt
	}

	row := querier.QueryRow(ctx, createSQL,
		session.ID,
		session.DeckTopic,
		string(session.Status),
		session.Queue,
		session.Cursor,
		answeredBytes,
		startedAt,
		lastAnswerAt.UTC().Truncate(time.Microsecond),
		now,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", session.ID)
	}
	return created, nil
}

// UpdateProgress persists the cursor and answered map of an ACTIVE session.
// Returns domain.ErrNotFound if the session does not exist or is already
// terminal.
func (r *Repo) UpdateProgress(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	answeredBytes, err := marshalAnswered(answered)
	if err != nil {
		return nil, fmt.Errorf("session %s: marshal answered: %w", id, err)
	}

	row := querier.QueryRow(ctx, updateProgressSQL, id, cursor, answeredBytes,
		lastAnswerAt.UTC().Truncate(time.Microsecond))

	updated, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", id)
	}
	return updated, nil
}

// Complete moves an ACTIVE session to COMPLETED.
// Returns domain.ErrNotFound if the session does not exist or is already
// terminal.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.PracticeSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, completeSQL, id, endedAt.UTC().Truncate(time.Microsecond))

	completed, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", id)
	}
	return completed, nil
}

// Abandon moves an ACTIVE session to ABANDONED.
// Returns domain.ErrNotFound if the session does not exist or is already
// terminal.
func (r *Repo) Abandon(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, abandonSQL, id, endedAt.UTC().Truncate(time.Microsecond))
	if err != nil {
		return postgres.MapError(err, "session", id)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanSession scans a single session row from pgx.Row.
func scanSession(row pgx.Row) (*domain.PracticeSession, error) {
	var (
		id           uuid.UUID
		deckTopic    string
		status       string
		queue        []uuid.UUID
		cursor       int
		answeredJSON []byte
		startedAt    time.Time
		endedAt      *time.Time
		lastAnswerAt time.Time
		createdAt    time.Time
	)

	if err := row.Scan(&id, &deckTopic, &status, &queue, &cursor, &answeredJSON,
		&startedAt, &endedAt, &lastAnswerAt, &createdAt); err != nil {
		return nil, err
	}

	answered, err := unmarshalAnswered(answeredJSON)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	return &domain.PracticeSession{
		ID:           id,
		DeckTopic:    deckTopic,
		Status:       domain.SessionStatus(status),
		Queue:        queue,
		Cursor:       cursor,
		Answered:     answered,
		StartedAt:    startedAt,
		EndedAt:      endedAt,
		LastAnswerAt: lastAnswerAt,
		CreatedAt:    createdAt,
	}, nil
}

// scanSessions scans multiple session rows into a []*domain.PracticeSession slice.
func scanSessions(rows pgx.Rows) ([]*domain.PracticeSession, error) {
	var sessions []*domain.PracticeSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []*domain.PracticeSession{}
	}
	return sessions, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers for the answered map
// ---------------------------------------------------------------------------

// marshalAnswered converts the answered map to JSON bytes for JSONB storage.
// Keys are card ids in canonical string form, values are grade names.
// A nil map is stored as an empty object so the column stays NOT NULL.
func marshalAnswered(answered map[uuid.UUID]domain.ReviewGrade) ([]byte, error) {
	m := make(map[string]string, len(answered))
	for cardID, grade := range answered {
		m[cardID.String()] = string(grade)
	}
	return json.Marshal(m)
}

// unmarshalAnswered converts JSONB bytes back into the answered map.
func unmarshalAnswered(data []byte) (map[uuid.UUID]domain.ReviewGrade, error) {
	m := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("unmarshal answered: %w", err)
		}
	}

	answered := make(map[uuid.UUID]domain.ReviewGrade, len(m))
	for key, grade := range m {
		cardID, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("unmarshal answered: card id %q: %w", key, err)
		}
		answered[cardID] = domain.ReviewGrade(grade)
	}
	return answered, nil
}
