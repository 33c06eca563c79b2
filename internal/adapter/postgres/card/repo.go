// Package card implements the Card repository using PostgreSQL.
// Point lookups and writes use raw SQL constants; list queries with
// dynamic filters are built with squirrel.
package card

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/learnanything/practice-backend/internal/adapter/postgres"
	"github.com/learnanything/practice-backend/internal/domain"
)

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new card repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

// cardCols is the canonical column list used by every card query.
var cardCols = []string{
	"id", "deck_topic", "front", "back", "difficulty_tag", "status",
	"interval_days", "ease_factor", "due_at", "lapse_count",
	"repetition_count", "created_at", "updated_at",
}

const getSQL = `
SELECT id, deck_topic, front, back, difficulty_tag, status,
       interval_days, ease_factor, due_at, lapse_count,
       repetition_count, created_at, updated_at
FROM cards
WHERE id = $1`

const getForUpdateSQL = getSQL + `
FOR UPDATE`

const createSQL = `
INSERT INTO cards (id, deck_topic, front, back, difficulty_tag, status,
                   interval_days, ease_factor, due_at, lapse_count,
                   repetition_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, deck_topic, front, back, difficulty_tag, status,
          interval_days, ease_factor, due_at, lapse_count,
          repetition_count, created_at, updated_at`

const updateScheduleSQL = `
UPDATE cards
SET status = $2, interval_days = $3, ease_factor = $4, due_at = $5,
    lapse_count = $6, repetition_count = $7, updated_at = $8
WHERE id = $1
RETURNING id, deck_topic, front, back, difficulty_tag, status,
          interval_days, ease_factor, due_at, lapse_count,
          repetition_count, created_at, updated_at`

const updateStatusSQL = `
UPDATE cards
SET status = $2, updated_at = $3
WHERE id = $1`

const suspendSQL = `
UPDATE cards
SET status = 'SUSPENDED', updated_at = $2
WHERE id = $1`

// resumeSQL restores the pre-suspension scheduling state: graduated cards
// return to REVIEW, lapsed ones to LEARNING, untouched ones to NEW.
const resumeSQL = `
UPDATE cards
SET status = CASE
        WHEN interval_days > 0 THEN 'REVIEW'
        WHEN lapse_count > 0 THEN 'LEARNING'
        ELSE 'NEW'
    END,
    updated_at = $2
WHERE id = $1 AND status = 'SUSPENDED'`

const listTopicsSQL = `
SELECT DISTINCT deck_topic
FROM cards
ORDER BY deck_topic`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a card by primary key. Returns domain.ErrNotFound for an
// unknown id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanCard(querier.QueryRow(ctx, getSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "card", id)
	}
	return c, nil
}

// GetForUpdate returns a card by primary key holding a row lock for the
// duration of the surrounding transaction. Must be called inside RunInTx;
// outside a transaction the lock is released immediately and provides no
// serialization.
func (r *Repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	c, err := scanCard(querier.QueryRow(ctx, getForUpdateSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "card", id)
	}
	return c, nil
}

// ListDue returns cards in the deck with due_at <= now, excluding NEW and
// SUSPENDED cards, ordered by due_at ASC then id ASC (deterministic
// tie-break). limit <= 0 means no limit.
func (r *Repo) ListDue(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error) {
	q := r.sb.Select(cardCols...).
		From("cards").
		Where(sq.Eq{"deck_topic": deckTopic}).
		Where(sq.NotEq{"status": []string{string(domain.CardStatusNew), string(domain.CardStatusSuspended)}}).
		Where(sq.LtOrEq{"due_at": now}).
		OrderBy("due_at ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due query: %w", err)
	}

	return r.queryCards(ctx, "list due cards", sqlStr, args...)
}

// ListNew returns NEW cards in the deck in creation order. limit <= 0 means
// no limit.
func (r *Repo) ListNew(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error) {
	q := r.sb.Select(cardCols...).
		From("cards").
		Where(sq.Eq{"deck_topic": deckTopic, "status": string(domain.CardStatusNew)}).
		OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list new query: %w", err)
	}

	return r.queryCards(ctx, "list new cards", sqlStr, args...)
}

// CountDue returns the number of due cards in a deck.
func (r *Repo) CountDue(ctx context.Context, deckTopic string, now time.Time) (int, error) {
	sqlStr, args, err := r.sb.Select("count(*)").
		From("cards").
		Where(sq.Eq{"deck_topic": deckTopic}).
		Where(sq.NotEq{"status": []string{string(domain.CardStatusNew), string(domain.CardStatusSuspended)}}).
		Where(sq.LtOrEq{"due_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count due query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}
	return count, nil
}

// DueByDeck returns due-card counts grouped by deck topic, ordered by topic.
// Decks with zero due cards are omitted.
func (r *Repo) DueByDeck(ctx context.Context, now time.Time) ([]domain.DeckDueCount, error) {
	sqlStr, args, err := r.sb.Select("deck_topic", "count(*)").
		From("cards").
		Where(sq.NotEq{"status": []string{string(domain.CardStatusNew), string(domain.CardStatusSuspended)}}).
		Where(sq.LtOrEq{"due_at": now}).
		GroupBy("deck_topic").
		OrderBy("deck_topic ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due by deck query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("due by deck: %w", err)
	}
	defer rows.Close()

	var counts []domain.DeckDueCount
	for rows.Next() {
		var dc domain.DeckDueCount
		if err := rows.Scan(&dc.DeckTopic, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan due by deck: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due by deck: %w", err)
	}

	if counts == nil {
		counts = []domain.DeckDueCount{}
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new card and returns the persisted domain.Card.
func (r *Repo) Create(ctx context.Context, c *domain.Card) (*domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	row := querier.QueryRow(ctx, createSQL,
		c.ID,
		c.DeckTopic,
		c.Front,
		c.Back,
		string(c.DifficultyTag),
		string(c.Status),
		c.IntervalDays,
		c.EaseFactor,
		c.DueAt,
		c.LapseCount,
		c.RepetitionCount,
		createdAt,
		now,
	)

	created, err := scanCard(row)
	if err != nil {
		return nil, postgres.MapError(err, "card", c.ID)
	}
	return created, nil
}

// UpdateSchedule applies a scheduling transition to a card and returns the
// updated row. Returns domain.ErrNotFound for an unknown id.
func (r *Repo) UpdateSchedule(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, updateScheduleSQL,
		id,
		string(params.Status),
		params.IntervalDays,
		params.EaseFactor,
		params.DueAt,
		params.LapseCount,
		params.RepetitionCount,
		now,
	)

	updated, err := scanCard(row)
	if err != nil {
		return nil, postgres.MapError(err, "card", id)
	}
	return updated, nil
}

// UpdateStatus changes only the card status (suspend/unsuspend).
// Returns domain.ErrNotFound for an unknown id.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, updateStatusSQL, id, string(status), time.Now().UTC())
	if err != nil {
		return postgres.MapError(err, "card", id)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Suspend removes a card from scheduling without deleting it.
// Returns domain.ErrNotFound for an unknown id.
func (r *Repo) Suspend(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, suspendSQL, id, time.Now().UTC())
	if err != nil {
		return postgres.MapError(err, "card", id)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Resume returns a SUSPENDED card to scheduling. Returns domain.ErrNotFound
// when the card does not exist or is not suspended.
func (r *Repo) Resume(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, resumeSQL, id, time.Now().UTC())
	if err != nil {
		return postgres.MapError(err, "card", id)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListTopics returns all distinct deck topics in alphabetical order.
func (r *Repo) ListTopics(ctx context.Context) ([]string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listTopicsSQL)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func (r *Repo) queryCards(ctx context.Context, op, sqlStr string, args ...any) ([]*domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cards, nil
}

// scanCard scans a single card row from pgx.Row.
func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		c             domain.Card
		difficultyTag string
		status        string
	)

	if err := row.Scan(&c.ID, &c.DeckTopic, &c.Front, &c.Back, &difficultyTag,
		&status, &c.IntervalDays, &c.EaseFactor, &c.DueAt, &c.LapseCount,
		&c.RepetitionCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.DifficultyTag = domain.DifficultyTag(difficultyTag)
	c.Status = domain.CardStatus(status)
	return &c, nil
}

// scanCards scans multiple rows into a []*domain.Card slice.
func scanCards(rows pgx.Rows) ([]*domain.Card, error) {
	var cards []*domain.Card
	for rows.Next() {
		var (
			c             domain.Card
			difficultyTag string
			status        string
		)
		if err := rows.Scan(&c.ID, &c.DeckTopic, &c.Front, &c.Back, &difficultyTag,
			&status, &c.IntervalDays, &c.EaseFactor, &c.DueAt, &c.LapseCount,
			&c.RepetitionCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.DifficultyTag = domain.DifficultyTag(difficultyTag)
		c.Status = domain.CardStatus(status)
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if cards == nil {
		cards = []*domain.Card{}
	}
	return cards, nil
}
