package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

// StartSession builds a fixed queue for a deck and creates an ACTIVE session.
// Due cards fill the queue first, ordered most overdue first; remaining
// capacity is topped up with NEW cards in creation order. A deck with fewer
// candidates than requested yields a shorter queue; a deck with none fails
// with domain.ErrEmptyDeck.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*domain.PracticeSession, error) {
	if err := input.Validate(s.cfg.MaxQueueSize); err != nil {
		return nil, err
	}

	topic := domain.NormalizeDeckTopic(input.DeckTopic)
	size := input.DesiredCount
	if size == 0 {
		size = s.cfg.DefaultQueueSize
	}

	now := s.now()

	due, err := s.cards.ListDue(ctx, topic, now, size)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}

	queue := make([]uuid.UUID, 0, size)
	for _, c := range due {
		queue = append(queue, c.ID)
	}

	if remaining := size - len(queue); remaining > 0 {
		fresh, err := s.cards.ListNew(ctx, topic, remaining)
		if err != nil {
			return nil, fmt.Errorf("list new cards: %w", err)
		}
		for _, c := range fresh {
			queue = append(queue, c.ID)
		}
	}

	if len(queue) == 0 {
		return nil, fmt.Errorf("deck %q: %w", topic, domain.ErrEmptyDeck)
	}

	created, err := s.sessions.Create(ctx, &domain.PracticeSession{
		ID:        uuid.New(),
		DeckTopic: topic,
		Status:    domain.SessionStatusActive,
		Queue:     queue,
		Answered:  map[uuid.UUID]domain.ReviewGrade{},
		StartedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "session started",
		slog.String("session_id", created.ID.String()),
		slog.String("deck_topic", topic),
		slog.Int("queue_length", len(created.Queue)),
	)

	return created, nil
}

// NextCard returns the card at the session cursor without advancing it, or a
// completion signal when the queue is exhausted. Fails with
// domain.ErrSessionClosed on a terminal session.
func (s *Service) NextCard(ctx context.Context, sessionID uuid.UUID) (*NextCardResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status.IsTerminal() {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionClosed)
	}

	cardID, ok := session.CurrentCardID()
	if !ok {
		return &NextCardResult{Complete: true}, nil
	}

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	return &NextCardResult{Card: card}, nil
}

// Resume returns the session's current state unchanged. Idempotent: every
// answer was already durably written, so reconnecting clients read the
// cursor and answered map as-is.
func (s *Service) Resume(ctx context.Context, sessionID uuid.UUID) (*domain.PracticeSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Summary aggregates a terminal session: per-grade counts, accuracy, and
// elapsed time. Fails with domain.ErrNotReady while the session is ACTIVE.
func (s *Service) Summary(ctx context.Context, sessionID uuid.UUID) (*domain.SessionSummary, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.Status.IsTerminal() {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotReady)
	}

	return summarize(session), nil
}

// AbandonSession explicitly abandons an ACTIVE session. Already-applied
// answers are never rolled back; partial progress is permanent. Fails with
// domain.ErrSessionClosed on a terminal session and domain.ErrBusy while an
// answer is in flight.
func (s *Service) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	if !s.locks.TryLock(sessionID) {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrBusy)
	}
	defer s.locks.Unlock(sessionID)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if session.Status.IsTerminal() {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionClosed)
	}

	if err := s.sessions.Abandon(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}

	s.log.InfoContext(ctx, "session abandoned",
		slog.String("session_id", sessionID.String()),
	)

	return nil
}

// DueCount returns the number of due cards in a deck.
func (s *Service) DueCount(ctx context.Context, deckTopic string) (int, error) {
	topic := domain.NormalizeDeckTopic(deckTopic)
	if topic == "" {
		return 0, domain.NewValidationError("deck_topic", "required")
	}

	count, err := s.cards.CountDue(ctx, topic, s.now())
	if err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}
	return count, nil
}
