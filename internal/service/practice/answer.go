package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

// Answer processes the learner's grade for the card at the session cursor.
//
// The whole transition is one transaction: the card row is locked
// (serializing concurrent answers on the same card across sessions), the
// schedule update, the review event, and the cursor advancement commit
// together or not at all. Session state is never mutated in memory before the
// write succeeds.
//
// Fails with domain.ErrBusy when another answer for the same session is in
// flight, domain.ErrSessionClosed on a terminal session, and
// domain.ErrOutOfOrder when the card is not the one at the cursor.
func (s *Service) Answer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if !s.locks.TryLock(input.SessionID) {
		return nil, fmt.Errorf("session %s: %w", input.SessionID, domain.ErrBusy)
	}
	defer s.locks.Unlock(input.SessionID)

	session, err := s.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status.IsTerminal() {
		return nil, fmt.Errorf("session %s: %w", input.SessionID, domain.ErrSessionClosed)
	}

	currentID, ok := session.CurrentCardID()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", input.SessionID, domain.ErrSessionClosed)
	}
	if input.CardID != currentID {
		return nil, fmt.Errorf("card %s is not at the cursor: %w", input.CardID, domain.ErrOutOfOrder)
	}

	now := s.now()
	result := &AnswerResult{}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// Row lock serializes concurrent answers on the same card from
		// different sessions.
		card, err := s.cards.GetForUpdate(txCtx, input.CardID)
		if err != nil {
			return fmt.Errorf("get card for update: %w", err)
		}

		params := Transition(SRSInput{
			Status:          card.Status,
			IntervalDays:    card.IntervalDays,
			EaseFactor:      card.EaseFactor,
			LapseCount:      card.LapseCount,
			RepetitionCount: card.RepetitionCount,
			DifficultyTag:   card.DifficultyTag,
			Grade:           input.Grade,
			Now:             now,
			Config:          s.srs,
		})

		updated, err := s.cards.UpdateSchedule(txCtx, card.ID, params)
		if err != nil {
			return fmt.Errorf("update card schedule: %w", err)
		}

		if err := s.events.Append(txCtx, &domain.ReviewEvent{
			ID:               uuid.New(),
			CardID:           card.ID,
			SessionID:        session.ID,
			Grade:            input.Grade,
			PreviousInterval: card.IntervalDays,
			NewInterval:      updated.IntervalDays,
			ReviewedAt:       now,
		}); err != nil {
			return fmt.Errorf("append review event: %w", err)
		}

		answered := make(map[uuid.UUID]domain.ReviewGrade, len(session.Answered)+1)
		for id, grade := range session.Answered {
			answered[id] = grade
		}
		answered[card.ID] = input.Grade
		cursor := session.Cursor + 1

		if _, err := s.sessions.UpdateProgress(txCtx, session.ID, cursor, answered, now); err != nil {
			return fmt.Errorf("update session progress: %w", err)
		}

		if cursor == len(session.Queue) {
			if _, err := s.sessions.Complete(txCtx, session.ID, now); err != nil {
				return fmt.Errorf("complete session: %w", err)
			}
			result.SessionCompleted = true
		}

		result.NextDue = updated.DueAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "answer recorded",
		slog.String("session_id", session.ID.String()),
		slog.String("card_id", input.CardID.String()),
		slog.String("grade", string(input.Grade)),
		slog.Bool("session_completed", result.SessionCompleted),
	)

	return result, nil
}
