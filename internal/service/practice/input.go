package practice

import (
	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

// StartSessionInput holds the parameters for starting a practice session.
type StartSessionInput struct {
	DeckTopic    string
	DesiredCount int
}

// Validate checks all fields and collects all errors. A zero DesiredCount
// means "use the configured default" and is filled in by the service.
func (i *StartSessionInput) Validate(maxQueueSize int) error {
	var errs []domain.FieldError

	if domain.NormalizeDeckTopic(i.DeckTopic) == "" {
		errs = append(errs, domain.FieldError{Field: "deck_topic", Message: "required"})
	}
	if i.DesiredCount < 0 {
		errs = append(errs, domain.FieldError{Field: "desired_count", Message: "must be >= 0"})
	}
	if i.DesiredCount > maxQueueSize {
		errs = append(errs, domain.FieldError{Field: "desired_count", Message: "exceeds maximum queue size"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AnswerInput holds the parameters for answering the current card.
type AnswerInput struct {
	SessionID uuid.UUID
	CardID    uuid.UUID
	Grade     domain.ReviewGrade
}

// Validate checks all fields and collects all errors.
func (i *AnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if !i.Grade.IsValid() {
		errs = append(errs, domain.FieldError{Field: "grade", Message: "must be AGAIN, HARD, GOOD, or EASY"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
