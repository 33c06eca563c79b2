// Package ingest validates card candidates arriving from content
// collaborators and persists them as NEW cards. Candidate text is opaque;
// only shape and the difficulty tag are checked at this boundary.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

type cardRepo interface {
	Create(ctx context.Context, card *domain.Card) (*domain.Card, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements candidate ingestion.
type Service struct {
	cards       cardRepo
	tx          txManager
	log         *slog.Logger
	defaultEase float64
}

// NewService creates a new ingest service. defaultEase is the ease factor
// assigned to every new card.
func NewService(log *slog.Logger, cards cardRepo, tx txManager, defaultEase float64) *Service {
	return &Service{
		cards:       cards,
		tx:          tx,
		log:         log.With("service", "ingest"),
		defaultEase: defaultEase,
	}
}

// IngestCandidates validates a batch of candidates and creates one NEW card
// per candidate. The batch is atomic: any validation error rejects the whole
// batch before a single card is written, and creation runs in one
// transaction.
func (s *Service) IngestCandidates(ctx context.Context, input IngestInput) ([]*domain.Card, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	topic := domain.NormalizeDeckTopic(input.DeckTopic)

	cards := make([]*domain.Card, 0, len(input.Candidates))
	for _, candidate := range input.Candidates {
		front, back, tag := candidate.normalized()
		cards = append(cards, &domain.Card{
			ID:            uuid.New(),
			DeckTopic:     topic,
			Front:         front,
			Back:          back,
			DifficultyTag: tag,
			Status:        domain.CardStatusNew,
			IntervalDays:  0,
			EaseFactor:    s.defaultEase,
		})
	}

	created := make([]*domain.Card, 0, len(cards))
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for i, card := range cards {
			c, err := s.cards.Create(txCtx, card)
			if err != nil {
				return fmt.Errorf("create card %d: %w", i, err)
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "candidates ingested",
		slog.String("deck_topic", topic),
		slog.Int("count", len(created)),
	)

	return created, nil
}
