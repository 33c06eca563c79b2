package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/learnanything/practice-backend/internal/domain"
)

type cardRepoMock struct {
	CreateFunc func(ctx context.Context, card *domain.Card) (*domain.Card, error)

	mu    sync.Mutex
	calls []*domain.Card
}

func (m *cardRepoMock) Create(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	if m.CreateFunc == nil {
		panic("cardRepoMock.Create: unexpected call")
	}
	m.mu.Lock()
	m.calls = append(m.calls, card)
	m.mu.Unlock()
	return m.CreateFunc(ctx, card)
}

func (m *cardRepoMock) CreateCalls() []*domain.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type txManagerMock struct{}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(cards *cardRepoMock) *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), cards, &txManagerMock{}, 2.5)
}

func TestService_IngestCandidates_CreatesNewCards(t *testing.T) {
	t.Parallel()

	cards := &cardRepoMock{
		CreateFunc: func(ctx context.Context, card *domain.Card) (*domain.Card, error) {
			return card, nil
		},
	}
	svc := newTestService(cards)

	created, err := svc.IngestCandidates(context.Background(), IngestInput{
		DeckTopic: "  Cell Biology ",
		Candidates: []Candidate{
			{Front: " What is mitosis? ", Back: "Cell division producing identical daughters.", DifficultyTag: "easy"},
			{Front: "Define osmosis", Back: "Diffusion of water across a membrane.", DifficultyTag: ""},
			{Front: "Krebs cycle steps", Back: "Citrate, isocitrate, ...", DifficultyTag: "ADVANCED"},
		},
	})
	if err != nil {
		t.Fatalf("IngestCandidates: unexpected error: %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created: got %d, want 3", len(created))
	}

	first := created[0]
	if first.DeckTopic != "cell biology" {
		t.Errorf("DeckTopic: got %q, want normalized %q", first.DeckTopic, "cell biology")
	}
	if first.Front != "What is mitosis?" {
		t.Errorf("Front: got %q, want trimmed", first.Front)
	}
	if first.DifficultyTag != domain.DifficultyTagEasy {
		t.Errorf("DifficultyTag: got %s, want EASY", first.DifficultyTag)
	}
	if first.Status != domain.CardStatusNew {
		t.Errorf("Status: got %s, want NEW", first.Status)
	}
	if first.IntervalDays != 0 {
		t.Errorf("IntervalDays: got %d, want 0", first.IntervalDays)
	}
	if first.EaseFactor != 2.5 {
		t.Errorf("EaseFactor: got %f, want 2.5", first.EaseFactor)
	}

	// Empty tag defaults to MEDIUM, synonym maps onto the closed set.
	if created[1].DifficultyTag != domain.DifficultyTagMedium {
		t.Errorf("empty tag: got %s, want MEDIUM", created[1].DifficultyTag)
	}
	if created[2].DifficultyTag != domain.DifficultyTagHard {
		t.Errorf("ADVANCED tag: got %s, want HARD", created[2].DifficultyTag)
	}
}

func TestService_IngestCandidates_RejectsEmptyText(t *testing.T) {
	t.Parallel()

	cards := &cardRepoMock{}
	svc := newTestService(cards)

	_, err := svc.IngestCandidates(context.Background(), IngestInput{
		DeckTopic: "biology",
		Candidates: []Candidate{
			{Front: "ok front", Back: "ok back"},
			{Front: "   ", Back: "has back"},
			{Front: "has front", Back: ""},
		},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error: got %v, want ErrValidation", err)
	}

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error is not *domain.ValidationError: %v", err)
	}
	if len(vErr.Errors) != 2 {
		t.Errorf("field errors: got %d, want 2", len(vErr.Errors))
	}

	// The whole batch is rejected before any write.
	if len(cards.CreateCalls()) != 0 {
		t.Errorf("Create calls: got %d, want 0", len(cards.CreateCalls()))
	}
}

func TestService_IngestCandidates_RejectsUnknownTag(t *testing.T) {
	t.Parallel()

	svc := newTestService(&cardRepoMock{})

	_, err := svc.IngestCandidates(context.Background(), IngestInput{
		DeckTopic: "biology",
		Candidates: []Candidate{
			{Front: "f", Back: "b", DifficultyTag: "impossible"},
		},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error: got %v, want ErrValidation", err)
	}
}

func TestService_IngestCandidates_EmptyBatch(t *testing.T) {
	t.Parallel()

	svc := newTestService(&cardRepoMock{})

	_, err := svc.IngestCandidates(context.Background(), IngestInput{DeckTopic: "biology"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error: got %v, want ErrValidation", err)
	}
}

func TestService_IngestCandidates_CreateFailureAbortsBatch(t *testing.T) {
	t.Parallel()

	boom := errors.New("insert failed")
	cards := &cardRepoMock{
		CreateFunc: func(ctx context.Context, card *domain.Card) (*domain.Card, error) {
			return nil, boom
		},
	}
	svc := newTestService(cards)

	_, err := svc.IngestCandidates(context.Background(), IngestInput{
		DeckTopic:  "biology",
		Candidates: []Candidate{{Front: "f", Back: "b"}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error: got %v, want wrapped insert failure", err)
	}
}
