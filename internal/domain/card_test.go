package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCard_IsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		card Card
		want bool
	}{
		{
			name: "review card past due",
			card: Card{Status: CardStatusReview, DueAt: &past},
			want: true,
		},
		{
			name: "review card due exactly now",
			card: Card{Status: CardStatusReview, DueAt: &now},
			want: true,
		},
		{
			name: "review card not yet due",
			card: Card{Status: CardStatusReview, DueAt: &future},
			want: false,
		},
		{
			name: "learning card past due",
			card: Card{Status: CardStatusLearning, DueAt: &past},
			want: true,
		},
		{
			name: "suspended card is never due",
			card: Card{Status: CardStatusSuspended, DueAt: &past},
			want: false,
		},
		{
			name: "new card has no due time",
			card: Card{Status: CardStatusNew},
			want: false,
		},
		{
			name: "review card with nil due time",
			card: Card{Status: CardStatusReview},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.card.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPracticeSession_CurrentCardID(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	s := PracticeSession{Queue: []uuid.UUID{a, b}, Cursor: 0}

	got, ok := s.CurrentCardID()
	if !ok || got != a {
		t.Errorf("CurrentCardID() = %v, %v; want %v, true", got, ok, a)
	}

	s.Cursor = 2
	if _, ok := s.CurrentCardID(); ok {
		t.Error("CurrentCardID() at end of queue: want ok=false")
	}
}

func TestGradeCounts_Total(t *testing.T) {
	t.Parallel()

	g := GradeCounts{Again: 1, Hard: 2, Good: 3, Easy: 4}
	if got := g.Total(); got != 10 {
		t.Errorf("Total() = %d, want 10", got)
	}
}
