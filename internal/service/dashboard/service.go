// Package dashboard assembles read-only practice statistics: due counts per
// deck, rolling accuracy, the daily streak, lapse rates by difficulty tag,
// and recent session history.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

type cardRepo interface {
	DueByDeck(ctx context.Context, now time.Time) ([]domain.DeckDueCount, error)
	ListTopics(ctx context.Context) ([]string, error)
}

type eventRepo interface {
	ListRecentGrades(ctx context.Context, limit int) ([]domain.ReviewGrade, error)
	LapseRatesByTag(ctx context.Context) ([]domain.TagLapseRate, error)
	CountDistinctCards(ctx context.Context) (int, error)
}

type sessionRepo interface {
	ListRecentCompleted(ctx context.Context, limit int) ([]*domain.PracticeSession, error)
	CountCompleted(ctx context.Context) (int, error)
	CompletedDays(ctx context.Context, since time.Time) ([]time.Time, error)
}

// Config holds dashboard aggregation settings.
type Config struct {
	// AccuracyWindow is the number of most recent reviews the rolling
	// accuracy is computed over.
	AccuracyWindow int
	// RecentSessions is how many completed sessions the dashboard lists.
	RecentSessions int
	// StreakLookbackDays bounds how far back the streak walk scans.
	StreakLookbackDays int
}

// Service produces the aggregated dashboard.
type Service struct {
	cards    cardRepo
	events   eventRepo
	sessions sessionRepo
	log      *slog.Logger
	cfg      Config
	now      func() time.Time
}

// NewService creates a new dashboard service.
func NewService(log *slog.Logger, cards cardRepo, events eventRepo, sessions sessionRepo, cfg Config) *Service {
	return &Service{
		cards:    cards,
		events:   events,
		sessions: sessions,
		log:      log.With("service", "dashboard"),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard gathers all dashboard statistics. The rollups are read
// separately, not in one snapshot transaction, so concurrent answers may
// land between reads; the numbers are advisory, not ledger state.
func (s *Service) GetDashboard(ctx context.Context) (domain.Dashboard, error) {
	now := s.now()

	dueByDeck, err := s.cards.DueByDeck(ctx, now)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("due by deck: %w", err)
	}

	topics, err := s.cards.ListTopics(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("list topics: %w", err)
	}

	grades, err := s.events.ListRecentGrades(ctx, s.cfg.AccuracyWindow)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("recent grades: %w", err)
	}

	lapseRates, err := s.events.LapseRatesByTag(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("lapse rates: %w", err)
	}

	cardsStudied, err := s.events.CountDistinctCards(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count studied cards: %w", err)
	}

	sessionsCompleted, err := s.sessions.CountCompleted(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("count completed sessions: %w", err)
	}

	recent, err := s.sessions.ListRecentCompleted(ctx, s.cfg.RecentSessions)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("recent sessions: %w", err)
	}

	since := now.AddDate(0, 0, -s.cfg.StreakLookbackDays)
	days, err := s.sessions.CompletedDays(ctx, since)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("completed days: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	dashboard := domain.Dashboard{
		DueByDeck:         mergeDueCounts(topics, dueByDeck),
		RollingAccuracy:   rollingAccuracy(grades),
		RollingWindowSize: len(grades),
		Streak:            calculateStreak(days, today),
		LapseRates:        lapseRates,
		CardsStudied:      cardsStudied,
		SessionsCompleted: sessionsCompleted,
		RecentSessions:    recentSessionRows(recent),
	}

	s.log.InfoContext(ctx, "dashboard assembled",
		slog.Int("decks_with_due", len(dueByDeck)),
		slog.Int("rolling_window", len(grades)),
		slog.Int("streak", dashboard.Streak),
		slog.Int("sessions_completed", sessionsCompleted),
	)

	return dashboard, nil
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// mergeDueCounts lists every known deck, filling zero for decks without
// due cards so fully reviewed decks still show up.
func mergeDueCounts(topics []string, due []domain.DeckDueCount) []domain.DeckDueCount {
	byTopic := make(map[string]int, len(due))
	for _, d := range due {
		byTopic[d.DeckTopic] = d.Count
	}
	counts := make([]domain.DeckDueCount, 0, len(topics))
	for _, topic := range topics {
		counts = append(counts, domain.DeckDueCount{DeckTopic: topic, Count: byTopic[topic]})
	}
	return counts
}

// rollingAccuracy is the share of GOOD and EASY grades in the window.
// An empty window yields 0.
func rollingAccuracy(grades []domain.ReviewGrade) float64 {
	if len(grades) == 0 {
		return 0
	}
	correct := 0
	for _, g := range grades {
		if g == domain.ReviewGradeGood || g == domain.ReviewGradeEasy {
			correct++
		}
	}
	return float64(correct) / float64(len(grades))
}

// calculateStreak counts consecutive UTC days with at least one completed
// session, walking backwards from today. days must be sorted DESC by date.
// A day without sessions breaks the streak, except that a quiet today does
// not: the walk then starts from yesterday.
func calculateStreak(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	sameDay := func(a, b time.Time) bool {
		return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
	}

	expected := today
	if !sameDay(days[0], today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range days {
		if !sameDay(d, expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

func recentSessionRows(sessions []*domain.PracticeSession) []domain.RecentSession {
	rows := make([]domain.RecentSession, 0, len(sessions))
	for _, sess := range sessions {
		row := domain.RecentSession{
			SessionID:     sess.ID,
			DeckTopic:     sess.DeckTopic,
			CardsAnswered: len(sess.Answered),
			AccuracyRate:  sessionAccuracy(sess.Answered),
		}
		if sess.EndedAt != nil {
			row.CompletedAt = *sess.EndedAt
		}
		rows = append(rows, row)
	}
	return rows
}

func sessionAccuracy(answered map[uuid.UUID]domain.ReviewGrade) float64 {
	if len(answered) == 0 {
		return 0
	}
	correct := 0
	for _, g := range answered {
		if g == domain.ReviewGradeGood || g == domain.ReviewGradeEasy {
			correct++
		}
	}
	return float64(correct) / float64(len(answered))
}
