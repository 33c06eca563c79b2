// Package practice implements the practice session engine: queue building,
// answer processing with durable per-answer writes, and the scheduling
// transitions applied on each grade.
package practice

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error)
	ListDue(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error)
	ListNew(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error)
	CountDue(ctx context.Context, deckTopic string, now time.Time) (int, error)
}

type eventRepo interface {
	Append(ctx context.Context, ev *domain.ReviewEvent) error
}

type sessionRepo interface {
	Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error)
	Complete(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.PracticeSession, error)
	Abandon(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	ListIdleActive(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds session tuning parameters.
type Config struct {
	DefaultQueueSize int
	MaxQueueSize     int
	IdleTimeout      time.Duration
}

// sweepBatchSize bounds how many idle sessions a single sweep pass abandons.
const sweepBatchSize = 100

// Service implements the practice session business logic.
type Service struct {
	cards    cardRepo
	events   eventRepo
	sessions sessionRepo
	tx       txManager
	locks    *sessionLocks
	log      *slog.Logger
	srs      domain.SRSConfig
	cfg      Config
	now      func() time.Time
}

// NewService creates a new practice service.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	events eventRepo,
	sessions sessionRepo,
	tx txManager,
	srs domain.SRSConfig,
	cfg Config,
) *Service {
	return &Service{
		cards:    cards,
		events:   events,
		sessions: sessions,
		tx:       tx,
		locks:    newSessionLocks(),
		log:      log.With("service", "practice"),
		srs:      srs,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
