package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/learnanything/practice-backend/internal/domain"
)

// SweepIdle abandons ACTIVE sessions whose last answer is older than the
// configured idle timeout. Each candidate is abandoned under the same
// per-session lock as Answer, so a late-arriving answer never races the
// sweep. Returns the number of sessions abandoned.
func (s *Service) SweepIdle(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.IdleTimeout)

	idle, err := s.sessions.ListIdleActive(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}

	abandoned := 0
	for _, session := range idle {
		if !s.locks.TryLock(session.ID) {
			// An answer is in flight; the session is not idle after all.
			continue
		}

		err := s.sessions.Abandon(ctx, session.ID, s.now())
		s.locks.Unlock(session.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Completed or abandoned between listing and locking.
				continue
			}
			return abandoned, fmt.Errorf("abandon idle session %s: %w", session.ID, err)
		}

		abandoned++
		s.log.InfoContext(ctx, "idle session abandoned",
			slog.String("session_id", session.ID.String()),
			slog.Time("last_answer_at", session.LastAnswerAt),
		)
	}

	return abandoned, nil
}

// Sweeper runs SweepIdle on a fixed interval.
type Sweeper struct {
	scheduler gocron.Scheduler
	log       *slog.Logger
}

// NewSweeper creates a sweeper that abandons idle sessions every interval.
// Call Start to begin and Shutdown to stop.
func NewSweeper(log *slog.Logger, svc *Service, interval time.Duration) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	logger := log.With("component", "sweeper")

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			abandoned, err := svc.SweepIdle(ctx)
			if err != nil {
				logger.Error("sweep failed", slog.Any("error", err))
				return
			}
			if abandoned > 0 {
				logger.Info("sweep finished", slog.Int("abandoned", abandoned))
			}
		}),
		gocron.WithName("idle-session-sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("register sweep job: %w", err)
	}

	return &Sweeper{scheduler: scheduler, log: logger}, nil
}

// Start begins the periodic sweep in the background.
func (s *Sweeper) Start() {
	s.scheduler.Start()
}

// Shutdown stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Shutdown() error {
	return s.scheduler.Shutdown()
}
