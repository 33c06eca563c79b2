package practice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

// Hand-written mocks for the private repo interfaces. Each mock records its
// calls and panics on an unexpected invocation so tests fail loudly.

// ---------------------------------------------------------------------------
// cardRepoMock
// ---------------------------------------------------------------------------

type cardRepoMock struct {
	GetFunc            func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetForUpdateFunc   func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	UpdateScheduleFunc func(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error)
	ListDueFunc        func(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error)
	ListNewFunc        func(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error)
	CountDueFunc       func(ctx context.Context, deckTopic string, now time.Time) (int, error)

	mu    sync.Mutex
	calls struct {
		Get            []uuid.UUID
		GetForUpdate   []uuid.UUID
		UpdateSchedule []struct {
			ID     uuid.UUID
			Params domain.ScheduleParams
		}
		ListDue []struct {
			DeckTopic string
			Limit     int
		}
		ListNew []struct {
			DeckTopic string
			Limit     int
		}
		CountDue []string
	}
}

func (m *cardRepoMock) Get(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetFunc == nil {
		panic("cardRepoMock.Get: unexpected call")
	}
	m.mu.Lock()
	m.calls.Get = append(m.calls.Get, id)
	m.mu.Unlock()
	return m.GetFunc(ctx, id)
}

func (m *cardRepoMock) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetForUpdateFunc == nil {
		panic("cardRepoMock.GetForUpdate: unexpected call")
	}
	m.mu.Lock()
	m.calls.GetForUpdate = append(m.calls.GetForUpdate, id)
	m.mu.Unlock()
	return m.GetForUpdateFunc(ctx, id)
}

func (m *cardRepoMock) UpdateSchedule(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error) {
	if m.UpdateScheduleFunc == nil {
		panic("cardRepoMock.UpdateSchedule: unexpected call")
	}
	m.mu.Lock()
	m.calls.UpdateSchedule = append(m.calls.UpdateSchedule, struct {
		ID     uuid.UUID
		Params domain.ScheduleParams
	}{id, params})
	m.mu.Unlock()
	return m.UpdateScheduleFunc(ctx, id, params)
}

func (m *cardRepoMock) ListDue(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error) {
	if m.ListDueFunc == nil {
		panic("cardRepoMock.ListDue: unexpected call")
	}
	m.mu.Lock()
	m.calls.ListDue = append(m.calls.ListDue, struct {
		DeckTopic string
		Limit     int
	}{deckTopic, limit})
	m.mu.Unlock()
	return m.ListDueFunc(ctx, deckTopic, now, limit)
}

func (m *cardRepoMock) ListNew(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error) {
	if m.ListNewFunc == nil {
		panic("cardRepoMock.ListNew: unexpected call")
	}
	m.mu.Lock()
	m.calls.ListNew = append(m.calls.ListNew, struct {
		DeckTopic string
		Limit     int
	}{deckTopic, limit})
	m.mu.Unlock()
	return m.ListNewFunc(ctx, deckTopic, limit)
}

func (m *cardRepoMock) CountDue(ctx context.Context, deckTopic string, now time.Time) (int, error) {
	if m.CountDueFunc == nil {
		panic("cardRepoMock.CountDue: unexpected call")
	}
	m.mu.Lock()
	m.calls.CountDue = append(m.calls.CountDue, deckTopic)
	m.mu.Unlock()
	return m.CountDueFunc(ctx, deckTopic, now)
}

func (m *cardRepoMock) UpdateScheduleCalls() []struct {
	ID     uuid.UUID
	Params domain.ScheduleParams
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateSchedule
}

func (m *cardRepoMock) ListNewCalls() []struct {
	DeckTopic string
	Limit     int
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListNew
}

// ---------------------------------------------------------------------------
// eventRepoMock
// ---------------------------------------------------------------------------

type eventRepoMock struct {
	AppendFunc func(ctx context.Context, ev *domain.ReviewEvent) error

	mu    sync.Mutex
	calls struct {
		Append []*domain.ReviewEvent
	}
}

func (m *eventRepoMock) Append(ctx context.Context, ev *domain.ReviewEvent) error {
	if m.AppendFunc == nil {
		panic("eventRepoMock.Append: unexpected call")
	}
	m.mu.Lock()
	m.calls.Append = append(m.calls.Append, ev)
	m.mu.Unlock()
	return m.AppendFunc(ctx, ev)
}

func (m *eventRepoMock) AppendCalls() []*domain.ReviewEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Append
}

// ---------------------------------------------------------------------------
// sessionRepoMock
// ---------------------------------------------------------------------------

type sessionRepoMock struct {
	CreateFunc         func(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error)
	GetFunc            func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)
	UpdateProgressFunc func(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error)
	CompleteFunc       func(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.PracticeSession, error)
	AbandonFunc        func(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	ListIdleActiveFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error)

	mu    sync.Mutex
	calls struct {
		Create         []*domain.PracticeSession
		Get            []uuid.UUID
		UpdateProgress []struct {
			ID       uuid.UUID
			Cursor   int
			Answered map[uuid.UUID]domain.ReviewGrade
		}
		Complete []uuid.UUID
		Abandon  []uuid.UUID
	}
}

func (m *sessionRepoMock) Create(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
	if m.CreateFunc == nil {
		panic("sessionRepoMock.Create: unexpected call")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, session)
	m.mu.Unlock()
	return m.CreateFunc(ctx, session)
}

func (m *sessionRepoMock) Get(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	if m.GetFunc == nil {
		panic("sessionRepoMock.Get: unexpected call")
	}
	m.mu.Lock()
	m.calls.Get = append(m.calls.Get, id)
	m.mu.Unlock()
	return m.GetFunc(ctx, id)
}

func (m *sessionRepoMock) UpdateProgress(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error) {
	if m.UpdateProgressFunc == nil {
		panic("sessionRepoMock.UpdateProgress: unexpected call")
	}
	m.mu.Lock()
	m.calls.UpdateProgress = append(m.calls.UpdateProgress, struct {
		ID       uuid.UUID
		Cursor   int
		Answered map[uuid.UUID]domain.ReviewGrade
	}{id, cursor, answered})
	m.mu.Unlock()
	return m.UpdateProgressFunc(ctx, id, cursor, answered, lastAnswerAt)
}

func (m *sessionRepoMock) Complete(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.PracticeSession, error) {
	if m.CompleteFunc == nil {
		panic("sessionRepoMock.Complete: unexpected call")
	}
	m.mu.Lock()
	m.calls.Complete = append(m.calls.Complete, id)
	m.mu.Unlock()
	return m.CompleteFunc(ctx, id, endedAt)
}

func (m *sessionRepoMock) Abandon(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	if m.AbandonFunc == nil {
		panic("sessionRepoMock.Abandon: unexpected call")
	}
	m.mu.Lock()
	m.calls.Abandon = append(m.calls.Abandon, id)
	m.mu.Unlock()
	return m.AbandonFunc(ctx, id, endedAt)
}

func (m *sessionRepoMock) ListIdleActive(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error) {
	if m.ListIdleActiveFunc == nil {
		panic("sessionRepoMock.ListIdleActive: unexpected call")
	}
	return m.ListIdleActiveFunc(ctx, cutoff, limit)
}

func (m *sessionRepoMock) CreateCalls() []*domain.PracticeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *sessionRepoMock) UpdateProgressCalls() []struct {
	ID       uuid.UUID
	Cursor   int
	Answered map[uuid.UUID]domain.ReviewGrade
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateProgress
}

func (m *sessionRepoMock) CompleteCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Complete
}

func (m *sessionRepoMock) AbandonCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Abandon
}

// ---------------------------------------------------------------------------
// txManagerMock
// ---------------------------------------------------------------------------

// txManagerMock runs the callback with the same context, like a transaction
// that always commits unless fn fails.
type txManagerMock struct{}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
