package practice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(cards *cardRepoMock, events *eventRepoMock, sessions *sessionRepoMock) *Service {
	return &Service{
		cards:    cards,
		events:   events,
		sessions: sessions,
		tx:       &txManagerMock{},
		locks:    newSessionLocks(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		srs:      testSRSConfig(),
		cfg: Config{
			DefaultQueueSize: 20,
			MaxQueueSize:     100,
			IdleTimeout:      2 * time.Hour,
		},
		now: func() time.Time { return testNow },
	}
}

func reviewCard(id uuid.UUID) *domain.Card {
	due := testNow.Add(-time.Hour)
	return &domain.Card{
		ID:              id,
		DeckTopic:       "biology",
		Front:           "front",
		Back:            "back",
		DifficultyTag:   domain.DifficultyTagMedium,
		Status:          domain.CardStatusReview,
		IntervalDays:    1,
		EaseFactor:      2.5,
		DueAt:           &due,
		RepetitionCount: 1,
	}
}

func activeSession(queue []uuid.UUID) *domain.PracticeSession {
	return &domain.PracticeSession{
		ID:           uuid.New(),
		DeckTopic:    "biology",
		Status:       domain.SessionStatusActive,
		Queue:        queue,
		Cursor:       0,
		Answered:     map[uuid.UUID]domain.ReviewGrade{},
		StartedAt:    testNow.Add(-10 * time.Minute),
		LastAnswerAt: testNow.Add(-10 * time.Minute),
	}
}

// ---------------------------------------------------------------------------
// StartSession
// ---------------------------------------------------------------------------

func TestService_StartSession_DueFirstThenNew(t *testing.T) {
	t.Parallel()

	dueCards := []*domain.Card{reviewCard(uuid.New()), reviewCard(uuid.New()), reviewCard(uuid.New())}
	newCards := []*domain.Card{
		{ID: uuid.New(), Status: domain.CardStatusNew},
		{ID: uuid.New(), Status: domain.CardStatusNew},
	}

	cards := &cardRepoMock{
		ListDueFunc: func(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error) {
			if deckTopic != "biology" {
				t.Errorf("ListDue deckTopic: got %q, want %q", deckTopic, "biology")
			}
			if limit != 5 {
				t.Errorf("ListDue limit: got %d, want 5", limit)
			}
			return dueCards, nil
		},
		ListNewFunc: func(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error) {
			if limit != 2 {
				t.Errorf("ListNew limit: got %d, want 2", limit)
			}
			return newCards, nil
		},
	}
	sessions := &sessionRepoMock{
		CreateFunc: func(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(cards, &eventRepoMock{}, sessions)

	created, err := svc.StartSession(context.Background(), StartSessionInput{
		DeckTopic:    "Biology",
		DesiredCount: 5,
	})
	if err != nil {
		t.Fatalf("StartSession: unexpected error: %v", err)
	}

	if len(created.Queue) != 5 {
		t.Fatalf("queue length: got %d, want 5 (3 due + 2 new)", len(created.Queue))
	}
	// Due cards first, in store order, then new cards.
	for i, c := range dueCards {
		if created.Queue[i] != c.ID {
			t.Errorf("Queue[%d]: got %s, want due card %s", i, created.Queue[i], c.ID)
		}
	}
	for i, c := range newCards {
		if created.Queue[3+i] != c.ID {
			t.Errorf("Queue[%d]: got %s, want new card %s", 3+i, created.Queue[3+i], c.ID)
		}
	}
	if created.Status != domain.SessionStatusActive {
		t.Errorf("Status: got %s, want %s", created.Status, domain.SessionStatusActive)
	}
}

func TestService_StartSession_ShorterQueueWhenFewCandidates(t *testing.T) {
	t.Parallel()

	only := reviewCard(uuid.New())
	cards := &cardRepoMock{
		ListDueFunc: func(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error) {
			return []*domain.Card{only}, nil
		},
		ListNewFunc: func(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error) {
			return nil, nil
		},
	}
	sessions := &sessionRepoMock{
		CreateFunc: func(ctx context.Context, session *domain.PracticeSession) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(cards, &eventRepoMock{}, sessions)

	created, err := svc.StartSession(context.Background(), StartSessionInput{DeckTopic: "biology", DesiredCount: 10})
	if err != nil {
		t.Fatalf("StartSession: unexpected error: %v", err)
	}
	if len(created.Queue) != 1 {
		t.Errorf("queue length: got %d, want 1", len(created.Queue))
	}
}

func TestService_StartSession_EmptyDeck(t *testing.T) {
	t.Parallel()

	cards := &cardRepoMock{
		ListDueFunc: func(ctx context.Context, deckTopic string, now time.Time, limit int) ([]*domain.Card, error) {
			return nil, nil
		},
		ListNewFunc: func(ctx context.Context, deckTopic string, limit int) ([]*domain.Card, error) {
			return nil, nil
		},
	}
	sessions := &sessionRepoMock{}

	svc := newTestService(cards, &eventRepoMock{}, sessions)

	_, err := svc.StartSession(context.Background(), StartSessionInput{DeckTopic: "empty", DesiredCount: 5})
	if !errors.Is(err, domain.ErrEmptyDeck) {
		t.Fatalf("error: got %v, want ErrEmptyDeck", err)
	}
	if len(sessions.CreateCalls()) != 0 {
		t.Errorf("Create calls: got %d, want 0", len(sessions.CreateCalls()))
	}
}

func TestService_StartSession_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, &sessionRepoMock{})

	_, err := svc.StartSession(context.Background(), StartSessionInput{DeckTopic: "  ", DesiredCount: 5})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank topic: got %v, want ErrValidation", err)
	}

	_, err = svc.StartSession(context.Background(), StartSessionInput{DeckTopic: "biology", DesiredCount: 500})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized count: got %v, want ErrValidation", err)
	}
}

// ---------------------------------------------------------------------------
// NextCard
// ---------------------------------------------------------------------------

func TestService_NextCard_ReturnsCursorCardWithoutAdvancing(t *testing.T) {
	t.Parallel()

	card := reviewCard(uuid.New())
	session := activeSession([]uuid.UUID{card.ID, uuid.New()})

	cards := &cardRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			if id != card.ID {
				t.Errorf("Get id: got %s, want %s", id, card.ID)
			}
			return card, nil
		},
	}
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(cards, &eventRepoMock{}, sessions)

	got, err := svc.NextCard(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("NextCard: unexpected error: %v", err)
	}
	if got.Complete {
		t.Error("Complete: got true, want false")
	}
	if got.Card == nil || got.Card.ID != card.ID {
		t.Errorf("Card: got %v, want %s", got.Card, card.ID)
	}

	// Calling again yields the same card: next never advances the cursor.
	again, err := svc.NextCard(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("NextCard[2]: unexpected error: %v", err)
	}
	if again.Card.ID != card.ID {
		t.Errorf("Card[2]: got %s, want %s", again.Card.ID, card.ID)
	}
}

func TestService_NextCard_ClosedSession(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New()})
	session.Status = domain.SessionStatusCompleted

	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	_, err := svc.NextCard(context.Background(), session.ID)
	if !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("error: got %v, want ErrSessionClosed", err)
	}
}

// ---------------------------------------------------------------------------
// Answer
// ---------------------------------------------------------------------------

func TestService_Answer_AdvancesCursorAndWritesEverything(t *testing.T) {
	t.Parallel()

	card := reviewCard(uuid.New())
	session := activeSession([]uuid.UUID{card.ID, uuid.New()})

	cards := &cardRepoMock{
		GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			return card, nil
		},
		UpdateScheduleFunc: func(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error) {
			updated := *card
			updated.Status = params.Status
			updated.IntervalDays = params.IntervalDays
			updated.EaseFactor = params.EaseFactor
			updated.DueAt = params.DueAt
			updated.RepetitionCount = params.RepetitionCount
			return &updated, nil
		},
	}
	events := &eventRepoMock{
		AppendFunc: func(ctx context.Context, ev *domain.ReviewEvent) error { return nil },
	}
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
		UpdateProgressFunc: func(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(cards, events, sessions)

	result, err := svc.Answer(context.Background(), AnswerInput{
		SessionID: session.ID,
		CardID:    card.ID,
		Grade:     domain.ReviewGradeGood,
	})
	if err != nil {
		t.Fatalf("Answer: unexpected error: %v", err)
	}

	if result.SessionCompleted {
		t.Error("SessionCompleted: got true, want false (one card left)")
	}
	// interval 1, ease 2.5 → round(2.5) = 3 days
	wantDue := testNow.Add(3 * 24 * time.Hour)
	if result.NextDue == nil || !result.NextDue.Equal(wantDue) {
		t.Errorf("NextDue: got %v, want %v", result.NextDue, wantDue)
	}

	updates := cards.UpdateScheduleCalls()
	if len(updates) != 1 {
		t.Fatalf("UpdateSchedule calls: got %d, want 1", len(updates))
	}
	if updates[0].Params.IntervalDays != 3 {
		t.Errorf("new interval: got %d, want 3", updates[0].Params.IntervalDays)
	}

	appended := events.AppendCalls()
	if len(appended) != 1 {
		t.Fatalf("Append calls: got %d, want 1", len(appended))
	}
	if appended[0].PreviousInterval != 1 || appended[0].NewInterval != 3 {
		t.Errorf("event intervals: got %d->%d, want 1->3", appended[0].PreviousInterval, appended[0].NewInterval)
	}

	progress := sessions.UpdateProgressCalls()
	if len(progress) != 1 {
		t.Fatalf("UpdateProgress calls: got %d, want 1", len(progress))
	}
	if progress[0].Cursor != 1 {
		t.Errorf("cursor: got %d, want 1", progress[0].Cursor)
	}
	if progress[0].Answered[card.ID] != domain.ReviewGradeGood {
		t.Errorf("answered grade: got %s, want GOOD", progress[0].Answered[card.ID])
	}
	if len(sessions.CompleteCalls()) != 0 {
		t.Errorf("Complete calls: got %d, want 0", len(sessions.CompleteCalls()))
	}
}

func TestService_Answer_OutOfOrderCausesNoMutation(t *testing.T) {
	t.Parallel()

	expected := uuid.New()
	session := activeSession([]uuid.UUID{expected, uuid.New()})

	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}
	cards := &cardRepoMock{}
	events := &eventRepoMock{}

	svc := newTestService(cards, events, sessions)

	_, err := svc.Answer(context.Background(), AnswerInput{
		SessionID: session.ID,
		CardID:    uuid.New(), // not the cursor card
		Grade:     domain.ReviewGradeGood,
	})
	if !errors.Is(err, domain.ErrOutOfOrder) {
		t.Fatalf("error: got %v, want ErrOutOfOrder", err)
	}

	if len(cards.UpdateScheduleCalls()) != 0 {
		t.Errorf("UpdateSchedule calls: got %d, want 0", len(cards.UpdateScheduleCalls()))
	}
	if len(events.AppendCalls()) != 0 {
		t.Errorf("Append calls: got %d, want 0", len(events.AppendCalls()))
	}
	if len(sessions.UpdateProgressCalls()) != 0 {
		t.Errorf("UpdateProgress calls: got %d, want 0", len(sessions.UpdateProgressCalls()))
	}
}

func TestService_Answer_LastCardCompletesSession(t *testing.T) {
	t.Parallel()

	card := reviewCard(uuid.New())
	session := activeSession([]uuid.UUID{card.ID})

	cards := &cardRepoMock{
		GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			return card, nil
		},
		UpdateScheduleFunc: func(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error) {
			updated := *card
			updated.IntervalDays = params.IntervalDays
			updated.DueAt = params.DueAt
			return &updated, nil
		},
	}
	events := &eventRepoMock{
		AppendFunc: func(ctx context.Context, ev *domain.ReviewEvent) error { return nil },
	}
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
		UpdateProgressFunc: func(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error) {
			return session, nil
		},
		CompleteFunc: func(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.PracticeSession, error) {
			done := *session
			done.Status = domain.SessionStatusCompleted
			done.EndedAt = &endedAt
			return &done, nil
		},
	}

	svc := newTestService(cards, events, sessions)

	result, err := svc.Answer(context.Background(), AnswerInput{
		SessionID: session.ID,
		CardID:    card.ID,
		Grade:     domain.ReviewGradeEasy,
	})
	if err != nil {
		t.Fatalf("Answer: unexpected error: %v", err)
	}
	if !result.SessionCompleted {
		t.Error("SessionCompleted: got false, want true")
	}
	if len(sessions.CompleteCalls()) != 1 {
		t.Errorf("Complete calls: got %d, want 1", len(sessions.CompleteCalls()))
	}
}

func TestService_Answer_ClosedSession(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New()})
	session.Status = domain.SessionStatusAbandoned

	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	_, err := svc.Answer(context.Background(), AnswerInput{
		SessionID: session.ID,
		CardID:    session.Queue[0],
		Grade:     domain.ReviewGradeGood,
	})
	if !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("error: got %v, want ErrSessionClosed", err)
	}
}

func TestService_Answer_BusyWhileAnotherAnswerInFlight(t *testing.T) {
	t.Parallel()

	card := reviewCard(uuid.New())
	session := activeSession([]uuid.UUID{card.ID, uuid.New()})

	inFlight := make(chan struct{})
	release := make(chan struct{})

	cards := &cardRepoMock{
		GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			close(inFlight)
			<-release
			return card, nil
		},
		UpdateScheduleFunc: func(ctx context.Context, id uuid.UUID, params domain.ScheduleParams) (*domain.Card, error) {
			updated := *card
			updated.DueAt = params.DueAt
			return &updated, nil
		},
	}
	events := &eventRepoMock{
		AppendFunc: func(ctx context.Context, ev *domain.ReviewEvent) error { return nil },
	}
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
		UpdateProgressFunc: func(ctx context.Context, id uuid.UUID, cursor int, answered map[uuid.UUID]domain.ReviewGrade, lastAnswerAt time.Time) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(cards, events, sessions)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Answer(context.Background(), AnswerInput{
			SessionID: session.ID,
			CardID:    card.ID,
			Grade:     domain.ReviewGradeGood,
		})
	}()

	<-inFlight

	_, err := svc.Answer(context.Background(), AnswerInput{
		SessionID: session.ID,
		CardID:    card.ID,
		Grade:     domain.ReviewGradeGood,
	})
	if !errors.Is(err, domain.ErrBusy) {
		t.Errorf("second answer: got %v, want ErrBusy", err)
	}

	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Errorf("first answer: unexpected error: %v", firstErr)
	}
}

// ---------------------------------------------------------------------------
// Resume + Summary
// ---------------------------------------------------------------------------

func TestService_Resume_Idempotent(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New(), uuid.New()})
	session.Cursor = 1
	session.Answered = map[uuid.UUID]domain.ReviewGrade{session.Queue[0]: domain.ReviewGradeGood}

	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	first, err := svc.Resume(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Resume[1]: unexpected error: %v", err)
	}
	second, err := svc.Resume(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Resume[2]: unexpected error: %v", err)
	}

	if first.Cursor != second.Cursor {
		t.Errorf("cursor changed between resumes: %d vs %d", first.Cursor, second.Cursor)
	}
	if len(first.Queue) != len(second.Queue) {
		t.Errorf("queue changed between resumes: %d vs %d", len(first.Queue), len(second.Queue))
	}
	if len(first.Answered) != len(second.Answered) {
		t.Errorf("answered changed between resumes: %d vs %d", len(first.Answered), len(second.Answered))
	}
}

func TestService_Summary_Completed(t *testing.T) {
	t.Parallel()

	q := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	ended := testNow
	session := &domain.PracticeSession{
		ID:        uuid.New(),
		DeckTopic: "biology",
		Status:    domain.SessionStatusCompleted,
		Queue:     q,
		Cursor:    4,
		Answered: map[uuid.UUID]domain.ReviewGrade{
			q[0]: domain.ReviewGradeGood,
			q[1]: domain.ReviewGradeEasy,
			q[2]: domain.ReviewGradeAgain,
			q[3]: domain.ReviewGradeHard,
		},
		StartedAt: testNow.Add(-90 * time.Second),
		EndedAt:   &ended,
	}

	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	summary, err := svc.Summary(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Summary: unexpected error: %v", err)
	}

	if summary.TotalAnswered != 4 {
		t.Errorf("TotalAnswered: got %d, want 4", summary.TotalAnswered)
	}
	if summary.GradeCounts.Good != 1 || summary.GradeCounts.Easy != 1 ||
		summary.GradeCounts.Again != 1 || summary.GradeCounts.Hard != 1 {
		t.Errorf("GradeCounts: got %+v, want one of each", summary.GradeCounts)
	}
	if summary.AccuracyRate != 0.5 {
		t.Errorf("AccuracyRate: got %f, want 0.5 (good+easy / total)", summary.AccuracyRate)
	}
	if summary.ElapsedSeconds != 90 {
		t.Errorf("ElapsedSeconds: got %d, want 90", summary.ElapsedSeconds)
	}
}

func TestService_Summary_ActiveNotReady(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New()})
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	_, err := svc.Summary(context.Background(), session.ID)
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("error: got %v, want ErrNotReady", err)
	}
}

// ---------------------------------------------------------------------------
// AbandonSession + SweepIdle
// ---------------------------------------------------------------------------

func TestService_AbandonSession(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New()})
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
		AbandonFunc: func(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
			return nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	if err := svc.AbandonSession(context.Background(), session.ID); err != nil {
		t.Fatalf("AbandonSession: unexpected error: %v", err)
	}
	if len(sessions.AbandonCalls()) != 1 {
		t.Errorf("Abandon calls: got %d, want 1", len(sessions.AbandonCalls()))
	}
}

func TestService_AbandonSession_AlreadyTerminal(t *testing.T) {
	t.Parallel()

	session := activeSession([]uuid.UUID{uuid.New()})
	session.Status = domain.SessionStatusCompleted
	sessions := &sessionRepoMock{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
			return session, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	err := svc.AbandonSession(context.Background(), session.ID)
	if !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("error: got %v, want ErrSessionClosed", err)
	}
}

func TestService_SweepIdle_AbandonsStaleSessions(t *testing.T) {
	t.Parallel()

	stale := activeSession([]uuid.UUID{uuid.New()})
	stale.LastAnswerAt = testNow.Add(-3 * time.Hour)

	sessions := &sessionRepoMock{
		ListIdleActiveFunc: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error) {
			wantCutoff := testNow.Add(-2 * time.Hour)
			if !cutoff.Equal(wantCutoff) {
				t.Errorf("cutoff: got %v, want %v", cutoff, wantCutoff)
			}
			return []*domain.PracticeSession{stale}, nil
		},
		AbandonFunc: func(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
			return nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	abandoned, err := svc.SweepIdle(context.Background())
	if err != nil {
		t.Fatalf("SweepIdle: unexpected error: %v", err)
	}
	if abandoned != 1 {
		t.Errorf("abandoned: got %d, want 1", abandoned)
	}
}

func TestService_SweepIdle_SkipsLockedSession(t *testing.T) {
	t.Parallel()

	stale := activeSession([]uuid.UUID{uuid.New()})
	stale.LastAnswerAt = testNow.Add(-3 * time.Hour)

	sessions := &sessionRepoMock{
		ListIdleActiveFunc: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PracticeSession, error) {
			return []*domain.PracticeSession{stale}, nil
		},
	}

	svc := newTestService(&cardRepoMock{}, &eventRepoMock{}, sessions)

	// Simulate a late-arriving answer holding the session lock.
	if !svc.locks.TryLock(stale.ID) {
		t.Fatal("TryLock failed on fresh lock")
	}
	defer svc.locks.Unlock(stale.ID)

	abandoned, err := svc.SweepIdle(context.Background())
	if err != nil {
		t.Fatalf("SweepIdle: unexpected error: %v", err)
	}
	if abandoned != 0 {
		t.Errorf("abandoned: got %d, want 0 (session locked)", abandoned)
	}
}

// ---------------------------------------------------------------------------
// DueCount
// ---------------------------------------------------------------------------

func TestService_DueCount(t *testing.T) {
	t.Parallel()

	cards := &cardRepoMock{
		CountDueFunc: func(ctx context.Context, deckTopic string, now time.Time) (int, error) {
			if deckTopic != "biology" {
				t.Errorf("deckTopic: got %q, want %q", deckTopic, "biology")
			}
			return 7, nil
		},
	}

	svc := newTestService(cards, &eventRepoMock{}, &sessionRepoMock{})

	count, err := svc.DueCount(context.Background(), "  Biology ")
	if err != nil {
		t.Fatalf("DueCount: unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("count: got %d, want 7", count)
	}
}
