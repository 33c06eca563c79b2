package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/learnanything/practice-backend/internal/domain"
	"github.com/learnanything/practice-backend/internal/service/practice"
)

// practiceService defines the minimal interface needed by SessionHandler.
type practiceService interface {
	StartSession(ctx context.Context, input practice.StartSessionInput) (*domain.PracticeSession, error)
	NextCard(ctx context.Context, sessionID uuid.UUID) (*practice.NextCardResult, error)
	Answer(ctx context.Context, input practice.AnswerInput) (*practice.AnswerResult, error)
	Resume(ctx context.Context, sessionID uuid.UUID) (*domain.PracticeSession, error)
	Summary(ctx context.Context, sessionID uuid.UUID) (*domain.SessionSummary, error)
	AbandonSession(ctx context.Context, sessionID uuid.UUID) error
}

// SessionHandler serves the practice session REST endpoints.
type SessionHandler struct {
	svc practiceService
	log *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc practiceService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.With("handler", "sessions")}
}

type startSessionRequest struct {
	DeckTopic    string `json:"deckTopic"`
	DesiredCount int    `json:"desiredCount"`
}

type sessionResponse struct {
	ID          string            `json:"id"`
	DeckTopic   string            `json:"deckTopic"`
	Status      string            `json:"status"`
	Queue       []string          `json:"queue"`
	QueueLength int               `json:"queueLength"`
	Cursor      int               `json:"cursor"`
	Answered    map[string]string `json:"answered"`
	StartedAt   time.Time         `json:"startedAt"`
	EndedAt     *time.Time        `json:"endedAt,omitempty"`
}

type cardResponse struct {
	ID            string     `json:"id"`
	DeckTopic     string     `json:"deckTopic"`
	Front         string     `json:"front"`
	Back          string     `json:"back"`
	DifficultyTag string     `json:"difficultyTag"`
	Status        string     `json:"status"`
	IntervalDays  int        `json:"intervalDays"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
}

type nextCardResponse struct {
	Card            *cardResponse `json:"card,omitempty"`
	SessionComplete bool          `json:"sessionComplete"`
}

type answerRequest struct {
	CardID string `json:"cardId"`
	Grade  string `json:"grade"`
}

type answerResponse struct {
	Accepted         bool       `json:"accepted"`
	NextDue          *time.Time `json:"nextDue,omitempty"`
	SessionCompleted bool       `json:"sessionCompleted"`
}

type summaryResponse struct {
	SessionID      string         `json:"sessionId"`
	DeckTopic      string         `json:"deckTopic"`
	GradeCounts    map[string]int `json:"gradeCounts"`
	TotalAnswered  int            `json:"totalAnswered"`
	AccuracyRate   float64        `json:"accuracyRate"`
	ElapsedSeconds int64          `json:"elapsedSeconds"`
}

// Start handles POST /v1/sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.svc.StartSession(r.Context(), practice.StartSessionInput{
		DeckTopic:    req.DeckTopic,
		DesiredCount: req.DesiredCount,
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Next handles GET /v1/sessions/{id}/next.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.NextCard(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := nextCardResponse{SessionComplete: result.Complete}
	if result.Card != nil {
		card := toCardResponse(result.Card)
		resp.Card = &card
	}
	writeJSON(w, http.StatusOK, resp)
}

// Answer handles POST /v1/sessions/{id}/answers.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	result, err := h.svc.Answer(r.Context(), practice.AnswerInput{
		SessionID: id,
		CardID:    cardID,
		Grade:     domain.ReviewGrade(req.Grade),
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Accepted:         true,
		NextDue:          result.NextDue,
		SessionCompleted: result.SessionCompleted,
	})
}

// Resume handles GET /v1/sessions/{id}.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Resume(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Summary handles GET /v1/sessions/{id}/summary.
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		SessionID: summary.SessionID.String(),
		DeckTopic: summary.DeckTopic,
		GradeCounts: map[string]int{
			"again": summary.GradeCounts.Again,
			"hard":  summary.GradeCounts.Hard,
			"good":  summary.GradeCounts.Good,
			"easy":  summary.GradeCounts.Easy,
		},
		TotalAnswered:  summary.TotalAnswered,
		AccuracyRate:   summary.AccuracyRate,
		ElapsedSeconds: summary.ElapsedSeconds,
	})
}

// Abandon handles POST /v1/sessions/{id}/abandon.
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	if err := h.svc.AbandonSession(r.Context(), id); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func toSessionResponse(s *domain.PracticeSession) sessionResponse {
	queue := make([]string, 0, len(s.Queue))
	for _, cardID := range s.Queue {
		queue = append(queue, cardID.String())
	}
	answered := make(map[string]string, len(s.Answered))
	for cardID, grade := range s.Answered {
		answered[cardID.String()] = grade.String()
	}
	return sessionResponse{
		ID:          s.ID.String(),
		DeckTopic:   s.DeckTopic,
		Status:      s.Status.String(),
		Queue:       queue,
		QueueLength: len(s.Queue),
		Cursor:      s.Cursor,
		Answered:    answered,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
	}
}

func toCardResponse(c *domain.Card) cardResponse {
	return cardResponse{
		ID:            c.ID.String(),
		DeckTopic:     c.DeckTopic,
		Front:         c.Front,
		Back:          c.Back,
		DifficultyTag: c.DifficultyTag.String(),
		Status:        c.Status.String(),
		IntervalDays:  c.IntervalDays,
		DueAt:         c.DueAt,
	}
}
