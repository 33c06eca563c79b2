package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnanything/practice-backend/internal/domain"
)

type dashboardService interface {
	GetDashboard(ctx context.Context) (domain.Dashboard, error)
}

// DashboardHandler serves GET /v1/dashboard.
type DashboardHandler struct {
	svc dashboardService
	log *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(svc dashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, log: logger.With("handler", "dashboard")}
}

type dashboardResponse struct {
	DueByDeck         []deckDueResponse       `json:"dueByDeck"`
	RollingAccuracy   float64                 `json:"rollingAccuracy"`
	RollingWindowSize int                     `json:"rollingWindowSize"`
	Streak            int                     `json:"streak"`
	LapseRates        []lapseRateResponse     `json:"lapseRates"`
	CardsStudied      int                     `json:"cardsStudied"`
	SessionsCompleted int                     `json:"sessionsCompleted"`
	RecentSessions    []recentSessionResponse `json:"recentSessions"`
}

type deckDueResponse struct {
	DeckTopic string `json:"deckTopic"`
	Count     int    `json:"count"`
}

type lapseRateResponse struct {
	DifficultyTag string  `json:"difficultyTag"`
	Reviews       int     `json:"reviews"`
	Lapses        int     `json:"lapses"`
	LapseRate     float64 `json:"lapseRate"`
}

type recentSessionResponse struct {
	SessionID     string    `json:"sessionId"`
	DeckTopic     string    `json:"deckTopic"`
	CompletedAt   time.Time `json:"completedAt"`
	CardsAnswered int       `json:"cardsAnswered"`
	AccuracyRate  float64   `json:"accuracyRate"`
}

// Get handles GET /v1/dashboard. An optional deck_topic query parameter
// narrows the due counts and recent sessions to one deck; the global
// rollups are unaffected.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	topic := domain.NormalizeDeckTopic(r.URL.Query().Get("deck_topic"))

	resp := dashboardResponse{
		DueByDeck:         []deckDueResponse{},
		RollingAccuracy:   dashboard.RollingAccuracy,
		RollingWindowSize: dashboard.RollingWindowSize,
		Streak:            dashboard.Streak,
		LapseRates:        []lapseRateResponse{},
		CardsStudied:      dashboard.CardsStudied,
		SessionsCompleted: dashboard.SessionsCompleted,
		RecentSessions:    []recentSessionResponse{},
	}

	for _, due := range dashboard.DueByDeck {
		if topic != "" && due.DeckTopic != topic {
			continue
		}
		resp.DueByDeck = append(resp.DueByDeck, deckDueResponse{
			DeckTopic: due.DeckTopic,
			Count:     due.Count,
		})
	}
	for _, rate := range dashboard.LapseRates {
		resp.LapseRates = append(resp.LapseRates, lapseRateResponse{
			DifficultyTag: rate.Tag.String(),
			Reviews:       rate.Reviews,
			Lapses:        rate.Lapses,
			LapseRate:     rate.LapseRate,
		})
	}
	for _, sess := range dashboard.RecentSessions {
		if topic != "" && sess.DeckTopic != topic {
			continue
		}
		resp.RecentSessions = append(resp.RecentSessions, recentSessionResponse{
			SessionID:     sess.SessionID.String(),
			DeckTopic:     sess.DeckTopic,
			CompletedAt:   sess.CompletedAt,
			CardsAnswered: sess.CardsAnswered,
			AccuracyRate:  sess.AccuracyRate,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
