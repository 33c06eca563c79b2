package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/learnanything/practice-backend/internal/domain"
	"github.com/learnanything/practice-backend/internal/service/ingest"
)

type deckService interface {
	DueCount(ctx context.Context, deckTopic string) (int, error)
}

type ingestService interface {
	IngestCandidates(ctx context.Context, input ingest.IngestInput) ([]*domain.Card, error)
}

// DeckHandler serves the deck REST endpoints.
type DeckHandler struct {
	decks  deckService
	ingest ingestService
	log    *slog.Logger
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(decks deckService, ing ingestService, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{decks: decks, ingest: ing, log: logger.With("handler", "decks")}
}

type dueCountResponse struct {
	DeckTopic string `json:"deckTopic"`
	DueCount  int    `json:"dueCount"`
}

type ingestCardsRequest struct {
	Candidates []candidateRequest `json:"candidates"`
}

type candidateRequest struct {
	Front         string `json:"front"`
	Back          string `json:"back"`
	DifficultyTag string `json:"difficultyTag"`
}

type ingestCardsResponse struct {
	Created int            `json:"created"`
	Cards   []cardResponse `json:"cards"`
}

// DueCount handles GET /v1/decks/{topic}/due-count.
func (h *DeckHandler) DueCount(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")

	count, err := h.decks.DueCount(r.Context(), topic)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dueCountResponse{
		DeckTopic: domain.NormalizeDeckTopic(topic),
		DueCount:  count,
	})
}

// IngestCards handles POST /v1/decks/{topic}/cards.
func (h *DeckHandler) IngestCards(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")

	var req ingestCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidates := make([]ingest.Candidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, ingest.Candidate{
			Front:         c.Front,
			Back:          c.Back,
			DifficultyTag: c.DifficultyTag,
		})
	}

	created, err := h.ingest.IngestCandidates(r.Context(), ingest.IngestInput{
		DeckTopic:  topic,
		Candidates: candidates,
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := ingestCardsResponse{Created: len(created)}
	for _, card := range created {
		resp.Cards = append(resp.Cards, toCardResponse(card))
	}
	writeJSON(w, http.StatusCreated, resp)
}
