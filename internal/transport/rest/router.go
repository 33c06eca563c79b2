package rest

import "net/http"

// Handlers groups the REST handlers wired into the router.
type Handlers struct {
	Sessions  *SessionHandler
	Decks     *DeckHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
}

// NewRouter builds the HTTP route table.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/sessions", h.Sessions.Start)
	mux.HandleFunc("GET /v1/sessions/{id}", h.Sessions.Resume)
	mux.HandleFunc("GET /v1/sessions/{id}/next", h.Sessions.Next)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.Sessions.Answer)
	mux.HandleFunc("POST /v1/sessions/{id}/abandon", h.Sessions.Abandon)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", h.Sessions.Summary)

	mux.HandleFunc("GET /v1/decks/{topic}/due-count", h.Decks.DueCount)
	mux.HandleFunc("POST /v1/decks/{topic}/cards", h.Decks.IngestCards)

	mux.HandleFunc("GET /v1/dashboard", h.Dashboard.Get)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /live", h.Health.Live)

	return mux
}
