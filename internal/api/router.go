package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/slot"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *habitservice.Service, board *slot.Board, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, board)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Statistics.
	r.Get("/habits", h.ListHabits)
	r.Get("/habits/{name}", h.GetHabit)

	// Slots.
	r.Post("/render/{slot}", h.Render)
	r.Get("/slots", h.ListSlots)
	r.Get("/slots/{slot}", h.GetSlot)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
