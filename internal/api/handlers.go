package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/habitdash/internal/apperr"
	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/slot"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *habitservice.Service
	board *slot.Board
}

// NewHandler creates a new Handler.
func NewHandler(svc *habitservice.Service, board *slot.Board) *Handler {
	return &Handler{svc: svc, board: board}
}

// urlParam returns a path parameter, unescaping names such as "Morning%20Run".
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func rangeQuery(r *http.Request) RangeQuery {
	q := r.URL.Query()
	return RangeQuery{Start: q.Get("start"), End: q.Get("end")}
}

// writeServiceError maps domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrHost):
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("host unavailable"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListHabits handles GET /api/habits.
//
//	@Summary		Habit statistics, most frequent first
//	@Tags			habits
//	@Produce		json
//	@Param			start	query		string	false	"First journal day (YYYY-MM-DD)"
//	@Param			end		query		string	false	"Last journal day (YYYY-MM-DD)"
//	@Success		200		{object}	HabitsResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits [get]
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r).Range()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	stats, err := h.svc.Stats(r.Context(), rng)
	if err != nil {
		writeServiceError(w, "list habits", err)
		return
	}
	writeJSON(w, http.StatusOK, HabitsResponse{Habits: stats})
}

// GetHabit handles GET /api/habits/{name}.
//
//	@Summary		Statistics of one habit by exact name
//	@Tags			habits
//	@Produce		json
//	@Param			name	path		string	true	"Habit name"
//	@Param			start	query		string	false	"First journal day (YYYY-MM-DD)"
//	@Param			end		query		string	false	"Last journal day (YYYY-MM-DD)"
//	@Success		200		{object}	HabitStats
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits/{name} [get]
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	rng, err := rangeQuery(r).Range()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	stats, err := h.svc.Habit(r.Context(), name, rng)
	if err != nil {
		writeServiceError(w, "get habit", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Render handles POST /api/render/{slot}.
//
//	@Summary		Render the dashboard into a slot
//	@Tags			slots
//	@Produce		json
//	@Param			slot	path		string	true	"Slot id"
//	@Success		202		{object}	RenderResponse
//	@Security		BearerAuth
//	@Router			/render/{slot} [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "slot")
	if strings.TrimSpace(id) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slot is required"))
		return
	}
	h.svc.Render(r.Context(), id)
	writeJSON(w, http.StatusAccepted, RenderResponse{Slot: id, Key: h.svc.Key(id)})
}

// ListSlots handles GET /api/slots.
//
//	@Summary		Slots holding dashboard markup
//	@Tags			slots
//	@Produce		json
//	@Success		200	{object}	SlotsResponse
//	@Security		BearerAuth
//	@Router			/slots [get]
func (h *Handler) ListSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SlotsResponse{Slots: h.board.Slots()})
}

// GetSlot handles GET /api/slots/{slot}. The ETag is the markup checksum.
//
//	@Summary		Latest markup of a slot
//	@Tags			slots
//	@Produce		html
//	@Param			slot	path	string	true	"Slot id"
//	@Success		200		"HTML fragment"
//	@Success		304		"Not modified"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/slots/{slot} [get]
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	c, ok := h.board.Latest(urlParam(r, "slot"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if r.Header.Get("If-None-Match") == etag(c.Checksum) {
		w.Header().Set("ETag", etag(c.Checksum))
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeHTML(w, c.Checksum, []byte(c.Template))
}
