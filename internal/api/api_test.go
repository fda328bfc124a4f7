package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/slot"
	"github.com/starford/habitdash/internal/testutil"
)

var journalFiles = map[string]string{
	"journals/2024_03_14.md": "- #habit Exercise 7:00 AM\n- #habit Morning Run\n",
	"journals/2024_03_15.md": "- #habit Exercise\n",
	"journals/2024_02_01.md": "- #habit Exercise 18:30\n",
}

// testEnv sets up a temp graph, service, board and router for testing.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*habitservice.Service, http.Handler) {
	t.Helper()
	svc, _, router := testEnvFull(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*habitservice.Service, *slot.Board, http.Handler) {
	t.Helper()
	_, g := testutil.TestGraph(t, journalFiles)
	board := slot.NewBoard(nil, testutil.Logger())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	svc := habitservice.NewService(g, board, testutil.Logger(),
		habitservice.WithClock(func() time.Time { return now }))
	return svc, board, NewRouter(svc, board, authEnabled, authToken, sseHandler)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListHabits(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/habits")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp HabitsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Habits) != 2 {
		t.Fatalf("habits = %+v", resp.Habits)
	}
	ex := resp.Habits[0]
	if ex.Name != "Exercise" || ex.TotalCount != 3 {
		t.Errorf("first habit = %+v", ex)
	}
	if ex.Entries[0].Date != "2024-02-01" || ex.Entries[0].Time != "18:30" {
		t.Errorf("first entry = %+v", ex.Entries[0])
	}
	if !strings.Contains(w.Body.String(), `"totalCount":3`) || !strings.Contains(w.Body.String(), `"blockUuid":"`) {
		t.Errorf("wire names missing in %s", w.Body.String())
	}
}

func TestListHabits_Range(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/habits?start=2024-03-01&end=2024-03-14")
	var resp HabitsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Habits) != 2 || resp.Habits[0].TotalCount != 1 || resp.Habits[1].TotalCount != 1 {
		t.Errorf("ranged habits = %+v", resp.Habits)
	}
}

func TestListHabits_InvalidRange(t *testing.T) {
	_, router := testEnv(t, "")

	for _, q := range []string{"?start=03/01/2024", "?end=2024-13-01", "?start=2024-03-10&end=2024-03-01"} {
		if w := get(t, router, "/habits"+q); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestGetHabit(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/habits/Morning%20Run")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var h HabitStats
	_ = json.Unmarshal(w.Body.Bytes(), &h)
	if h.Name != "Morning Run" || h.TotalCount != 1 {
		t.Errorf("habit = %+v", h)
	}
}

func TestGetHabit_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	if w := get(t, router, "/habits/Swimming"); w.Code != http.StatusNotFound {
		t.Errorf("missing habit = %d, want 404", w.Code)
	}
}

func TestRenderAndGetSlot(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/render/main", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("render status = %d", w.Code)
	}
	var rr RenderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rr)
	if rr.Slot != "main" || rr.Key != "habit-tracker-main" {
		t.Errorf("render response = %+v", rr)
	}

	w = get(t, router, "/slots/main")
	if w.Code != http.StatusOK {
		t.Fatalf("slot status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Morning Run") {
		t.Error("slot markup missing habit")
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req = httptest.NewRequest(http.MethodGet, "/slots/main", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}

	w = get(t, router, "/slots")
	var sr SlotsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sr)
	if len(sr.Slots) != 1 || sr.Slots[0] != "main" {
		t.Errorf("slots = %+v", sr)
	}
}

func TestGetSlot_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	if w := get(t, router, "/slots/nope"); w.Code != http.StatusNotFound {
		t.Errorf("missing slot = %d, want 404", w.Code)
	}
}

func TestDashboardHandler(t *testing.T) {
	svc, board, _ := testEnvFull(t, false, "", nil)
	h := DashboardHandler(svc, board, "main", DashboardEventsPath)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "<title>Habits</title>", "March 2024", "Exercise", `data.slot === "main"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "&lt;div") {
		t.Error("dashboard markup was escaped twice")
	}
	if !strings.Contains(body, "EventSource(") || !strings.Contains(body, "/dashboard/events") {
		t.Error("page does not subscribe to the dashboard event stream")
	}
}

func TestDashboardHandler_NoEvents(t *testing.T) {
	svc, board, _ := testEnvFull(t, false, "", nil)

	w := httptest.NewRecorder()
	DashboardHandler(svc, board, "main", "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "EventSource") {
		t.Error("page without an event stream should not open one")
	}
}

// TestDashboardEvents_TokenMode mounts the API and the dashboard the way the
// server does and checks the page's event stream needs no bearer token while
// the API stream still does.
func TestDashboardEvents_TokenMode(t *testing.T) {
	svc, board, apiRouter := testEnvFull(t, true, "secret", sseStub())
	root := chi.NewRouter()
	root.Mount("/api", apiRouter)
	root.Mount("/dashboard", NewDashboardRouter(svc, board, "main", sseStub()))

	page := get(t, root, "/dashboard")
	if page.Code != http.StatusOK {
		t.Fatalf("dashboard = %d, want 200", page.Code)
	}
	if !strings.Contains(page.Body.String(), DashboardEventsPath) {
		t.Fatalf("page does not reference %s", DashboardEventsPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, DashboardEventsPath, nil).WithContext(ctx)
	w := httptest.NewRecorder()
	root.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("dashboard events without token = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	if w := get(t, root, "/api/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("api events without token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/habits", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := get(t, router, "/habits"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/render/main", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := get(t, router, "/slots"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, _, router := testEnvFull(t, true, "secret", sseStub())

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, _, router := testEnvFull(t, true, "tok", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// sseStub writes headers and blocks until the request context is done.
func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}
