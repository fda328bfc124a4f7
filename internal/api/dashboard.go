package api

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/slot"
)

// DashboardEventsPath is where NewDashboardRouter serves the page's event
// stream when mounted at /dashboard.
const DashboardEventsPath = "/dashboard/events"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<p id="habitdash-status" hidden>Journal changed, updating…</p>
{{.Body}}
{{- if .Events}}
<script>
  (function() {
    if (!window.EventSource) return;
    var es = new EventSource({{.Events}});
    es.addEventListener("habits.updated", function() {
      document.getElementById("habitdash-status").hidden = false;
    });
    es.addEventListener("slot.updated", function(e) {
      var data = JSON.parse(e.data);
      if (data.slot === {{.Slot}}) window.location.reload();
    });
  })();
</script>
{{- end}}
</body>
</html>
`))

// NewDashboardRouter serves the dashboard page for slotID at "/" and, when
// events is non-nil, its live-reload stream at "/events". It is mounted
// outside the API auth group: browsers cannot attach a bearer token to an
// EventSource, so events must only carry slot updates.
func NewDashboardRouter(svc *habitservice.Service, board *slot.Board, slotID string, events http.Handler) chi.Router {
	r := chi.NewRouter()
	eventsURL := ""
	if events != nil {
		eventsURL = DashboardEventsPath
		r.Get("/events", events.ServeHTTP)
	}
	r.Get("/", DashboardHandler(svc, board, slotID, eventsURL))
	return r
}

// DashboardHandler renders slotID and serves its markup as a full page.
// With a non-empty eventsURL the page reloads when the slot is updated.
func DashboardHandler(svc *habitservice.Service, board *slot.Board, slotID, eventsURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Render(r.Context(), slotID)
		c, ok := board.Latest(slotID)
		if !ok {
			writeJSON(w, http.StatusBadGateway, errorBody("dashboard unavailable"))
			return
		}

		var buf bytes.Buffer
		err := pageTmpl.Execute(&buf, map[string]any{
			"Title":  svc.Page(),
			"Slot":   slotID,
			"Events": eventsURL,
			"Body":   template.HTML(c.Template), //nolint:gosec // produced by html/template
		})
		if err != nil {
			slog.Error("render dashboard page failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		writeHTML(w, c.Checksum, buf.Bytes())
	}
}
