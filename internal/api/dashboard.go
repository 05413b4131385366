package api

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
)

//go:embed templates/dashboard.html.tmpl
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

// dashboardData feeds the embedded dashboard template. DetailJSON carries the
// full record set for the detail modal; it is rendered from our own snapshot
// with encoding/json, which escapes the characters that could terminate the
// surrounding script tag.
type dashboardData struct {
	Count      int
	Degraded   bool
	Reason     string
	Characters []character.Record
	DetailJSON template.JS
}

// dashboard renders the character card grid with a search box and a detail
// modal. The page is built in memory first so template failures surface as a
// clean 500 instead of a torn response.
func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Current()
	records := snap.Records()
	if records == nil {
		records = []character.Record{}
	}

	detail, err := json.Marshal(records)
	if err != nil {
		s.logger.Error("dashboard payload encoding failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Count:      snap.Count(),
		Degraded:   snap.Degraded(),
		Reason:     snap.Reason(),
		Characters: records,
		DetailJSON: template.JS(detail),
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("dashboard render failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("dashboard write failed", zap.Error(err))
	}
}
