package http

import (
	"net/http"

	"financas/internal/view"
)

const activityLimit = 50

type activityPage struct {
	Enabled bool
	Table   view.Table
}

// handleActivityPage lists the latest mutations from the journal, failed
// ones included.
func (s *Server) handleActivityPage(w http.ResponseWriter, r *http.Request) {
	content := activityPage{}
	if s.mutations != nil && s.mutations.Enabled() {
		content.Enabled = true
		entries, err := s.mutations.Recent(r.Context(), activityLimit)
		if err != nil {
			logFetchError(r, "Journal read failed", err)
			content.Table = view.ErrorTable(view.ActivityColumns(), err)
		} else {
			content.Table = view.NewTable(entries, view.ActivityColumns())
		}
	}
	s.writePage(w, r, http.StatusOK, "activity.html", page{
		Title:   "Atividade",
		Active:  "activity",
		Content: content,
	})
}
