package http

import (
	"net/http"

	"financas/internal/view"
)

func (s *Server) loadDashboard(r *http.Request) view.Dashboard {
	d, err := s.dashboard(r.Context())
	if err != nil {
		logFetchError(r, "Dashboard fetch failed", err)
		return view.ErrorDashboard(err)
	}
	return view.NewDashboard(d)
}

// handleDashboardPage renders the dashboard page: summary cards and the
// spend by category chart.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, http.StatusOK, "dashboard.html", page{
		Title:   "Dashboard",
		Active:  "dashboard",
		Content: s.loadDashboard(r),
	})
}

// handleDashboardPartial re-renders the cards and chart after a mutation.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	s.writeFragment(w, r, "dashboard_panel", s.loadDashboard(r))
}
