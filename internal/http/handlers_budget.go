package http

import (
	"net/http"
	"strings"

	"xpense/internal/core"
)

// handleBudgetSummary returns the current month budget summary.
func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context())
	if err != nil {
		serverError(w, r, "budget summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(report))
}

// handleCompare returns the current month against the previous one.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r.Context())
	if err != nil {
		serverError(w, r, "compare months", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentPeriod":  report.Period.Label(),
		"previousPeriod": report.Period.Previous().Label(),
		"comparison":     toComparisonView(report.Comparison),
	})
}

// handleAtRisk lists budgeted categories at or above ?level= (default
// warning), most severe first, capped by ?limit=.
func (s *Server) handleAtRisk(w http.ResponseWriter, r *http.Request) {
	level := core.WarningWarning
	if v := strings.TrimSpace(r.URL.Query().Get("level")); v != "" {
		level = core.WarningLevel(strings.ToLower(v))
		switch level {
		case core.WarningNone, core.WarningWarning, core.WarningCritical, core.WarningExceeded:
		default:
			writeError(w, r, http.StatusBadRequest, "level must be one of none, warning, critical, exceeded")
			return
		}
	}

	report, err := s.report(r.Context())
	if err != nil {
		serverError(w, r, "budget at risk", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryBudgetViews(report.Summary.AtRisk(level, queryInt(r, "limit", 0))))
}

// handleDashboard returns the overview statistics of every transaction.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.deps.Budget.Dashboard(r.Context())
	if err != nil {
		serverError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardView(dash))
}
