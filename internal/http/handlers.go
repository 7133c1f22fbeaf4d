package http

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"xpense/internal/core"
	"xpense/internal/format"
	"xpense/internal/services"
)

// handleHealth performs the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"security":  s.metrics.snapshot(),
	})
}

// handleReady reports whether templates are loaded and the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"templates": "ok", "database": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if err := s.deps.Store.Ping(ctx); err != nil {
		checks["database"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// dashboardPage is the data behind templates/dashboard.html.
type dashboardPage struct {
	Format    format.Config
	Report    services.BudgetReport
	Dashboard services.Dashboard
	AtRisk    []core.CategoryBudgetStatus
	Insights  bool
	Generated time.Time
}

var templateFuncs = template.FuncMap{
	"percent": format.Percent,
	"ago":     humanize.Time,
	"tierColor": func(w core.WarningLevel) string {
		return w.Color()
	},
	"money": func(cfg format.Config, d decimal.Decimal) string {
		return cfg.Amount(d)
	},
	"date": func(cfg format.Config, t time.Time) string {
		return cfg.Date(t)
	},
	"barWidth": func(pct float64) float64 {
		switch {
		case pct < 0:
			return 0
		case pct > 100:
			return 100
		}
		return pct
	},
}

// handleIndex renders the server-side dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	report, err := s.report(r.Context())
	if err != nil {
		serverError(w, r, "dashboard", err)
		return
	}
	dash, err := s.deps.Budget.Dashboard(r.Context())
	if err != nil {
		serverError(w, r, "dashboard", err)
		return
	}

	page := dashboardPage{
		Format:    dash.Format,
		Report:    report,
		Dashboard: dash,
		AtRisk:    report.Summary.AtRisk(core.WarningWarning, 5),
		Insights:  s.deps.Advisor.Enabled(),
		Generated: time.Now(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", page); err != nil {
		serverError(w, r, "render dashboard", err)
	}
}
