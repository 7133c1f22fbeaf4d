package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"xpense/internal/insights"
	"xpense/internal/log"
	"xpense/internal/services"
	"xpense/internal/transfer"
)

const defaultOFXCategory = "Other"

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, "csv", s.deps.Transfer.ImportCSV)
}

// handleImportOFX files every statement line under ?category= (default
// Other) unless a categorizer is configured.
func (s *Server) handleImportOFX(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.URL.Query().Get("category"))
	if category == "" {
		category = defaultOFXCategory
	}
	s.handleImport(w, r, "ofx", func(ctx context.Context, rd io.Reader) (services.ImportSummary, error) {
		return s.deps.Transfer.ImportOFX(ctx, rd, category)
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, kind string,
	run func(ctx context.Context, rd io.Reader) (services.ImportSummary, error)) {
	body, err := uploadReader(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	summary, err := run(r.Context(), body)
	if errors.Is(err, services.ErrInvalidFile) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, log.OpImport, err)
		return
	}
	if summary.Imported > 0 || len(summary.NewCategories) > 0 {
		s.invalidate()
	}

	resp := map[string]any{
		"format":        kind,
		"imported":      summary.Imported,
		"errors":        summary.Errors,
		"newCategories": summary.NewCategories,
	}
	if len(summary.Errors) > 0 {
		resp["message"] = transfer.FormatValidationErrors(summary.Errors)
	}
	writeJSON(w, http.StatusOK, resp)
}

func exportName(ext string) string {
	return fmt.Sprintf("transactions-%s.%s", time.Now().Format("2006-01-02"), ext)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.deps.Transfer.ExportCSV(r.Context(), &buf); err != nil {
		serverError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName("csv")+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.deps.Transfer.ExportXLSX(r.Context(), &buf); err != nil {
		serverError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName("xlsx")+`"`)
	_, _ = w.Write(buf.Bytes())
}

// handleInsights asks the advisor for tips on the stored transactions. The
// advisor never fails; a missing key yields a canned message.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	txns, err := s.deps.Store.ListTransactions(r.Context())
	if err != nil {
		serverError(w, r, "insights", err)
		return
	}
	cfg, err := s.deps.Store.FormatConfig(r.Context())
	if err != nil {
		serverError(w, r, "insights", err)
		return
	}
	text := s.deps.Advisor.Insights(r.Context(), txns, cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":  s.deps.Advisor.Enabled(),
		"insights": text,
	})
}

func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	desc := sanitizeInput(req.Description)
	if desc == "" {
		writeError(w, r, http.StatusBadRequest, "description is required")
		return
	}
	if !s.deps.Advisor.Enabled() {
		writeError(w, r, http.StatusServiceUnavailable, insights.MsgNoAPIKey)
		return
	}

	cats, err := s.deps.Store.ListCategories(r.Context())
	if err != nil {
		serverError(w, r, "suggest category", err)
		return
	}
	cfg, err := s.deps.Store.FormatConfig(r.Context())
	if err != nil {
		serverError(w, r, "suggest category", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"category": s.deps.Advisor.SuggestCategory(r.Context(), desc, cats, cfg),
	})
}
