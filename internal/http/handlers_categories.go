package http

import (
	"errors"
	"net/http"

	"xpense/internal/core"
	"xpense/internal/format"
	"xpense/internal/storage"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Store.ListCategories(r.Context())
	if err != nil {
		serverError(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryViews(cats))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c := core.Category{
		Name:        sanitizeInput(req.Name),
		Color:       sanitizeInput(req.Color),
		Description: sanitizeInput(req.Description),
	}
	if c.Name == "" {
		writeError(w, r, http.StatusBadRequest, core.ErrEmptyCategory.Error())
		return
	}
	if req.MonthlyBudget != nil {
		b, err := core.ParseBudget(*req.MonthlyBudget)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		c.MonthlyBudget = b
	}

	saved, err := s.deps.Store.AddCategory(r.Context(), c)
	if errors.Is(err, storage.ErrDuplicateCategory) {
		writeError(w, r, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		serverError(w, r, "add category", err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, toCategoryViews([]core.Category{saved})[0])
}

// handleRenameCategory renames {name} to the body's name. Transactions
// filed under the old name follow the rename.
func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	newName := sanitizeInput(req.Name)
	if newName == "" {
		writeError(w, r, http.StatusBadRequest, core.ErrEmptyCategory.Error())
		return
	}

	err := s.deps.Store.RenameCategory(r.Context(), r.PathValue("name"), newName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "category not found")
		return
	case errors.Is(err, storage.ErrDuplicateCategory):
		writeError(w, r, http.StatusConflict, "category already exists")
		return
	case err != nil:
		serverError(w, r, "rename category", err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCategoryBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := core.ParseBudget(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = s.deps.Store.SetCategoryBudget(r.Context(), r.PathValue("name"), b)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		serverError(w, r, "set category budget", err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Store.DeleteCategory(r.Context(), r.PathValue("name"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete category", err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGlobalBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Store.GlobalBudget(r.Context())
	if err != nil {
		serverError(w, r, "get global budget", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"amount": b})
}

// handleSetGlobalBudget stores the override; an empty or "none" amount clears it.
func (s *Server) handleSetGlobalBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := core.ParseBudget(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Store.SetGlobalBudget(r.Context(), b); err != nil {
		serverError(w, r, "set global budget", err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"amount": b})
}

func (s *Server) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Store.FormatConfig(r.Context())
	if err != nil {
		serverError(w, r, "get format", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"format":      toFormatView(cfg),
		"currencies":  format.Currencies(),
		"dateFormats": format.DateFormats(),
	})
}

func (s *Server) handleSetFormat(w http.ResponseWriter, r *http.Request) {
	var req formatView
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	cfg := format.Config{Currency: req.Currency, DateFormat: req.DateFormat}
	if err := cfg.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Store.SetFormatConfig(r.Context(), cfg); err != nil {
		serverError(w, r, "set format", err)
		return
	}
	writeJSON(w, http.StatusOK, toFormatView(cfg))
}
