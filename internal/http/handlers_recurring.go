package http

import (
	"errors"
	"net/http"
	"strings"

	"xpense/internal/core"
	"xpense/internal/services"
	"xpense/internal/storage"
)

// toPatch validates the wire fields present in req.
func (req recurringRequest) toPatch() (services.RecurringPatch, error) {
	var p services.RecurringPatch
	if req.Amount != nil {
		d, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &d
	}
	if req.Category != nil {
		v := sanitizeInput(*req.Category)
		p.Category = &v
	}
	if req.Description != nil {
		v := sanitizeInput(*req.Description)
		p.Description = &v
	}
	if req.Note != nil {
		v := sanitizeInput(*req.Note)
		p.Note = &v
	}
	if req.Frequency != nil {
		f := core.Frequency(strings.ToLower(strings.TrimSpace(*req.Frequency)))
		p.Frequency = &f
	}
	if req.NextRun != nil {
		t, err := parseDate(*req.NextRun)
		if err != nil {
			return p, core.ErrInvalidDate
		}
		p.NextRun = &t
	}
	p.AnchorDay = req.AnchorDay
	p.IsActive = req.IsActive
	return p, nil
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Recurring.List(r.Context())
	if err != nil {
		serverError(w, r, "list recurring", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringViews(items))
}

// handleAddRecurring creates a template. nextRun defaults to now and
// isActive to true.
func (s *Server) handleAddRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := req.toPatch()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	re := core.RecurringExpense{NextRun: s.deps.Budget.Clock().Now(), IsActive: true}
	if p.Amount != nil {
		re.Amount = *p.Amount
	}
	if p.Category != nil {
		re.Category = *p.Category
	}
	if p.Description != nil {
		re.Description = *p.Description
	}
	if p.Note != nil {
		re.Note = *p.Note
	}
	if p.Frequency != nil {
		re.Frequency = *p.Frequency
	}
	if p.NextRun != nil {
		re.NextRun = *p.NextRun
	}
	if p.AnchorDay != nil {
		re.AnchorDay = *p.AnchorDay
	}
	if p.IsActive != nil {
		re.IsActive = *p.IsActive
	}

	saved, err := s.deps.Recurring.Add(r.Context(), re)
	if isValidationError(err) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "add recurring", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringView(saved))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := req.toPatch()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.deps.Recurring.Update(r.Context(), id, p)
	s.writeRecurring(w, r, "update recurring", saved, err)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	err = s.deps.Recurring.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "recurring expense not found")
		return
	}
	if err != nil {
		serverError(w, r, "delete recurring", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSkipRecurring drops the next occurrence without creating a transaction.
func (s *Server) handleSkipRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.deps.Recurring.Skip(r.Context(), id)
	s.writeRecurring(w, r, "skip recurring", saved, err)
}

func (s *Server) writeRecurring(w http.ResponseWriter, r *http.Request, op string, re core.RecurringExpense, err error) {
	switch {
	case isValidationError(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "recurring expense not found")
	case err != nil:
		serverError(w, r, op, err)
	default:
		writeJSON(w, http.StatusOK, toRecurringView(re))
	}
}
