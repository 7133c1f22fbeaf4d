package http

import (
	"errors"
	"net/http"
	"strings"

	"xpense/internal/core"
	"xpense/internal/log"
	"xpense/internal/storage"
)

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrDescriptionLong) ||
		errors.Is(err, core.ErrInvalidFrequency) ||
		errors.Is(err, core.ErrInvalidAnchorDay)
}

// toTransaction validates the wire fields. Amounts are magnitudes; the sign
// comes from isExpense, which defaults to true.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	isExpense := true
	if req.IsExpense != nil {
		isExpense = *req.IsExpense
	}
	return core.Transaction{
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Note:        sanitizeInput(req.Note),
		Date:        date,
		IsExpense:   isExpense,
	}, nil
}

// handleListTransactions lists every transaction, or the matches of ?q=.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txns []core.Transaction
		err  error
	)
	if q := sanitizeInput(r.URL.Query().Get("q")); q != "" {
		txns, err = s.deps.Store.SearchTransactions(r.Context(), q)
	} else {
		txns, err = s.deps.Store.ListTransactions(r.Context())
	}
	if err != nil {
		serverError(w, r, "list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionViews(txns))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.deps.Store.GetTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		serverError(w, r, "get transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.deps.Transactions.Create(r.Context(), t)
	if isValidationError(err) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	s.invalidate()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithOperation(log.OpCreate).
			WithTransaction(saved.ID, saved.Amount, saved.Category).ToSlice()...)
	writeJSON(w, http.StatusCreated, toTransactionView(saved))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = id

	saved, err := s.deps.Transactions.Update(r.Context(), t)
	switch {
	case isValidationError(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "transaction not found")
		return
	case err != nil:
		serverError(w, r, log.OpUpdate, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, toTransactionView(saved))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	err = s.deps.Transactions.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		serverError(w, r, log.OpDelete, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// handleClearTransactions deletes everything. It requires ?confirm=yes.
func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.URL.Query().Get("confirm"), "yes") {
		writeError(w, r, http.StatusBadRequest, "add ?confirm=yes to delete all transactions")
		return
	}
	n, err := s.deps.Transactions.Clear(r.Context())
	if err != nil {
		serverError(w, r, "clear transactions", err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
