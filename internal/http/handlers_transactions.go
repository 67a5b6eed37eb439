package http

import (
	"net/http"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := core.Transaction{}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Concept != nil {
		tx.Concept = sanitizeInput(*req.Concept)
	}
	if req.Date != nil {
		date, ok := parseDate(*req.Date)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD or RFC 3339")
			return
		}
		tx.Date = date
	}
	if req.Type != nil {
		typ, ok := transactionTypeFromString(*req.Type)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "invalid type, expected INCOME or EXPENSE")
			return
		}
		tx.Type = typ
	}
	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}

	created, err := s.ledger.CreateTransaction(r.Context(), ownerID(r), tx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := s.ledger.GetTransaction(r.Context(), ownerID(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// handleListTransactions lists the owner's movements newest first. With
// year/month query parameters the listing covers that calendar month only.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var window core.Window
	if hasWindowParams(r) {
		year, month, ok := parseYearMonth(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid year or month")
			return
		}
		window = core.MonthWindow(year, month)
	}

	txs, err := s.ledger.ListTransactions(r.Context(), ownerID(r), window)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := storage.TransactionPatch{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
	}
	if req.Concept != nil {
		concept := sanitizeInput(*req.Concept)
		patch.Concept = &concept
	}
	if req.Date != nil {
		date, ok := parseDate(*req.Date)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD or RFC 3339")
			return
		}
		patch.Date = &date
	}
	if req.Type != nil {
		typ, ok := transactionTypeFromString(*req.Type)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "invalid type, expected INCOME or EXPENSE")
			return
		}
		patch.Type = &typ
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), ownerID(r), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), ownerID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	w.WriteHeader(http.StatusNoContent)
}
