package http

import (
	"net/http"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := core.Category{}
	if req.Name != nil {
		c.Name = sanitizeInput(*req.Name)
	}
	if req.Icon != nil {
		c.Icon = sanitizeInput(*req.Icon)
	}
	if req.BudgetLimit != nil {
		c.BudgetLimit = *req.BudgetLimit
	}

	created, err := s.ledger.CreateCategory(r.Context(), ownerID(r), c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	c, err := s.ledger.GetCategory(r.Context(), ownerID(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := storage.CategoryPatch{
		Icon:        req.Icon,
		BudgetLimit: req.BudgetLimit,
	}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}

	updated, err := s.ledger.UpdateCategory(r.Context(), ownerID(r), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), ownerID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID(r))
	w.WriteHeader(http.StatusNoContent)
}
