package handlers

import (
	"net/http"

	"github.com/anvaya-ai/anvaya/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ConflictHandler struct {
	svc *service.ConflictService
}

func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{svc: svc}
}

func (h *ConflictHandler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	result, err := h.svc.FindContradictions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result, "Contradictions detected successfully")
}

func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	contradictions, err := h.svc.ListContradictions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contradictions": contradictions,
		"count":          len(contradictions),
	}, "Contradictions fetched successfully")
}
