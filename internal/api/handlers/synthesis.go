package handlers

import (
	"net/http"

	"github.com/anvaya-ai/anvaya/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SynthesisHandler struct {
	svc *service.SynthesisService
}

func NewSynthesisHandler(svc *service.SynthesisService) *SynthesisHandler {
	return &SynthesisHandler{svc: svc}
}

func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.svc.Synthesize(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project, "Document synthesized successfully")
}
