package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ResolutionHandler struct {
	svc *service.ResolutionService
}

func NewResolutionHandler(svc *service.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{svc: svc}
}

// Resolve accepts either a single decision object or an array of them.
func (h *ResolutionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decisions, err := decodeDecisions(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolutions, err := h.svc.Resolve(r.Context(), id, decisions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resolutions": resolutions,
		"count":       len(resolutions),
	}, "Contradictions resolved successfully")
}

func decodeDecisions(body []byte) ([]domain.ResolutionDecision, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var decisions []domain.ResolutionDecision
		if err := json.Unmarshal(trimmed, &decisions); err != nil {
			return nil, err
		}
		return decisions, nil
	}

	var single domain.ResolutionDecision
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []domain.ResolutionDecision{single}, nil
}

func (h *ResolutionHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	resolutions, err := h.svc.ListResolutions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resolutions": resolutions,
		"count":       len(resolutions),
	}, "Resolutions fetched successfully")
}
