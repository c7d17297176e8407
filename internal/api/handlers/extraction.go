package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ExtractionHandler struct {
	svc *service.ExtractionService
}

func NewExtractionHandler(svc *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{svc: svc}
}

type extractionRequest struct {
	Chats []domain.ChannelMessages `json:"chats"`
}

// MapStakeholders runs the stakeholder extraction pass. Clients that accept
// text/event-stream get incremental model output as SSE events; everyone
// else gets the plain JSON envelope.
func (h *ExtractionHandler) MapStakeholders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req extractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		h.mapStakeholdersSSE(w, r, id, req.Chats)
		return
	}

	result, err := h.svc.MapStakeholders(r.Context(), id, req.Chats)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result, "Stakeholders mapped successfully")
}

func (h *ExtractionHandler) mapStakeholdersSSE(w http.ResponseWriter, r *http.Request, id uuid.UUID, chats []domain.ChannelMessages) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	result, err := h.svc.MapStakeholdersStream(r.Context(), id, chats, func(delta string) {
		emit("thinking", map[string]string{"text": delta})
	})
	if err != nil {
		emit("error", map[string]string{"message": err.Error()})
	} else {
		emit("result", result)
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *ExtractionHandler) MapFacts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req extractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.MapFacts(r.Context(), id, req.Chats)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result, "Facts mapped successfully")
}

func (h *ExtractionHandler) ListStakeholders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	stakeholders, err := h.svc.ListStakeholders(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stakeholders": stakeholders,
		"count":        len(stakeholders),
	}, "Stakeholders fetched successfully")
}

func (h *ExtractionHandler) ListFacts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	filter := domain.FactFilterAll
	switch r.URL.Query().Get("active") {
	case "true":
		filter = domain.FactFilterActive
	case "false":
		filter = domain.FactFilterSuperseded
	case "", "all":
	default:
		writeError(w, http.StatusBadRequest, "invalid active filter (true, false or all)")
		return
	}

	facts, err := h.svc.ListFacts(r.Context(), id, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"facts": facts,
		"count": len(facts),
	}, "Facts fetched successfully")
}

func (h *ExtractionHandler) SearchFacts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	query := r.URL.Query().Get("query")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	results, err := h.svc.SearchFacts(r.Context(), id, query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"facts": results,
		"count": len(results),
	}, "Facts searched successfully")
}
