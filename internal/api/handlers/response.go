package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anvaya-ai/anvaya/internal/llm"
	"github.com/anvaya-ai/anvaya/internal/service"
)

// apiResponse is the envelope every JSON endpoint returns.
type apiResponse struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data,omitempty"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

func writeError(w http.ResponseWriter, status int, message string, errs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     errs,
	})
}

// writeServiceError maps service and oracle errors onto the envelope.
// Invalid input surfaces its message verbatim; oracle failures keep the raw
// model text in the errors array for diagnosis; everything else stays a
// generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var parseErr *llm.ParseError
	var validationErr *service.ValidationError
	var logicErr *service.LogicEngineError

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrContradictionNotFound),
		errors.Is(err, service.ErrFactNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &logicErr):
		detail := []string{logicErr.Err.Error()}
		if logicErr.Raw != "" {
			detail = append(detail, logicErr.Raw)
		}
		writeError(w, http.StatusInternalServerError, "contradiction detection failed", detail...)
	case errors.As(err, &parseErr):
		writeError(w, http.StatusInternalServerError, "model returned unparseable output", parseErr.Raw)
	case errors.As(err, &validationErr):
		writeError(w, http.StatusInternalServerError, "model output failed validation", validationErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
