package server

import (
	"encoding/json"
	"net/http"

	"github.com/pineunity/apmec-horizon/internal/reconciler"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("HTTP", "Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// outcomeStatus maps a poll outcome onto an HTTP status code.
func outcomeStatus(o reconciler.Outcome) int {
	switch o {
	case reconciler.OutcomeOK, reconciler.OutcomeStale:
		return http.StatusOK
	case reconciler.OutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
