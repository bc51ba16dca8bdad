package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newMeta() *APIMeta {
	return &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func respond(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Success: true, Data: data, Meta: newMeta()})
}

// respondList is respond with meta.total set.
func respondList(w http.ResponseWriter, data any, total int) {
	meta := newMeta()
	meta.Total = total
	write(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    newMeta(),
	})
}

// respondNotFound writes a 404 for resource id.
func respondNotFound(w http.ResponseWriter, resource, id string) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", errors.NewNotFound(resource, id).Error())
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Warn("response_encode_failed", "error", err.Error())
	}
}
