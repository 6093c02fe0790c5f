package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cofrinho/cofrinho/pkg/storage"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes a JSON ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		log.Errorf("failed to encode error response: %v", encodeErr)
	}
}

// WriteJSON encodes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// WriteUploadError maps upload validation failures to client errors.
func WriteUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrUploadTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "File too large", err.Error())
	case errors.Is(err, storage.ErrNotAnImage), errors.Is(err, storage.ErrMissingFile):
		WriteError(w, http.StatusBadRequest, "Invalid file", err.Error())
	default:
		log.Errorf("failed to read upload: %v", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read upload", "")
	}
}
