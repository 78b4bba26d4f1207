// internal/api/handlers/responses.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"shapehub/internal/logging"
	"shapehub/internal/services"
	"shapehub/internal/shared"
)

// ErrorResponse is a standard format for API error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a standard format for simple API messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps the well-known error classes onto status
// codes: validation problems 400, unknown ids 404, duplicates and write
// conflicts 409, unsupported uploads 415. Anything unclassified is logged
// and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, shared.ErrInvalidCategoryID),
		errors.Is(err, shared.ErrInvalidShapeID):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, shared.ErrCategoryNotFound),
		errors.Is(err, shared.ErrShapeNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrCategoryExists),
		errors.Is(err, shared.ErrCategoryNotEmpty),
		errors.Is(err, shared.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnsupported):
		respondWithError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		logging.Log.Errorf("Unhandled service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error.")
	}
}
