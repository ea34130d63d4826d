package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the `{"error": ...}` body used by most failing routes
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the `{"message": ...}` body used for auth failures,
// conflicts and a few confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// Messages shared by several handlers
const (
	MsgUnauthorized = "Unauthorized"
	MsgForbidden    = "Forbidden"
)

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends `{"error": message}` with the given status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondMessage sends `{"message": message}` with the given status code.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, MessageResponse{Message: message}, statusCode)
}

// RespondUnauthorized sends the 401 body shared by the auth middleware and login.
func RespondUnauthorized(w http.ResponseWriter) {
	RespondMessage(w, MsgUnauthorized, http.StatusUnauthorized)
}
