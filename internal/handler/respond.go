package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Stable client-facing error messages. Internal detail (driver errors,
// query text) never crosses this boundary.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgDuplicateEmail     = "Email already exists"
	msgTokenRequired      = "Access token required"
	msgInvalidToken       = "Invalid token"
	msgAdminRequired      = "Admin access required"
	msgUserNotFound       = "User not found"
	msgTaskNotFound       = "Task not found"
	msgSelfDelete         = "Cannot delete your own account"
	msgServerError        = "Server error"
	msgInvalidBody        = "Invalid request body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON enforces the body size cap set upstream and rejects
// malformed payloads uniformly.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// NotFound is the JSON fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found")
}
