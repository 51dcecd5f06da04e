package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"awareness-game/internal/attempt"
	"awareness-game/internal/content"
	"awareness-game/internal/identity"
	"awareness-game/internal/progress"
	"awareness-game/internal/store"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid JSON body")

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Database not configured"})
	case errors.Is(err, identity.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Email already registered"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid credentials"})
	case errors.Is(err, identity.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid or expired session"})
	case errors.Is(err, attempt.ErrNoContent):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "No questions available for this category"})
	case errors.Is(err, content.ErrInvalidQuestion), errors.Is(err, identity.ErrInvalidInput):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	case errors.Is(err, progress.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "progress was updated concurrently, please retry"})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "request failed"})
	}
}

// decodeJSON reads a single JSON object from the request body. Unknown
// fields are ignored.
func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		return errInvalidBody
	}
	return nil
}

func writeInvalidBody(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

// truncate keeps the first limit characters of s.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
