package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondRequestError answers JSON clients with RespondError and everyone else with a plain-text error.
func RespondRequestError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message string) {
	if WantsJSON(r) {
		RespondError(w, logger, status, message)
		return
	}
	http.Error(w, message, status)
}

// RespondHTML writes an HTML body produced by render. Render errors become a 500.
func RespondHTML(w http.ResponseWriter, logger *slog.Logger, status int, render func(b *strings.Builder) error) {
	var b strings.Builder
	if err := render(&b); err != nil {
		logger.Error("Error rendering HTML", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.String()))
}

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// ParseIntID extracts a non-negative integer id from the request path. Returns the ID and a boolean indicating success.
func ParseIntID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int, bool) {
	pathValueID := chi.URLParam(r, "id")
	id, err := strconv.Atoi(pathValueID)
	if err != nil || id < 0 {
		RespondRequestError(w, r, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return 0, false
	}
	return id, true
}
