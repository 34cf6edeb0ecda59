package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes the generic {message} error shape. Internal detail never
// goes through here; callers log it and pass a generic message instead.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}

// WriteValidationErrors writes the {message, errors} field-map shape used by
// all 400 responses.
func WriteValidationErrors(w http.ResponseWriter, message string, errors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": message,
		"errors":  errors,
	})
}
