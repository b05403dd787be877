package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"krishimitra/rotation"
)

// writeJSON sends {success: true, ...payload}.
func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	send(w, status, body)
}

// writeError sends {success: false, error, details?}.
func writeError(w http.ResponseWriter, status int, msg, details string) {
	body := map[string]any{"success": false, "error": msg}
	if details != "" {
		body["details"] = details
	}
	send(w, status, body)
}

// send encodes body before writing the status, so an unencodable value
// becomes a 500 envelope instead of an empty response.
func send(w http.ResponseWriter, status int, body map[string]any) {
	b, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode response: %v", err)
		status = http.StatusInternalServerError
		b = []byte(`{"success":false,"error":"Failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// writeServiceError maps rotation errors to status codes. notFound is the
// message used for ErrNotFound; other failures get fallback.
func writeServiceError(w http.ResponseWriter, err error, notFound, fallback string) {
	var verr *rotation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg, strings.Join(verr.Fields, "; "))
	case errors.Is(err, rotation.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound, "")
	case errors.Is(err, rotation.ErrDuplicateField):
		writeError(w, http.StatusConflict, "field already registered", "")
	case errors.Is(err, rotation.ErrConflict):
		writeError(w, http.StatusConflict, "record was modified by another request, retry", "")
	default:
		log.Printf("%s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, fallback, "")
	}
}
