// Package shared holds the JSON envelope helpers every handler uses.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "vitrine/pkg/domain-errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Keeping
// it here ensures every handler returns the same shape.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error": string(code),
	})
}
