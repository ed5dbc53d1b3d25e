// Package handler contains the HTTP endpoint implementations. Handlers
// declare the narrow service interfaces they need locally so the package does
// not depend on concrete service types.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/volspike/volspike/internal/domain"
)

// maxAlertLimit caps the alert read path regardless of the requested limit.
const maxAlertLimit = 200

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes the request body into v, rejecting unknown top-level
// garbage with a decode error the caller turns into a 400.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// parseAlertListOpts extracts the alert read-path query parameters.
// Defaults: limit=50, capped at maxAlertLimit.
func parseAlertListOpts(r *http.Request) domain.AlertListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxAlertLimit {
		limit = maxAlertLimit
	}

	return domain.AlertListOpts{
		Limit:     limit,
		Symbol:    q.Get("symbol"),
		Direction: domain.AlertDirection(q.Get("direction")),
	}
}
