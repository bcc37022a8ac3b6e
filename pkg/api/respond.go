package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/orbitsandbox/orbit-agent/pkg/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeNotFound(w http.ResponseWriter) {
	writeErrorMessage(w, http.StatusNotFound, "not found")
}

// writeServiceError maps an error returned by pkg/services to the
// spec's taxonomy: a *services.ValidationError becomes 400, anything
// else is an operation failure and becomes 500 with the error text.
func writeServiceError(w http.ResponseWriter, err error) {
	if ve, ok := err.(*services.ValidationError); ok {
		writeErrorMessage(w, http.StatusBadRequest, ve.Message)
		return
	}
	writeErrorMessage(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON decodes the request body into v. A missing or empty body
// is not an error — handlers with all-optional fields rely on v
// keeping its zero value in that case.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
