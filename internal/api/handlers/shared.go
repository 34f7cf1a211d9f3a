package handlers

import (
	"encoding/json"
	"net/http"
)

// parseJSON decodes the request body into T, rejecting unknown fields so a
// misspelled optional key fails loudly instead of silently doing nothing.
func parseJSON[T any](r *http.Request) (T, error) {
	var payload T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}
