package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds folder request bodies; they carry a name and a few ids.
const maxBodyBytes = 64 << 10

// ParseJSON decodes the request body into dest. Unknown fields are rejected.
// An empty body is an error unless allowEmpty is set.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return parseJSON(w, r, dest, false)
}

// ParseOptionalJSON is ParseJSON for endpoints whose body may be omitted.
func ParseOptionalJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return parseJSON(w, r, dest, true)
}

func parseJSON(w http.ResponseWriter, r *http.Request, dest interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
