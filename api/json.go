package api

import (
	"encoding/json"
	"net/http"
)

// maxAuthBodySize bounds request bodies on authentication endpoints.
const maxAuthBodySize = 16 << 10

// decodeJSON decodes a size-limited JSON body into T, writing a 400 response
// and returning ok=false on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxSize int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}
