package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/http/response"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads the body into v, rejecting unknown trailing data. It
// writes the 400 itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			response.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", response.CodeTooLarge)
		case errors.Is(err, io.EOF):
			response.BadRequest(w, "request body is empty")
		default:
			response.BadRequest(w, "invalid json")
		}
		return false
	}
	return true
}

// pathID parses the named URL parameter as a positive int64.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}
