package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pickpath/internal/apperr"
)

// errorBody is the error envelope for every endpoint.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeErr maps err to a status with apperr and hides internal details
// behind fallback.
func writeErr(w http.ResponseWriter, err error, fallback string) {
	writeError(w, apperr.HTTPStatus(err), apperr.Message(err, fallback))
}

// decodeJSON reads one JSON document from the (size-limited) body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return &apperr.Error{Sentinel: apperr.ErrTooLarge, Msg: "Request body too large"}
		case errors.Is(err, io.EOF):
			return apperr.Validation("Request body is empty")
		default:
			return apperr.Validation("Invalid JSON body")
		}
	}
	return nil
}
