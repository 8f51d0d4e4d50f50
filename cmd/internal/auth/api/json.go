package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// errorResponse is the body of every non-2xx answer: {"error":{"code","message"}}.
// code is stable for clients; message is for humans.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var (
	errEmptyBody    = errors.New("empty body")
	errBodyTooLarge = errors.New("body too large")
	errTrailingData = errors.New("trailing data after JSON object")
)

// writeJSON answers with v. Auth responses carry identities and tokens, so
// none of them may be cached.
func writeJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	var body errorResponse
	body.Error.Code, body.Error.Message = code, msg
	writeJSON(w, status, body)
}

// decodeJSON reads exactly one JSON object of at most maxBytes into dst,
// rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errEmptyBody
		default:
			return fmt.Errorf("decode: %w", err)
		}
	}
	if dec.More() {
		return errTrailingData
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
