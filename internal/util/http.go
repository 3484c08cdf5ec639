package util

import (
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/folio/internal/config"
)

// ErrorBody is the JSON error envelope. Post is set when a mutation took
// effect in memory but could not be persisted.
type ErrorBody struct {
	Error string `json:"error"`
	Post  any    `json:"post,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, ErrorBody{Error: err.Error()})
}

func WriteHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HETag, ContentHash(html))
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}
