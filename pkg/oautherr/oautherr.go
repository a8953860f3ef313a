// pkg/oautherr/oautherr.go
package oautherr

import (
	"encoding/json"
	"net/http"
)

// OAuth2 error codes this gateway emits locally. Upstream error bodies are
// relayed verbatim and never pass through here.
const (
	InvalidRequest       = "invalid_request"
	UnsupportedGrantType = "unsupported_grant_type"
	ServerError          = "server_error"
)

type Body struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Write emits an OAuth2-shaped error body with the given HTTP status.
func Write(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: code, ErrorDescription: description})
}
