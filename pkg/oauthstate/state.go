// Package oauthstate round-trips tenant identity through the upstream
// authorization redirect inside the OAuth2 state parameter. The encoded
// value travels through a third party and comes back on the token request,
// so Decode treats its input as fully attacker-controlled.
package oauthstate

import (
	"encoding/base64"
	"encoding/json"
)

// State is the payload smuggled through the upstream round trip.
type State struct {
	Tenant      string `json:"tenant"`
	Original    string `json:"state,omitempty"`    // caller's own state value
	RedirectURI string `json:"redirect,omitempty"` // optional override
}

// Encode serializes the state to a query-safe base64url token (no padding).
// Deterministic: no randomness, no timestamps.
func Encode(s State) string {
	raw, _ := json.Marshal(s)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode is the exact inverse of Encode for valid inputs. Any structural
// failure (bad alphabet, truncation, non-JSON payload, missing tenant)
// yields ok=false. It never panics and never returns an error to bubble up:
// the absence result is the error contract.
func Decode(token string) (State, bool) {
	if token == "" {
		return State{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return State{}, false
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, false
	}
	if s.Tenant == "" {
		return State{}, false
	}
	return s, true
}
