package oauthstate

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []State{
		{Tenant: "acme"},
		{Tenant: "acme", Original: "caller-state-123"},
		{Tenant: "acme-school", Original: "x", RedirectURI: "https://cb.example.com/done"},
		{Tenant: "t", Original: "state with spaces & symbols ?="},
	}
	for _, in := range cases {
		token := Encode(in)
		out, ok := Decode(token)
		require.True(t, ok, "decode of %q", token)
		assert.Equal(t, in, out)
	}
}

func TestEncodeIsQuerySafe(t *testing.T) {
	token := Encode(State{Tenant: "acme", Original: "a+b/c=d"})
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestEncodeDeterministic(t *testing.T) {
	s := State{Tenant: "acme", Original: "abc"}
	assert.Equal(t, Encode(s), Encode(s))
}

func TestDecodeInvalidInputs(t *testing.T) {
	invalid := []string{
		"",
		"not base64url!!",
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("not json")),
		base64.RawURLEncoding.EncodeToString([]byte(`[1,2,3]`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"state":"x"}`)), // no tenant
		base64.RawURLEncoding.EncodeToString([]byte(`{"tenant":""}`)),
		Encode(State{Tenant: "acme"})[:5], // truncated
	}
	for _, in := range invalid {
		assert.NotPanics(t, func() {
			_, ok := Decode(in)
			assert.False(t, ok, "input %q should not decode", in)
		})
	}
}

func TestDecodeArbitraryBytesNeverPanics(t *testing.T) {
	for i := 0; i < 256; i++ {
		in := string([]byte{byte(i), byte(i / 2), 0xff, byte(i)})
		assert.NotPanics(t, func() { Decode(in) })
	}
}
