package oauthproxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doGet(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerMetadata(t *testing.T) {
	h := newTestHandler(newMemStore())
	rec := doGet(t, h, "/.well-known/oauth-authorization-server")

	require.Equal(t, http.StatusOK, rec.Code)
	var md serverMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "https://gw.example.com", md.Issuer)
	assert.Equal(t, "https://gw.example.com/oauth2/authorize", md.AuthorizationEndpoint)
	assert.Equal(t, "https://gw.example.com/oauth2/token", md.TokenEndpoint)
	assert.ElementsMatch(t, []string{"authorization_code", "refresh_token", "password"}, md.GrantTypesSupported)
	assert.Contains(t, md.CodeChallengeMethodsSupported, "S256")
}

func TestServerMetadataTenantQualified(t *testing.T) {
	h := newTestHandler(newMemStore())
	rec := doGet(t, h, "/.well-known/oauth-authorization-server/mcp/acme")

	require.Equal(t, http.StatusOK, rec.Code)
	var md serverMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "https://gw.example.com/oauth2/authorize?tenant=acme", md.AuthorizationEndpoint)
	assert.Equal(t, "https://gw.example.com/oauth2/token?tenant=acme", md.TokenEndpoint)
}

func TestProtectedResourceMetadata(t *testing.T) {
	h := newTestHandler(newMemStore())
	rec := doGet(t, h, "/.well-known/oauth-protected-resource/mcp/acme")

	require.Equal(t, http.StatusOK, rec.Code)
	var md protectedResourceMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "https://gw.example.com/mcp/acme", md.Resource)
	assert.Equal(t, []string{"https://gw.example.com"}, md.AuthorizationServers)
}
