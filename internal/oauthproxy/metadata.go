package oauthproxy

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// serverMetadata is the RFC 8414 authorization-server metadata shape,
// pointed at this gateway rather than the upstream: clients talk OAuth2 to
// us and we translate per tenant.
type serverMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
}

type protectedResourceMetadata struct {
	Resource             string   `json:"resource"`
	AuthorizationServers []string `json:"authorization_servers"`
	BearerMethods        []string `json:"bearer_methods_supported"`
}

func (h *Handler) ServerMetadata(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(h.cfg.PublicBaseURL, "/")
	tenant := chi.URLParam(r, "tenant")
	qualify := func(endpoint string) string {
		if tenant == "" {
			return base + endpoint
		}
		return base + endpoint + "?tenant=" + tenant
	}
	md := serverMetadata{
		Issuer:                            base,
		AuthorizationEndpoint:             qualify("/oauth2/authorize"),
		TokenEndpoint:                     qualify("/oauth2/token"),
		RegistrationEndpoint:              qualify("/oauth2/register"),
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token", "password"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post", "none"},
		CodeChallengeMethodsSupported:     []string{"S256"},
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(md)
}

func (h *Handler) ProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(h.cfg.PublicBaseURL, "/")
	tenant := chi.URLParam(r, "tenant")
	md := protectedResourceMetadata{
		Resource:             base + "/mcp/" + tenant,
		AuthorizationServers: []string{base},
		BearerMethods:        []string{"header"},
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(md)
}
