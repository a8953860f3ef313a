package oauthproxy

import (
	"encoding/json"
	"net/http"
	"time"

	"edugate/pkg/oautherr"
)

// Registration is a proof-of-concept stand-in for RFC 7591 dynamic client
// registration: anyone who can reach this endpoint gets a virtual client
// for the named tenant. Not for production use.

type registerRequest struct {
	Tenant        string   `json:"tenant"`
	ClientName    string   `json:"client_name"`
	RedirectURIs  []string `json:"redirect_uris"`
	GrantTypes    []string `json:"grant_types"`
	ResponseTypes []string `json:"response_types"`
	Scope         string   `json:"scope"`
}

type registerResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
	ClientName              string   `json:"client_name,omitempty"`
	RedirectURIs            []string `json:"redirect_uris,omitempty"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest, "malformed JSON body")
		return
	}
	tenant := firstTenant(
		func() string { return r.URL.Query().Get("tenant") },
		func() string { return req.Tenant },
	)
	if tenant == "" {
		oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest,
			"tenant is required: pass ?tenant= or a tenant field in the body")
		return
	}
	if _, err := h.registry.Credentials(r.Context(), tenant); err != nil {
		h.writeTenantError(w, tenant, err, "register")
		return
	}

	vc, secret, err := h.store.Register(r.Context(), tenant, req.ClientName, req.RedirectURIs)
	if err != nil {
		h.log.Errorw("virtual client registration failed", "tenant", tenant, "err", err)
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError, "registration store failure")
		return
	}
	clientRegistrations.Inc()

	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code", "refresh_token"}
	}
	responseTypes := req.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = []string{"code"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(registerResponse{
		ClientID:                vc.ClientID,
		ClientSecret:            secret,
		ClientIDIssuedAt:        vc.CreatedAt.Unix(),
		ClientName:              vc.ClientName,
		RedirectURIs:            vc.RedirectURIs,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		TokenEndpointAuthMethod: "client_secret_post",
	})
}

// ListClients is a non-production introspection endpoint. Secrets are
// derivable, not stored, and never listed.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.ListAll(r.Context())
	if err != nil {
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError, "store read failure")
		return
	}
	type clientView struct {
		ClientID     string   `json:"client_id"`
		Tenant       string   `json:"tenant"`
		CreatedAt    string   `json:"created_at"`
		ClientName   string   `json:"client_name,omitempty"`
		RedirectURIs []string `json:"redirect_uris,omitempty"`
	}
	out := struct {
		Clients []clientView `json:"clients"`
	}{Clients: []clientView{}}
	for _, vc := range all {
		out.Clients = append(out.Clients, clientView{
			ClientID:     vc.ClientID,
			Tenant:       vc.TenantID,
			CreatedAt:    vc.CreatedAt.UTC().Format(time.RFC3339),
			ClientName:   vc.ClientName,
			RedirectURIs: vc.RedirectURIs,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.ListTenants(r.Context())
	if err != nil {
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError, "tenant listing failure")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"tenants": ids})
}
