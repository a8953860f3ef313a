package oauthproxy

import (
	"errors"
	"net/http"
	"net/url"

	"edugate/pkg/oautherr"
	"edugate/pkg/oauthstate"
	"edugate/pkg/tenants"
)

// Query parameters consumed by the proxy itself. Everything else the caller
// sends is forwarded to the upstream authorize URL unchanged.
var authorizeConsumed = map[string]bool{
	"tenant":       true,
	"resource":     true,
	"state":        true,
	"client_id":    true,
	"redirect_uri": true,
}

// Authorize rewrites the caller's authorization request into the tenant's
// upstream authorize URL and redirects. No upstream call happens here; the
// whole exchange is URL surgery plus a 302.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tenant := firstTenant(
		func() string { return q.Get("tenant") },
		func() string { return tenantFromResource(q.Get("resource")) },
	)
	if tenant == "" {
		authorizeRedirects.WithLabelValues("invalid_request").Inc()
		oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest,
			"unable to determine tenant: pass ?tenant= or a resource URL containing /mcp/{tenant}")
		return
	}

	tc, err := h.registry.Config(r.Context(), tenant)
	if err != nil {
		h.writeTenantError(w, tenant, err, "authorize")
		return
	}
	endpoints, err := h.registry.OAuthEndpoints(r.Context(), tenant)
	if err != nil {
		h.writeTenantError(w, tenant, err, "authorize")
		return
	}

	// The caller's own state survives the round trip inside ours.
	encoded := oauthstate.Encode(oauthstate.State{Tenant: tenant, Original: q.Get("state")})

	u, err := url.Parse(endpoints.AuthorizationURL)
	if err != nil {
		authorizeRedirects.WithLabelValues("server_error").Inc()
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError,
			"could not derive authorization endpoint for tenant "+tenant)
		return
	}
	vals := u.Query()
	for key, vv := range q {
		if authorizeConsumed[key] || len(vv) == 0 || vv[0] == "" {
			continue
		}
		vals.Set(key, vv[0])
	}
	// Real upstream client id, always; the caller's is never forwarded.
	vals.Set("client_id", tc.Credentials.ClientID)
	switch {
	case tc.Credentials.RedirectURI != "":
		// Must match what was registered upstream.
		vals.Set("redirect_uri", tc.Credentials.RedirectURI)
	case q.Get("redirect_uri") != "":
		vals.Set("redirect_uri", q.Get("redirect_uri"))
	}
	vals.Set("state", encoded)
	u.RawQuery = vals.Encode()

	authorizeRedirects.WithLabelValues("redirect").Inc()
	h.log.Infow("authorize redirect", "tenant", tenant, "upstream", u.Host)
	http.Redirect(w, r, u.String(), http.StatusFound)
}

func (h *Handler) writeTenantError(w http.ResponseWriter, tenant string, err error, op string) {
	if errors.Is(err, tenants.ErrNotConfigured) {
		if op == "authorize" {
			authorizeRedirects.WithLabelValues("not_configured").Inc()
		}
		oautherr.Write(w, http.StatusNotFound, oautherr.InvalidRequest,
			"tenant "+tenant+" is not configured")
		return
	}
	h.log.Errorw("tenant resolution failed", "tenant", tenant, "op", op, "err", err)
	if op == "authorize" {
		authorizeRedirects.WithLabelValues("server_error").Inc()
	}
	oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError,
		"could not derive endpoints for tenant "+tenant)
}
