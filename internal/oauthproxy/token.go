package oauthproxy

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"edugate/pkg/oautherr"
	"edugate/pkg/oauthstate"
)

const defaultPasswordScope = "openid profile"

// Token exchanges a grant against the tenant's upstream token endpoint and
// relays the upstream status and body verbatim, whether success or an
// upstream-reported OAuth error. Only locally-detected problems produce
// gateway-shaped errors.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest, "malformed form body")
		return
	}
	grantType := r.PostForm.Get("grant_type")

	var tenant string
	switch grantType {
	case "authorization_code":
		tenant = firstTenant(
			func() string { return r.PostForm.Get("tenant") },
			func() string { return r.URL.Query().Get("tenant") },
			func() string {
				st, ok := oauthstate.Decode(r.PostForm.Get("state"))
				if !ok {
					return ""
				}
				return st.Tenant
			},
		)
		if tenant == "" {
			tokenExchanges.WithLabelValues(grantType, "invalid_request").Inc()
			oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest,
				"unable to determine tenant: pass tenant= in the body or query, or use the state issued by this gateway")
			return
		}
	case "refresh_token", "password":
		tenant = firstTenant(
			func() string { return r.PostForm.Get("tenant") },
			func() string { return r.URL.Query().Get("tenant") },
		)
		if tenant == "" {
			tokenExchanges.WithLabelValues(grantType, "invalid_request").Inc()
			oautherr.Write(w, http.StatusBadRequest, oautherr.InvalidRequest,
				"tenant is required for grant_type "+grantType)
			return
		}
	default:
		tokenExchanges.WithLabelValues(grantType, "unsupported_grant_type").Inc()
		oautherr.Write(w, http.StatusBadRequest, oautherr.UnsupportedGrantType,
			"grant_type "+grantType+" is not supported by this gateway")
		return
	}

	resolved, err := h.resolver.Resolve(r.Context(), r.PostForm.Get("client_id"), tenant)
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "tenant_error").Inc()
		h.writeTenantError(w, tenant, err, "token")
		return
	}
	// The resolver's tenant is authoritative from here on; a virtual client
	// may have redirected the request to its owning tenant.
	tc, err := h.registry.Config(r.Context(), resolved.TenantID)
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "tenant_error").Inc()
		h.writeTenantError(w, resolved.TenantID, err, "token")
		return
	}
	endpoints, err := h.registry.OAuthEndpoints(r.Context(), resolved.TenantID)
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "tenant_error").Inc()
		h.writeTenantError(w, resolved.TenantID, err, "token")
		return
	}

	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("client_id", resolved.ClientID)
	form.Set("client_secret", resolved.ClientSecret)
	switch grantType {
	case "authorization_code":
		if code := r.PostForm.Get("code"); code != "" {
			form.Set("code", code)
		}
		// Same override policy as the authorize leg: the registered
		// redirect must match or the upstream rejects the code.
		switch {
		case tc.Credentials.RedirectURI != "":
			form.Set("redirect_uri", tc.Credentials.RedirectURI)
		case r.PostForm.Get("redirect_uri") != "":
			form.Set("redirect_uri", r.PostForm.Get("redirect_uri"))
		}
		if verifier := r.PostForm.Get("code_verifier"); verifier != "" {
			form.Set("code_verifier", verifier)
		}
	case "refresh_token":
		form.Set("refresh_token", r.PostForm.Get("refresh_token"))
		if scope := r.PostForm.Get("scope"); scope != "" {
			form.Set("scope", scope)
		}
	case "password":
		form.Set("username", r.PostForm.Get("username"))
		form.Set("password", r.PostForm.Get("password"))
		if scope, present := r.PostForm["scope"]; present {
			if len(scope) > 0 && scope[0] != "" {
				form.Set("scope", scope[0])
			} else {
				form.Set("scope", defaultPasswordScope)
			}
		}
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, endpoints.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "server_error").Inc()
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError, "could not build upstream request")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.upstream.Do(req)
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "upstream_unreachable").Inc()
		h.log.Errorw("upstream token call failed", "tenant", resolved.TenantID, "err", err)
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError,
			"upstream token endpoint unreachable")
		return
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tokenExchanges.WithLabelValues(grantType, "upstream_unreachable").Inc()
		oautherr.Write(w, http.StatusInternalServerError, oautherr.ServerError,
			"failed reading upstream response")
		return
	}

	outcome := "relayed_ok"
	if resp.StatusCode >= 400 {
		outcome = "relayed_error"
	}
	tokenExchanges.WithLabelValues(grantType, outcome).Inc()
	h.log.Infow("token exchange", "tenant", resolved.TenantID, "grant_type", grantType, "upstream_status", resp.StatusCode)

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}
