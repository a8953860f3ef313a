// Package oauthproxy fronts the per-tenant upstream OAuth2 servers with a
// single authorize/token surface. It never validates tokens and never keeps
// per-request state: tenant identity rides through the upstream redirect
// inside the state parameter, and credential resolution substitutes real
// upstream credentials for anything the caller supplied.
package oauthproxy

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"edugate/internal/vclients"
	"edugate/pkg/config"
	"edugate/pkg/tenants"
)

type Handler struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	registry *tenants.Registry
	store    vclients.Store
	resolver *Resolver
	upstream *http.Client
}

func NewHandler(cfg config.Config, log *zap.SugaredLogger, registry *tenants.Registry, store vclients.Store) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log,
		registry: registry,
		store:    store,
		resolver: NewResolver(registry, store, log),
		upstream: &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/oauth2/authorize", h.Authorize)
	r.Post("/oauth2/token", h.Token)
	r.Post("/oauth2/register", h.Register)
	r.Get("/oauth2/clients", h.ListClients)
	r.Get("/tenants", h.ListTenants)
	r.Get("/.well-known/oauth-authorization-server", h.ServerMetadata)
	r.Get("/.well-known/oauth-authorization-server/mcp/{tenant}", h.ServerMetadata)
	r.Get("/.well-known/oauth-protected-resource/mcp/{tenant}", h.ProtectedResourceMetadata)
}

// tenantFromResource pulls the tenant out of an MCP resource URL, whose
// path carries it as the segment after /mcp/. Returns "" when the URL does
// not match that shape.
func tenantFromResource(resource string) string {
	if resource == "" {
		return ""
	}
	u, err := url.Parse(resource)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segs {
		if s == "mcp" && i+1 < len(segs) && segs[i+1] != "" {
			return segs[i+1]
		}
	}
	return ""
}

// firstTenant walks the ordered tenant sources and returns the first
// non-empty value. The precedence list is the policy; keep it visible at
// call sites rather than buried in conditionals.
func firstTenant(sources ...func() string) string {
	for _, src := range sources {
		if t := src(); t != "" {
			return t
		}
	}
	return ""
}
