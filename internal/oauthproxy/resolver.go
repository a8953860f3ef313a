package oauthproxy

import (
	"context"

	"go.uber.org/zap"

	"edugate/internal/vclients"
	"edugate/pkg/tenants"
)

// ResolvedCredentials is the single real credential pair a proxy presents
// upstream. Computed fresh per request; never the caller's own values.
type ResolvedCredentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string // authoritative tenant after virtual-client rewrite
}

// Resolver decides whose credentials a request really runs under. Virtual
// clients exist so callers without a real upstream registration can drive
// the flow; the resolver makes that transparent to both proxies.
type Resolver struct {
	registry *tenants.Registry
	store    vclients.Store
	log      *zap.SugaredLogger
}

func NewResolver(registry *tenants.Registry, store vclients.Store, log *zap.SugaredLogger) *Resolver {
	return &Resolver{registry: registry, store: store, log: log}
}

// Resolve maps an optional caller-supplied client id plus a tenant to real
// upstream credentials.
//
// A known virtual client id makes its owning tenant authoritative,
// overriding the caller-supplied tenant. An unknown client id is ignored:
// the tenant's real client id always wins over whatever the caller sent.
// Returns tenants.ErrNotConfigured when the effective tenant has no
// credentials, including the drift case of a virtual client pointing at a
// tenant that is no longer configured.
func (r *Resolver) Resolve(ctx context.Context, suppliedClientID, tenantID string) (ResolvedCredentials, error) {
	effective := tenantID
	if suppliedClientID != "" {
		vc, err := r.store.Lookup(ctx, suppliedClientID)
		if err != nil {
			// Store trouble must not take the flow down; fall back to the
			// caller-supplied tenant as if the client were unknown.
			r.log.Warnw("virtual client lookup failed", "client_id", suppliedClientID, "err", err)
		} else if vc != nil {
			effective = vc.TenantID
			r.log.Debugw("virtual client resolved", "client_id", suppliedClientID, "tenant", effective)
		}
	}
	creds, err := r.registry.Credentials(ctx, effective)
	if err != nil {
		return ResolvedCredentials{}, err
	}
	return ResolvedCredentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TenantID:     effective,
	}, nil
}
