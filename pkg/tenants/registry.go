package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured signals that a tenant has no complete credential pair.
// Absence of configuration is a normal outcome, not a fault; callers map it
// to a client-facing 404.
var ErrNotConfigured = errors.New("tenant not configured")

// ErrBadTenantID signals a tenant id that cannot form a hostname label.
var ErrBadTenantID = errors.New("invalid tenant id")

// CredentialSource yields upstream credentials per tenant. Implementations
// must return ErrNotConfigured when either credential component is absent,
// never a partial record.
type CredentialSource interface {
	Credentials(ctx context.Context, tenantID string) (Credentials, error)
	List(ctx context.Context) ([]string, error)
}

// Registry resolves tenant ids to upstream configuration. Base URLs are
// always derived from the tenant id and the configured LMS domain, never
// stored per tenant.
type Registry struct {
	src        CredentialSource
	baseDomain string
	log        *zap.SugaredLogger
}

func NewRegistry(src CredentialSource, baseDomain string, log *zap.SugaredLogger) *Registry {
	return &Registry{src: src, baseDomain: baseDomain, log: log}
}

func (r *Registry) Credentials(ctx context.Context, tenantID string) (Credentials, error) {
	c, err := r.src.Credentials(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			r.log.Debugw("tenant not configured", "tenant", tenantID)
		}
		return Credentials{}, err
	}
	return c, nil
}

// BaseURL derives https://{tenant}.{domain}. The tenant id must be usable
// as a hostname label.
func (r *Registry) BaseURL(tenantID string) (string, error) {
	if !validLabel(tenantID) {
		return "", fmt.Errorf("%w: %q", ErrBadTenantID, tenantID)
	}
	return "https://" + strings.ToLower(tenantID) + "." + r.baseDomain, nil
}

func (r *Registry) Config(ctx context.Context, tenantID string) (TenantConfig, error) {
	creds, err := r.Credentials(ctx, tenantID)
	if err != nil {
		return TenantConfig{}, err
	}
	base, err := r.BaseURL(tenantID)
	if err != nil {
		return TenantConfig{}, err
	}
	return TenantConfig{TenantID: tenantID, BaseURL: base, Credentials: creds}, nil
}

func (r *Registry) OAuthEndpoints(ctx context.Context, tenantID string) (Endpoints, error) {
	if _, err := r.Credentials(ctx, tenantID); err != nil {
		return Endpoints{}, err
	}
	base, err := r.BaseURL(tenantID)
	if err != nil {
		return Endpoints{}, err
	}
	return Endpoints{
		AuthorizationURL: base + "/oauth2/authorize",
		TokenURL:         base + "/oauth2/token",
	}, nil
}

func (r *Registry) APIBaseURL(ctx context.Context, tenantID string) (string, error) {
	if _, err := r.Credentials(ctx, tenantID); err != nil {
		return "", err
	}
	base, err := r.BaseURL(tenantID)
	if err != nil {
		return "", err
	}
	return base + "/api/v1", nil
}

// ListTenants returns the ids of all tenants with a complete credential
// pair, in the canonical lowercase-hyphen form. Order is not significant.
func (r *Registry) ListTenants(ctx context.Context) ([]string, error) {
	return r.src.List(ctx)
}

func validLabel(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return true
}
