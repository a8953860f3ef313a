// pkg/middleware/tenant.go
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxTenantKey struct{}
type ctxBearerKey struct{}

// WithTenantID stores the tenant id for downstream handlers.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxTenantKey{}, tenantID)
}

func TenantIDFrom(ctx context.Context) string {
	if v := ctx.Value(ctxTenantKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// WithBearer stores the caller's bearer token. The gateway never validates
// it; it is relayed to the upstream LMS, which is the only party that can.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxBearerKey{}, token)
}

func BearerFrom(ctx context.Context) string {
	if v := ctx.Value(ctxBearerKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// BearerFromRequest extracts the raw token from an Authorization header,
// or "" when absent or not a bearer scheme.
func BearerFromRequest(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}
