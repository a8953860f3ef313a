package tenants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edugate/pkg/config"
)

func testRegistry() *Registry {
	src := NewEnvSource(map[string]config.TenantCreds{
		"ACME": {
			ClientID:     "real-id",
			ClientSecret: "real-secret",
		},
		"BETA_SCHOOL": {
			ClientID:     "beta-id",
			ClientSecret: "beta-secret",
			RedirectURI:  "https://gw.example.com/callback",
		},
		"PARTIAL": {
			ClientID: "only-id",
		},
	})
	return NewRegistry(src, "lms.example", zap.NewNop().Sugar())
}

func TestCredentials(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	c, err := r.Credentials(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "real-id", c.ClientID)
	assert.Equal(t, "real-secret", c.ClientSecret)

	// normalization: separators and case fold to the same key
	c2, err := r.Credentials(ctx, "beta_school")
	require.NoError(t, err)
	assert.Equal(t, "beta-id", c2.ClientID)
	c3, err := r.Credentials(ctx, "Beta-School")
	require.NoError(t, err)
	assert.Equal(t, c2, c3)
}

func TestCredentialsNotConfigured(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	_, err := r.Credentials(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotConfigured)

	// a partial record is not a configured tenant
	_, err = r.Credentials(ctx, "partial")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConfigDerivesBaseURL(t *testing.T) {
	r := testRegistry()
	tc, err := r.Config(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.lms.example", tc.BaseURL)
	assert.Equal(t, "acme", tc.TenantID)
	assert.Equal(t, "real-id", tc.Credentials.ClientID)
}

func TestOAuthEndpoints(t *testing.T) {
	r := testRegistry()
	ep, err := r.OAuthEndpoints(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.lms.example/oauth2/authorize", ep.AuthorizationURL)
	assert.Equal(t, "https://acme.lms.example/oauth2/token", ep.TokenURL)

	_, err = r.OAuthEndpoints(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAPIBaseURL(t *testing.T) {
	r := testRegistry()
	base, err := r.APIBaseURL(context.Background(), "beta-school")
	require.NoError(t, err)
	assert.Equal(t, "https://beta-school.lms.example/api/v1", base)
}

func TestBadTenantID(t *testing.T) {
	src := NewEnvSource(map[string]config.TenantCreds{
		"EVIL_COM_X": {ClientID: "id", ClientSecret: "sec"},
	})
	r := NewRegistry(src, "lms.example", zap.NewNop().Sugar())
	// configured under the normalized key, but unusable as a hostname label
	_, err := r.Config(context.Background(), "evil.com/x")
	assert.ErrorIs(t, err, ErrBadTenantID)
}

func TestListTenants(t *testing.T) {
	r := testRegistry()
	ids, err := r.ListTenants(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"acme", "beta-school"}, ids)
}
