package oauthproxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edugate/pkg/tenants"
)

func newTestResolver(store *memStore) *Resolver {
	log := zap.NewNop().Sugar()
	registry := tenants.NewRegistry(tenants.NewEnvSource(testCreds()), "lms.example", log)
	return NewResolver(registry, store, log)
}

func TestResolveWithoutClientID(t *testing.T) {
	r := newTestResolver(newMemStore())

	got, err := r.Resolve(context.Background(), "", "acme")
	require.NoError(t, err)
	assert.Equal(t, ResolvedCredentials{ClientID: "real-id", ClientSecret: "real-secret", TenantID: "acme"}, got)
}

func TestResolveUnknownTenant(t *testing.T) {
	r := newTestResolver(newMemStore())

	_, err := r.Resolve(context.Background(), "", "ghost")
	assert.ErrorIs(t, err, tenants.ErrNotConfigured)
}

func TestResolveVirtualClientRewritesTenant(t *testing.T) {
	store := newMemStore()
	vc, _, err := store.Register(context.Background(), "beta", "", nil)
	require.NoError(t, err)
	r := newTestResolver(store)

	// caller claims tenant acme but presents beta's virtual client;
	// the owning tenant wins
	got, err := r.Resolve(context.Background(), vc.ClientID, "acme")
	require.NoError(t, err)
	assert.Equal(t, "beta", got.TenantID)
	assert.Equal(t, "beta-id", got.ClientID)
	assert.Equal(t, "beta-secret", got.ClientSecret)
}

func TestResolveVirtualClientToVanishedTenant(t *testing.T) {
	store := newMemStore()
	vc, _, err := store.Register(context.Background(), "gone", "", nil)
	require.NoError(t, err)
	r := newTestResolver(store)

	_, err = r.Resolve(context.Background(), vc.ClientID, "acme")
	assert.ErrorIs(t, err, tenants.ErrNotConfigured)
}

func TestResolveUnknownClientIDFallsBack(t *testing.T) {
	r := newTestResolver(newMemStore())

	got, err := r.Resolve(context.Background(), "some-random-client", "acme")
	require.NoError(t, err)
	assert.Equal(t, "real-id", got.ClientID, "unknown client ids are ignored; the tenant's real id wins")
	assert.Equal(t, "acme", got.TenantID)
}

func TestResolveStoreFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.failAll = true
	r := newTestResolver(store)

	got, err := r.Resolve(context.Background(), "whatever", "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.TenantID)
}
