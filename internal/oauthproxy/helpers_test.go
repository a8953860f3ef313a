package oauthproxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edugate/internal/vclients"
	"edugate/pkg/config"
	"edugate/pkg/tenants"
)

// memStore is an in-memory vclients.Store for handler tests.
type memStore struct {
	deriver vclients.SecretDeriver
	byID    map[string]vclients.VirtualClient
	failAll bool
}

func newMemStore() *memStore {
	return &memStore{
		deriver: vclients.NewSecretDeriver("test-server-secret"),
		byID:    map[string]vclients.VirtualClient{},
	}
}

func (m *memStore) Initialize(context.Context) error { return nil }

func (m *memStore) Register(_ context.Context, tenantID, clientName string, redirectURIs []string) (vclients.VirtualClient, string, error) {
	if m.failAll {
		return vclients.VirtualClient{}, "", errTestStore
	}
	vc := vclients.VirtualClient{
		ClientID:     uuid.NewString(),
		TenantID:     tenantID,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		ClientName:   clientName,
		RedirectURIs: redirectURIs,
	}
	m.byID[vc.ClientID] = vc
	return vc, m.deriver.Derive(vc.ClientID), nil
}

func (m *memStore) Lookup(_ context.Context, clientID string) (*vclients.VirtualClient, error) {
	if m.failAll {
		return nil, errTestStore
	}
	if vc, ok := m.byID[clientID]; ok {
		return &vc, nil
	}
	return nil, nil
}

func (m *memStore) ListAll(context.Context) ([]vclients.VirtualClient, error) {
	if m.failAll {
		return nil, errTestStore
	}
	var out []vclients.VirtualClient
	for _, vc := range m.byID {
		out = append(out, vc)
	}
	return out, nil
}

var errTestStore = errors.New("store unavailable")

// roundTripFunc lets a test stand in for the upstream token endpoint.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testCreds() map[string]config.TenantCreds {
	return map[string]config.TenantCreds{
		"ACME": {ClientID: "real-id", ClientSecret: "real-secret"},
		"BETA": {
			ClientID:     "beta-id",
			ClientSecret: "beta-secret",
			RedirectURI:  "https://gw.example.com/callback",
		},
	}
}

func newTestHandler(store vclients.Store) *Handler {
	cfg := config.Config{
		Env:             "test",
		PublicBaseURL:   "https://gw.example.com",
		BaseDomain:      "lms.example",
		UpstreamTimeout: 2 * time.Second,
	}
	log := zap.NewNop().Sugar()
	registry := tenants.NewRegistry(tenants.NewEnvSource(testCreds()), cfg.BaseDomain, log)
	return NewHandler(cfg, log, registry, store)
}
