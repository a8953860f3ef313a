package tenants

import (
	"context"

	"edugate/pkg/config"
)

// envSource serves credentials from the immutable config snapshot taken at
// process start. This is the default source when no database is configured.
type envSource struct {
	creds map[string]config.TenantCreds
}

func NewEnvSource(creds map[string]config.TenantCreds) CredentialSource {
	if creds == nil {
		creds = map[string]config.TenantCreds{}
	}
	return &envSource{creds: creds}
}

func (s *envSource) Credentials(_ context.Context, tenantID string) (Credentials, error) {
	c, ok := s.creds[config.NormalizeTenantKey(tenantID)]
	if !ok || c.ClientID == "" || c.ClientSecret == "" {
		return Credentials{}, ErrNotConfigured
	}
	return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RedirectURI: c.RedirectURI}, nil
}

func (s *envSource) List(_ context.Context) ([]string, error) {
	var ids []string
	for key, c := range s.creds {
		if c.ClientID == "" || c.ClientSecret == "" {
			continue
		}
		ids = append(ids, config.DenormalizeTenantKey(key))
	}
	return ids, nil
}
