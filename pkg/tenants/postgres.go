package tenants

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"edugate/pkg/config"
)

// pgSource implements CredentialSource backed by PostgreSQL. Rows keyed by
// the same normalized tenant key the env source uses, so a deployment can
// move between the two without renaming tenants.
type pgSource struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgresSource(dbPool *pgxpool.Pool, log *zap.SugaredLogger) CredentialSource {
	return &pgSource{dbPool: dbPool, log: log}
}

// EnsureSchema creates the credentials table if absent. Safe to call
// repeatedly.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenant_credentials (
  tenant_key text PRIMARY KEY,
  client_id text NOT NULL,
  client_secret text NOT NULL,
  redirect_uri text NOT NULL DEFAULT '',
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

// SeedFromEnv upserts env-sourced credentials so a fresh database starts
// with the same tenants the process was configured with.
func SeedFromEnv(ctx context.Context, dbPool *pgxpool.Pool, creds map[string]config.TenantCreds) error {
	for key, c := range creds {
		if c.ClientID == "" || c.ClientSecret == "" {
			continue
		}
		_, err := dbPool.Exec(ctx, `
INSERT INTO tenant_credentials (tenant_key, client_id, client_secret, redirect_uri, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (tenant_key) DO UPDATE
  SET client_id = EXCLUDED.client_id,
      client_secret = EXCLUDED.client_secret,
      redirect_uri = EXCLUDED.redirect_uri,
      updated_at = NOW()
`, key, c.ClientID, c.ClientSecret, c.RedirectURI)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *pgSource) Credentials(ctx context.Context, tenantID string) (Credentials, error) {
	var c Credentials
	err := s.dbPool.QueryRow(ctx, `
SELECT client_id, client_secret, redirect_uri
FROM tenant_credentials WHERE tenant_key = $1
`, config.NormalizeTenantKey(tenantID)).Scan(&c.ClientID, &c.ClientSecret, &c.RedirectURI)
	if err == pgx.ErrNoRows {
		return Credentials{}, ErrNotConfigured
	}
	if err != nil {
		return Credentials{}, err
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return Credentials{}, ErrNotConfigured
	}
	return c, nil
}

func (s *pgSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.dbPool.Query(ctx, `
SELECT tenant_key FROM tenant_credentials
WHERE client_id <> '' AND client_secret <> ''
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		ids = append(ids, config.DenormalizeTenantKey(key))
	}
	return ids, rows.Err()
}
