// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TenantCreds is the upstream OAuth2 client registration for one tenant.
// A tenant counts as configured only when both ClientID and ClientSecret are set.
type TenantCreds struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type Config struct {
	Env           string
	HTTPAddr      string
	PublicBaseURL string // where callers reach this gateway (discovery metadata)

	// Upstream LMS. Tenant base URLs are always derived as
	// https://{tenant}.{BaseDomain}, never configured per tenant.
	BaseDomain string

	// Server-wide HMAC key for virtual-client secret derivation.
	ServerSecret string

	VirtualClientsFile string
	UpstreamTimeout    time.Duration

	// Redis & Postgres (optional backends)
	RedisURL    string
	DatabaseURL string

	// Per-tenant upstream credentials keyed by normalized tenant key
	// (see NormalizeTenantKey).
	TenantCreds map[string]TenantCreds
}

const (
	tenantEnvPrefix = "LMS_TENANT_"
	suffixClientID  = "_CLIENT_ID"
	suffixSecret    = "_CLIENT_SECRET"
	suffixRedirect  = "_REDIRECT_URI"
)

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                env("EDUGATE_ENV", "dev"),
		HTTPAddr:           env("EDUGATE_HTTP_ADDR", ":8080"),
		PublicBaseURL:      env("PUBLIC_BASE_URL", "http://localhost:8080"),
		BaseDomain:         env("LMS_BASE_DOMAIN", "lms.localhost"),
		ServerSecret:       env("OAUTH_SERVER_SECRET", ""),
		VirtualClientsFile: env("VIRTUAL_CLIENTS_FILE", "virtual_clients.txt"),
		UpstreamTimeout:    envDur("UPSTREAM_TIMEOUT_SEC", 10) * time.Second,
		RedisURL:           env("REDIS_URL", ""),
		DatabaseURL:        env("DATABASE_URL", ""),
		TenantCreds:        ParseTenantEnv(os.Environ()),
	}
	if f := os.Getenv("TENANTS_FILE"); f != "" {
		if err := mergeTenantsFile(cfg.TenantCreds, f); err != nil {
			log.Printf("[WARN] TENANTS_FILE %s: %v", f, err)
		}
	}
	if cfg.ServerSecret == "" {
		log.Println("[WARN] OAUTH_SERVER_SECRET not set; virtual client secrets will not survive restarts")
	}
	return cfg
}

// ParseTenantEnv collects LMS_TENANT_{KEY}_CLIENT_ID / _CLIENT_SECRET /
// _REDIRECT_URI triples from an environment snapshot.
func ParseTenantEnv(environ []string) map[string]TenantCreds {
	out := map[string]TenantCreds{}
	for _, kv := range environ {
		i := strings.Index(kv, "=")
		if i < 0 {
			continue
		}
		name, val := kv[:i], kv[i+1:]
		if !strings.HasPrefix(name, tenantEnvPrefix) || val == "" {
			continue
		}
		rest := name[len(tenantEnvPrefix):]
		switch {
		case strings.HasSuffix(rest, suffixClientID):
			key := strings.TrimSuffix(rest, suffixClientID)
			c := out[key]
			c.ClientID = val
			out[key] = c
		case strings.HasSuffix(rest, suffixSecret):
			key := strings.TrimSuffix(rest, suffixSecret)
			c := out[key]
			c.ClientSecret = val
			out[key] = c
		case strings.HasSuffix(rest, suffixRedirect):
			key := strings.TrimSuffix(rest, suffixRedirect)
			c := out[key]
			c.RedirectURI = val
			out[key] = c
		}
	}
	return out
}

type tenantsFile struct {
	Tenants []struct {
		ID          string `yaml:"id"`
		TenantCreds `yaml:",inline"`
	} `yaml:"tenants"`
}

func mergeTenantsFile(dst map[string]TenantCreds, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tf tenantsFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return err
	}
	for _, t := range tf.Tenants {
		if t.ID == "" {
			continue
		}
		dst[NormalizeTenantKey(t.ID)] = t.TenantCreds
	}
	return nil
}

// NormalizeTenantKey maps a tenant id to its configuration key form:
// uppercase with every non-alphanumeric run collapsed to a single underscore.
// "acme-school" -> "ACME_SCHOOL". The transform is lossy; the canonical
// id form is the lowercase-hyphen one DenormalizeTenantKey returns.
func NormalizeTenantKey(tenantID string) string {
	var b strings.Builder
	prevSep := false
	for _, r := range strings.ToUpper(tenantID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevSep = false
		} else if !prevSep {
			b.WriteByte('_')
			prevSep = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// DenormalizeTenantKey is the reverse scan used when listing configured
// tenants from credential keys.
func DenormalizeTenantKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
