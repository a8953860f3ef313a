package tenants

// Credentials is a tenant's real upstream OAuth2 client registration.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string // optional fixed redirect registered upstream
}

// TenantConfig is the resolved view of one tenant: derived base URL plus
// credentials. Computed on demand, never persisted.
type TenantConfig struct {
	TenantID    string
	BaseURL     string
	Credentials Credentials
}

// Endpoints are the upstream OAuth2 endpoints, derived from the base URL.
type Endpoints struct {
	AuthorizationURL string
	TokenURL         string
}
