package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTenantKey(t *testing.T) {
	cases := map[string]string{
		"acme":          "ACME",
		"acme-school":   "ACME_SCHOOL",
		"acme_school":   "ACME_SCHOOL",
		"Acme.School":   "ACME_SCHOOL",
		"a--b":          "A_B",
		"-leading":      "LEADING",
		"trailing-":     "TRAILING",
		"camp2024":      "CAMP2024",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTenantKey(in), "input %q", in)
	}
}

func TestDenormalizeTenantKey(t *testing.T) {
	assert.Equal(t, "acme", DenormalizeTenantKey("ACME"))
	assert.Equal(t, "acme-school", DenormalizeTenantKey("ACME_SCHOOL"))
}

func TestParseTenantEnv(t *testing.T) {
	environ := []string{
		"LMS_TENANT_ACME_CLIENT_ID=real-id",
		"LMS_TENANT_ACME_CLIENT_SECRET=real-secret",
		"LMS_TENANT_ACME_REDIRECT_URI=https://gw.example.com/callback",
		"LMS_TENANT_BETA_SCHOOL_CLIENT_ID=beta-id",
		"LMS_TENANT_BETA_SCHOOL_CLIENT_SECRET=beta-secret",
		"LMS_TENANT_PARTIAL_CLIENT_ID=only-id",
		"LMS_TENANT_EMPTY_CLIENT_ID=",
		"UNRELATED=x",
		"PATH=/usr/bin",
	}
	creds := ParseTenantEnv(environ)

	assert.Equal(t, TenantCreds{
		ClientID:     "real-id",
		ClientSecret: "real-secret",
		RedirectURI:  "https://gw.example.com/callback",
	}, creds["ACME"])
	assert.Equal(t, "beta-id", creds["BETA_SCHOOL"].ClientID)
	assert.Equal(t, "beta-secret", creds["BETA_SCHOOL"].ClientSecret)
	assert.Empty(t, creds["BETA_SCHOOL"].RedirectURI)

	// partial records are kept here; completeness is judged by the registry
	assert.Equal(t, "only-id", creds["PARTIAL"].ClientID)
	assert.Empty(t, creds["PARTIAL"].ClientSecret)

	_, ok := creds["EMPTY"]
	assert.False(t, ok, "empty values are not recorded")
	_, ok = creds["UNRELATED"]
	assert.False(t, ok)
}
