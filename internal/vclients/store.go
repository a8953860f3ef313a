// Package vclients issues and resolves virtual OAuth2 client identities:
// locally-minted client ids for callers that cannot register a real client
// with the upstream LMS. A virtual client maps to the tenant that owns it;
// credential resolution swaps it for that tenant's real credentials.
//
// Secrets are never stored. They are recomputed on demand from the client
// id and a server-wide key, so a rebuilt store keeps every secret valid.
package vclients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// VirtualClient is one registration record. Never mutated, never deleted;
// revocation does not exist in this design.
type VirtualClient struct {
	ClientID     string
	TenantID     string
	CreatedAt    time.Time
	ClientName   string   // optional
	RedirectURIs []string // optional
}

// Store is the durable id → owning-tenant mapping. Implementations must
// return (nil, nil) from Lookup when the client is unknown or the backing
// store does not exist yet; only real I/O faults are errors.
type Store interface {
	// Initialize prepares the backing store. Idempotent; never overwrites
	// existing records.
	Initialize(ctx context.Context) error
	Register(ctx context.Context, tenantID, clientName string, redirectURIs []string) (VirtualClient, string, error)
	Lookup(ctx context.Context, clientID string) (*VirtualClient, error)
	ListAll(ctx context.Context) ([]VirtualClient, error)
}

// SecretDeriver computes virtual client secrets:
// HMAC-SHA256(serverSecret, clientID) as lowercase hex.
type SecretDeriver struct {
	key []byte
}

func NewSecretDeriver(serverSecret string) SecretDeriver {
	return SecretDeriver{key: []byte(serverSecret)}
}

// Derive is pure and stable: same id and server key always yield the same
// 64-character lowercase hex secret.
func (d SecretDeriver) Derive(clientID string) string {
	mac := hmac.New(sha256.New, d.key)
	mac.Write([]byte(clientID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate recomputes the expected secret and compares in constant time.
func (d SecretDeriver) Validate(clientID, suppliedSecret string) bool {
	expected := d.Derive(clientID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(suppliedSecret)) == 1
}
