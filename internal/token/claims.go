package token

import "github.com/golang-jwt/jwt/v5"

// Claims is the only supported token payload shape for this platform.
// It is the wire contract between the identity service (issuer) and the
// API service (verifier); both processes must agree on it byte-for-byte.
//
// Multi-tenant invariant: TenantID must be present before any tenant-scoped
// authorization decision is made. Consumers reject tenant-less claims
// outright instead of defaulting.
type Claims struct {
	jwt.RegisteredClaims

	Roles    []string `json:"roles"`
	TenantID string   `json:"tenantId"`

	// Display passthrough for UI convenience only.
	// Never consulted for authorization decisions.
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}
