package identity

import (
	"context"
	"errors"
	"time"
)

// Identity is what the directory resolves for a successful login: the stable
// user id plus the roles and tenant the subject operates as right now.
type Identity struct {
	ID       string
	Email    string
	Name     string
	Picture  string
	Roles    []string
	TenantID string
}

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// deactivated accounts alike so responses do not leak which it was.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrTenantMissing means the login succeeded at the provider level but no
	// tenant could be resolved. Issuance must abort; a tenant-less session is
	// never created.
	ErrTenantMissing = errors.New("identity: tenant could not be resolved")

	ErrNotFound   = errors.New("identity: not found")
	ErrEmailTaken = errors.New("identity: email already in use in this tenant")
)

// Directory is the user-directory collaborator consulted by the token issuer.
type Directory interface {
	// ValidateCredentials authenticates an email/password pair.
	// Returns ErrInvalidCredentials on any mismatch.
	ValidateCredentials(ctx context.Context, email, password string) (Identity, error)

	// ResolveByEmail resolves or provisions a federated login keyed by email.
	// Provisioning a brand-new user requires a configured default tenant;
	// without one the resolution fails with ErrTenantMissing.
	ResolveByEmail(ctx context.Context, email, name, picture string) (Identity, error)
}

// UserRecord is the tenant-scoped projection served by the api process.
type UserRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Roles     []string  `json:"roles"`
	TenantID  string    `json:"tenantId"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser is the payload for provisioning a user into the caller's tenant.
type NewUser struct {
	Email    string
	Name     string
	Password string
	Roles    []string
}
