package tenant

import "errors"

// Membership is the durable record of a tenant a user may operate as,
// independent of any issued token.
//
// Invariants:
// - (UserID, TenantID) is unique.
// - For a given UserID at most one membership has IsCurrent = true. This is
//   the authoritative current-tenant pointer; the issuer's claims follow it.
// - Memberships are created at provisioning time and only ever updated by
//   the switch protocol; this package never deletes them.
type Membership struct {
	UserID     string `json:"userId"`
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	TenantSlug string `json:"tenantSlug"`

	// Role is the per-tenant display role, distinct from the authorization
	// roles carried in the claim set. Both are set from the same source at
	// switch time.
	Role      string `json:"role"`
	IsCurrent bool   `json:"isCurrentTenant"`
}

// SwitchResult is what a completed switch surfaces back to the caller: the
// claims for the session refresh plus the display role of the new tenant.
type SwitchResult struct {
	UserID     string   `json:"id"`
	TenantID   string   `json:"tenantId"`
	Roles      []string `json:"roles"`
	TenantRole string   `json:"tenantRole"`
}

var (
	// ErrNotMember means no membership row exists for the target tenant.
	// The switch fails before any state change.
	ErrNotMember = errors.New("tenant: user does not belong to tenant")

	ErrNotFound = errors.New("tenant: not found")
)
