package tenant

import (
	"context"
	"errors"
)

// Service drives the tenant-switch protocol:
// verify membership -> atomic flip -> caller refreshes the session token.
// The states are strictly ordered; membership verification completes inside
// the same transaction as the flip, so a failed verification leaves the
// pre-switch state untouched.
//
// The protocol does not revoke tokens exported before the switch; the
// verifier judges those purely on their own claims and expiry. Clients must
// re-fetch the raw token after a switch.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Switch moves the user's current tenant to targetTenantID.
// Returns ErrNotMember with no state change when no membership exists.
func (s *Service) Switch(ctx context.Context, userID, targetTenantID string) (SwitchResult, error) {
	if userID == "" || targetTenantID == "" {
		return SwitchResult{}, errors.New("tenant: user id and tenant id are required")
	}
	return s.repo.Switch(ctx, userID, targetTenantID)
}

// Memberships lists the tenants the user may operate as, current first.
func (s *Service) Memberships(ctx context.Context, userID string) ([]Membership, error) {
	if userID == "" {
		return nil, errors.New("tenant: user id is required")
	}
	return s.repo.ListMemberships(ctx, userID)
}
