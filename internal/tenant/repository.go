package tenant

import (
	"context"
	"database/sql"
	"errors"

	"saas-platform/pkg/utils"
)

// NOTE: This repository assumes the following tables exist:
// - user_tenants (user_id, tenant_id, role, is_current) UNIQUE (user_id, tenant_id)
// - tenants (id, name, slug)
// - users (id, tenant_id, ...) where tenant_id is the primary current-tenant pointer
// - user_roles / roles as described in internal/identity

// Repository persists tenant memberships and performs the atomic switch.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListMemberships returns all tenants the user belongs to, current first.
func (r *Repository) ListMemberships(ctx context.Context, userID string) ([]Membership, error) {
	const q = `
SELECT ut.user_id, ut.tenant_id, t.name, t.slug, ut.role, ut.is_current
FROM user_tenants ut
JOIN tenants t ON t.id = ut.tenant_id
WHERE ut.user_id = $1
ORDER BY ut.is_current DESC, t.name
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UserID, &m.TenantID, &m.TenantName, &m.TenantSlug, &m.Role, &m.IsCurrent); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Switch verifies membership and flips the current-tenant state in a single
// transaction: clear all of the user's flags, set the target flag, update the
// primary pointer on users. A concurrent reader observes either the full
// pre-switch state or the full post-switch state, never a mix. Any failure
// rolls back with no state change.
func (r *Repository) Switch(ctx context.Context, userID, targetTenantID string) (SwitchResult, error) {
	var res SwitchResult

	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		m, err := getMembership(ctx, tx, userID, targetTenantID)
		if err != nil {
			return err
		}

		const clearFlags = `
UPDATE user_tenants SET is_current = FALSE WHERE user_id = $1
`
		if _, err := tx.ExecContext(ctx, clearFlags, userID); err != nil {
			return err
		}

		const setFlag = `
UPDATE user_tenants SET is_current = TRUE WHERE user_id = $1 AND tenant_id = $2
`
		if _, err := tx.ExecContext(ctx, setFlag, userID, targetTenantID); err != nil {
			return err
		}

		const setPointer = `
UPDATE users SET tenant_id = $2 WHERE id = $1
`
		if _, err := tx.ExecContext(ctx, setPointer, userID, targetTenantID); err != nil {
			return err
		}

		roles, err := rolesOf(ctx, tx, userID)
		if err != nil {
			return err
		}

		res = SwitchResult{
			UserID:     userID,
			TenantID:   targetTenantID,
			Roles:      roles,
			TenantRole: m.Role,
		}
		return nil
	})
	if err != nil {
		return SwitchResult{}, err
	}
	return res, nil
}

func getMembership(ctx context.Context, tx *sql.Tx, userID, tenantID string) (Membership, error) {
	const q = `
SELECT user_id, tenant_id, role, is_current
FROM user_tenants
WHERE user_id = $1 AND tenant_id = $2
`
	var m Membership
	err := tx.QueryRowContext(ctx, q, userID, tenantID).Scan(&m.UserID, &m.TenantID, &m.Role, &m.IsCurrent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Membership{}, ErrNotMember
		}
		return Membership{}, err
	}
	return m, nil
}

func rolesOf(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	const q = `
SELECT r.name
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.name
`
	rows, err := tx.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}
