package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"saas-platform/internal/guard"
	"saas-platform/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NOTE: This directory assumes the following tables exist:
// - users (id, email, name, image, password_hash, is_active, tenant_id, created_at)
// - roles (id, name)
// - user_roles (user_id, role_id) UNIQUE (user_id, role_id)
// - user_tenants (user_id, tenant_id, role, is_current) UNIQUE (user_id, tenant_id)
//
// users.tenant_id is the primary "current tenant" pointer; user_tenants holds
// durable memberships. The tenant-switch protocol (internal/tenant) keeps the
// two consistent.

// SQLDirectory is the Postgres-backed user directory used by the identity
// service for login resolution and by the api service for tenant-scoped user
// CRUD.
type SQLDirectory struct {
	db *sql.DB

	// defaultTenantID homes brand-new federated users. Empty means federated
	// first logins without a resolvable tenant fail closed.
	defaultTenantID string

	clock func() time.Time
}

func NewSQLDirectory(db *sql.DB, defaultTenantID string) *SQLDirectory {
	return &SQLDirectory{db: db, defaultTenantID: defaultTenantID, clock: time.Now}
}

/* ===================== LOGIN RESOLUTION ===================== */

// ValidateCredentials looks the user up by email across all tenants (login
// happens before a tenant context exists) and compares the bcrypt hash.
func (d *SQLDirectory) ValidateCredentials(ctx context.Context, email, password string) (Identity, error) {
	const q = `
SELECT id, email, COALESCE(name,''), COALESCE(image,''), COALESCE(password_hash,''), is_active, COALESCE(tenant_id,'')
FROM users
WHERE email = $1
LIMIT 1
`
	var (
		id       Identity
		hash     string
		isActive bool
	)
	err := d.db.QueryRowContext(ctx, q, email).Scan(
		&id.ID,
		&id.Email,
		&id.Name,
		&id.Picture,
		&hash,
		&isActive,
		&id.TenantID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	if hash == "" {
		// Federated-only account; no password login.
		return Identity{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	if !isActive {
		return Identity{}, ErrInvalidCredentials
	}

	roles, err := d.rolesOf(ctx, id.ID)
	if err != nil {
		return Identity{}, err
	}
	id.Roles = roles
	return id, nil
}

// ResolveByEmail resolves a federated login. Known users are refreshed with
// the provider's display fields; unknown users are provisioned into the
// configured default tenant, or rejected when none is configured.
func (d *SQLDirectory) ResolveByEmail(ctx context.Context, email, name, picture string) (Identity, error) {
	const q = `
UPDATE users
SET name = COALESCE(NULLIF($2,''), name),
    image = COALESCE(NULLIF($3,''), image)
WHERE email = $1
RETURNING id, email, COALESCE(name,''), COALESCE(image,''), COALESCE(tenant_id,'')
`
	var id Identity
	err := d.db.QueryRowContext(ctx, q, email, name, picture).Scan(
		&id.ID,
		&id.Email,
		&id.Name,
		&id.Picture,
		&id.TenantID,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return d.provision(ctx, email, name, picture)
	case err != nil:
		return Identity{}, err
	}

	if id.TenantID == "" {
		return Identity{}, ErrTenantMissing
	}
	roles, err := d.rolesOf(ctx, id.ID)
	if err != nil {
		return Identity{}, err
	}
	id.Roles = roles
	return id, nil
}

// provision creates a federated user in the default tenant with the default
// role, all in one transaction. Fails closed when no default tenant is
// configured.
func (d *SQLDirectory) provision(ctx context.Context, email, name, picture string) (Identity, error) {
	if d.defaultTenantID == "" {
		return Identity{}, ErrTenantMissing
	}

	id := Identity{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Picture:  picture,
		Roles:    []string{guard.RoleUser},
		TenantID: d.defaultTenantID,
	}
	now := d.clock().UTC()

	err := utils.WithTx(ctx, d.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const insertUser = `
INSERT INTO users (id, email, name, image, is_active, tenant_id, created_at)
VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),TRUE,$5,$6)
`
		if _, err := tx.ExecContext(ctx, insertUser, id.ID, email, name, picture, d.defaultTenantID, now); err != nil {
			return err
		}

		const insertMembership = `
INSERT INTO user_tenants (user_id, tenant_id, role, is_current)
VALUES ($1,$2,$3,TRUE)
`
		if _, err := tx.ExecContext(ctx, insertMembership, id.ID, d.defaultTenantID, guard.RoleUser); err != nil {
			return err
		}

		const insertRole = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = $2
`
		if _, err := tx.ExecContext(ctx, insertRole, id.ID, guard.RoleUser); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Identity{}, err
	}
	return id, nil
}

func (d *SQLDirectory) rolesOf(ctx context.Context, userID string) ([]string, error) {
	const q = `
SELECT r.name
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.name
`
	rows, err := d.db.QueryContext(ctx, q, userID)
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

/* ===================== TENANT-SCOPED USER CRUD ===================== */

// All queries below are tenant-scoped by construction: a resource outside the
// caller's tenant is indistinguishable from a resource that does not exist,
// and surfaces as ErrNotFound.

func (d *SQLDirectory) ListUsers(ctx context.Context, tenantID string) ([]UserRecord, error) {
	const q = `
SELECT id, email, COALESCE(name,''), tenant_id, is_active, created_at
FROM users
WHERE tenant_id = $1
ORDER BY created_at, id
`
	rows, err := d.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserRecord
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.TenantID, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		roles, err := d.rolesOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Roles = roles
	}
	return out, nil
}

func (d *SQLDirectory) GetUser(ctx context.Context, id, tenantID string) (UserRecord, error) {
	const q = `
SELECT id, email, COALESCE(name,''), tenant_id, is_active, created_at
FROM users
WHERE id = $1 AND tenant_id = $2
`
	var u UserRecord
	err := d.db.QueryRowContext(ctx, q, id, tenantID).Scan(&u.ID, &u.Email, &u.Name, &u.TenantID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	u.Roles, err = d.rolesOf(ctx, u.ID)
	if err != nil {
		return UserRecord{}, err
	}
	return u, nil
}

func (d *SQLDirectory) CreateUser(ctx context.Context, tenantID string, nu NewUser) (UserRecord, error) {
	roles := nu.Roles
	if len(roles) == 0 {
		roles = []string{guard.RoleUser}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserRecord{}, err
	}

	u := UserRecord{
		ID:        uuid.NewString(),
		Email:     nu.Email,
		Name:      nu.Name,
		Roles:     roles,
		TenantID:  tenantID,
		IsActive:  true,
		CreatedAt: d.clock().UTC(),
	}

	err = utils.WithTx(ctx, d.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const checkEmail = `
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND tenant_id = $2)
`
		var taken bool
		if err := tx.QueryRowContext(ctx, checkEmail, nu.Email, tenantID).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		const insertUser = `
INSERT INTO users (id, email, name, image, password_hash, is_active, tenant_id, created_at)
VALUES ($1,$2,NULLIF($3,''),NULL,$4,TRUE,$5,$6)
`
		if _, err := tx.ExecContext(ctx, insertUser, u.ID, u.Email, u.Name, string(hash), tenantID, u.CreatedAt); err != nil {
			return err
		}

		const insertMembership = `
INSERT INTO user_tenants (user_id, tenant_id, role, is_current)
VALUES ($1,$2,$3,TRUE)
`
		if _, err := tx.ExecContext(ctx, insertMembership, u.ID, tenantID, roles[0]); err != nil {
			return err
		}

		const insertRole = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = $2
`
		for _, role := range roles {
			if _, err := tx.ExecContext(ctx, insertRole, u.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return UserRecord{}, err
	}
	return u, nil
}

func (d *SQLDirectory) DeleteUser(ctx context.Context, id, tenantID string) error {
	const q = `
DELETE FROM users
WHERE id = $1 AND tenant_id = $2
`
	res, err := d.db.ExecContext(ctx, q, id, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
