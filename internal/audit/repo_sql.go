package audit

import (
	"context"
	"database/sql"
)

// SQLRepo appends events to the audit_events table. The table should carry an
// INSERT-only policy; nothing in this codebase updates or deletes rows.
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{db: db} }

func (r *SQLRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, tenant_id, type, actor_user_id, email, ip_address, from_tenant_id, to_tenant_id, message, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.TenantID,
		e.Type,
		e.ActorUserID,
		e.Email,
		e.IPAddress,
		e.FromTenantID,
		e.ToTenantID,
		e.Message,
		e.CreatedAt,
	)
	return err
}
