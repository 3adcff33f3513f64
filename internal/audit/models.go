package audit

import "time"

// Event is an immutable, append-only audit log record for auth activity.
//
// Invariants:
// - Events are never updated or deleted.
// - Audit capture is best-effort; login and switch flows must not block on
//   audit failures.
//
// Storage (Postgres): table audit_events with an INSERT-only policy.
type Event struct {
	ID string `json:"id" db:"id"`

	// TenantID scopes the event. Empty only for failed logins, where no
	// tenant context exists yet.
	TenantID string `json:"tenant_id,omitempty" db:"tenant_id"`

	// Type indicates the auth activity category.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event, when known.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// Email identifies failed login attempts that never resolved a user id.
	Email string `json:"email,omitempty" db:"email"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// FromTenantID/ToTenantID are set for tenant-switch events.
	FromTenantID string `json:"from_tenant_id,omitempty" db:"from_tenant_id"`
	ToTenantID   string `json:"to_tenant_id,omitempty" db:"to_tenant_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin        EventType = "login"
	EventTypeLoginFailed  EventType = "login_failed"
	EventTypeTenantSwitch EventType = "tenant_switch"
	EventTypeLogout       EventType = "logout"
)
