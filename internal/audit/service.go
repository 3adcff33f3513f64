package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records auth activity for operability.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" && e.Email == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a successful login into a tenant context.
func (s *Service) LogLogin(ctx context.Context, tenantID, userID, ip string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        EventTypeLogin,
		ActorUserID: userID,
		IPAddress:   ip,
		Message:     "login succeeded",
	})
}

// LogLoginFailed records a failed login attempt. No tenant context exists
// yet, so only the attempted email and source IP are captured.
func (s *Service) LogLoginFailed(ctx context.Context, email, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLoginFailed,
		Email:     email,
		IPAddress: ip,
		Message:   "login failed",
	})
}

// LogTenantSwitch records a completed current-tenant move.
func (s *Service) LogTenantSwitch(ctx context.Context, fromTenantID, toTenantID, userID, ip string) error {
	return s.Append(ctx, Event{
		TenantID:     toTenantID,
		Type:         EventTypeTenantSwitch,
		ActorUserID:  userID,
		IPAddress:    ip,
		FromTenantID: fromTenantID,
		ToTenantID:   toTenantID,
		Message:      "current tenant switched",
	})
}

// LogLogout records a session teardown.
func (s *Service) LogLogout(ctx context.Context, tenantID, userID, ip string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        EventTypeLogout,
		ActorUserID: userID,
		IPAddress:   ip,
		Message:     "logout",
	})
}
