package session

import (
	"context"
	"time"

	"saas-platform/internal/guard"
	"saas-platform/internal/identity"
	"saas-platform/internal/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer turns a successful login into a claim set and keeps the signed token
// retrievable for the session's lifetime. Claim changes after issuance go
// through Refresh only, which re-signs; there is no in-place token mutation
// and no server-side revocation of already exported tokens (their own expiry
// bounds the exposure window).
type Issuer struct {
	codec      *token.Codec
	store      Store
	sessionTTL time.Duration
	clock      func() time.Time
}

func NewIssuer(codec *token.Codec, store Store, sessionTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		store:      store,
		sessionTTL: sessionTTL,
		clock:      time.Now,
	}
}

// RefreshPatch carries the claim fields a tenant switch replaces.
type RefreshPatch struct {
	TenantID string
	Roles    []string
}

// Login creates a session for a resolved identity.
// A missing tenant aborts issuance entirely; an empty role set is upgraded to
// the default role before, never after, the token is signed.
func (i *Issuer) Login(ctx context.Context, id identity.Identity) (*Session, error) {
	if id.TenantID == "" {
		return nil, identity.ErrTenantMissing
	}
	roles := id.Roles
	if len(roles) == 0 {
		roles = []string{guard.RoleUser}
	}

	now := i.clock().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    id.ID,
		Email:     id.Email,
		Name:      id.Name,
		Picture:   id.Picture,
		TenantID:  id.TenantID,
		Roles:     roles,
		CreatedAt: now,
		ExpiresAt: now.Add(i.sessionTTL),
	}
	if err := i.sign(sess, now); err != nil {
		return nil, err
	}
	if err := i.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Refresh applies a claim patch to a live session and re-signs its token.
// This is the only after-issuance mutation path; it exists for the
// tenant-switch protocol.
func (i *Issuer) Refresh(ctx context.Context, sessionID string, patch RefreshPatch) (*Session, error) {
	sess, err := i.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if patch.TenantID == "" {
		return nil, identity.ErrTenantMissing
	}

	sess.TenantID = patch.TenantID
	sess.Roles = patch.Roles
	if len(sess.Roles) == 0 {
		sess.Roles = []string{guard.RoleUser}
	}

	if err := i.sign(sess, i.clock().UTC()); err != nil {
		return nil, err
	}
	if err := i.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ExportRawToken returns the exact signed token string the api-side verifier
// expects as a bearer credential. It fails when no session is active; it
// never returns a stale value. A token past its own expiry is re-signed from
// the session's current claims first.
func (i *Issuer) ExportRawToken(ctx context.Context, sessionID string) (string, error) {
	sess, err := i.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	now := i.clock().UTC()
	if !now.Before(sess.TokenExpiry) {
		if err := i.sign(sess, now); err != nil {
			return "", err
		}
		if err := i.store.Put(ctx, sess); err != nil {
			return "", err
		}
	}
	return sess.RawToken, nil
}

// Logout drops the session. Previously exported tokens remain valid until
// their own expiry.
func (i *Issuer) Logout(ctx context.Context, sessionID string) error {
	return i.store.Delete(ctx, sessionID)
}

func (i *Issuer) sign(sess *Session, now time.Time) error {
	raw, err := i.codec.Encode(now, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sess.UserID},
		Roles:            sess.Roles,
		TenantID:         sess.TenantID,
		Name:             sess.Name,
		Email:            sess.Email,
		Picture:          sess.Picture,
	})
	if err != nil {
		return err
	}
	sess.RawToken = raw
	sess.TokenExpiry = now.Add(i.codec.TTL())
	return nil
}
