package authn

import (
	"context"
	"errors"
)

type ctxKey int

const ctxPrincipal ctxKey = iota

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom returns the request principal placed by RequireAuth.
func PrincipalFrom(ctx context.Context) (Principal, error) {
	if p, ok := ctx.Value(ctxPrincipal).(Principal); ok && p.ID != "" {
		return p, nil
	}
	return Principal{}, errors.New("principal not in context")
}

// TenantID is a convenience accessor for the principal's tenant claim.
func TenantID(ctx context.Context) (string, error) {
	p, err := PrincipalFrom(ctx)
	if err != nil {
		return "", err
	}
	if p.TenantID == "" {
		return "", errors.New("tenant_id not in context")
	}
	return p.TenantID, nil
}
