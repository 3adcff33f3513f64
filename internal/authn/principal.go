package authn

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"saas-platform/internal/token"
)

// ErrUnauthenticated is the only authentication failure exposed by this
// package. Decode detail (bad signature vs expired vs malformed) is carried
// in the wrapped error for server-side logging and never shown to callers.
var ErrUnauthenticated = errors.New("authn: unauthenticated")

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Principal is the authenticated identity reconstructed per request from a
// verified bearer token. It is all-or-nothing: no partial principal is ever
// produced.
type Principal struct {
	ID       string   `json:"id"`
	Roles    []string `json:"roles"`
	TenantID string   `json:"tenantId"`

	// Display passthrough; never used for authorization.
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// HasAnyRole reports whether the principal holds at least one of the given
// role names.
func (p Principal) HasAnyRole(allowed ...string) bool {
	for _, want := range allowed {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Authenticate verifies the bearer token on r and builds a Principal.
// It is stateless and side-effect free: no session lookup, no caching beyond
// this call. A correctly signed, unexpired token without a tenant claim is
// still rejected; a tenant-less token is not an authenticated request for
// any tenant-scoped endpoint.
func Authenticate(codec *token.Codec, r *http.Request, now time.Time) (Principal, error) {
	raw := strings.TrimSpace(r.Header.Get(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return Principal{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	claims, err := codec.Decode(strings.TrimPrefix(raw, bearerPrefix), now)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.TenantID == "" {
		return Principal{}, fmt.Errorf("%w: tenant claim missing", ErrUnauthenticated)
	}

	return Principal{
		ID:       claims.Subject,
		Roles:    claims.Roles,
		TenantID: claims.TenantID,
		Name:     claims.Name,
		Email:    claims.Email,
		Picture:  claims.Picture,
	}, nil
}
