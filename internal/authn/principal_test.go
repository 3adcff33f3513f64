package authn

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"saas-platform/internal/config"
	"saas-platform/internal/token"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T, secret string) *token.Codec {
	t.Helper()
	c, err := token.NewCodec(config.AuthConfig{JWTSecret: secret, TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func signedToken(t *testing.T, c *token.Codec, now time.Time, tenantID string) string {
	t.Helper()
	raw, err := c.Encode(now, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Roles:            []string{"admin"},
		TenantID:         tenantID,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return raw
}

func TestAuthenticate_BuildsPrincipal(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	now := time.Unix(1700000000, 0).UTC()

	req := httptest.NewRequest("GET", "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, c, now, "t1"))

	p, err := Authenticate(c, req, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.ID != "u1" || p.TenantID != "t1" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if len(p.Roles) != 1 || p.Roles[0] != "admin" {
		t.Fatalf("unexpected roles: %v", p.Roles)
	}
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	now := time.Now()
	raw := signedToken(t, c, now, "t1")

	cases := map[string]string{
		"empty":        "",
		"wrong scheme": "Basic " + raw,
		"no prefix":    raw,
	}
	for name, header := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if _, err := Authenticate(c, req, now); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestAuthenticate_TenantClaimRequired(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	now := time.Unix(1700000000, 0).UTC()

	// Correctly signed, unexpired, but no tenant claim.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, c, now, ""))

	if _, err := Authenticate(c, req, now.Add(time.Minute)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for tenant-less token, got %v", err)
	}
}

func TestAuthenticate_ExpiredAndForeignTokensRejected(t *testing.T) {
	c := newTestCodec(t, "s3cr3t")
	foreign := newTestCodec(t, "wrong")
	now := time.Unix(1700000000, 0).UTC()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, c, now, "t1"))
	if _, err := Authenticate(c, req, now.Add(2*time.Hour)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, foreign, now, "t1"))
	if _, err := Authenticate(c, req, now.Add(time.Minute)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for cross-secret token, got %v", err)
	}
}

func TestHasAnyRole(t *testing.T) {
	p := Principal{Roles: []string{"user"}}

	if p.HasAnyRole("admin", "powerUser") {
		t.Fatalf("expected no intersection")
	}
	if !p.HasAnyRole("powerUser", "user") {
		t.Fatalf("expected intersection on user")
	}
	if p.HasAnyRole() {
		t.Fatalf("empty allowed set must never pass")
	}
}
