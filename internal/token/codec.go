package token

import (
	"errors"
	"fmt"
	"time"

	"saas-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Decode failure taxonomy. These are for server-side logging and tests only;
// the HTTP boundary collapses all of them to a generic 401.
var (
	ErrMalformed    = errors.New("token: malformed")
	ErrBadSignature = errors.New("token: bad signature")
	ErrExpired      = errors.New("token: expired")
)

// Codec signs and verifies claim sets with a single pre-shared HS256 secret.
// The same secret must be configured in both the issuing and the verifying
// process; a secret mismatch always surfaces as ErrBadSignature, never as a
// partially decoded claim set. Signature comparison inside the JWT library is
// constant-time (crypto/hmac).
//
// There is no key rotation and no asymmetric mode. The secret is loaded once
// at process start and injected here; nothing reads it at call time.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &Codec{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}, nil
}

// TTL returns the fixed lifetime applied by Encode.
func (c *Codec) TTL() time.Duration { return c.ttl }

/* ===================== ENCODE ===================== */

// Encode signs claims with the codec's fixed TTL.
// IssuedAt, ExpiresAt and ID are always derived here; caller-supplied time
// claims are overwritten so every issued token has a bounded lifetime.
func (c *Codec) Encode(now time.Time, claims Claims) (string, error) {
	return c.EncodeWithTTL(now, claims, c.ttl)
}

// EncodeWithTTL is Encode with an explicit lifetime. A non-positive ttl
// produces an already-expired token; useful for tests, never for issuance.
func (c *Codec) EncodeWithTTL(now time.Time, claims Claims, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("token: subject is required")
	}
	if len(claims.Roles) == 0 {
		return "", errors.New("token: at least one role is required")
	}

	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.ID = uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

/* ===================== DECODE ===================== */

// Decode verifies the signature and expiry of a compact token and returns its
// claims. Only HS256 is accepted; a token signed with any other algorithm, or
// with a different secret, fails verification.
func (c *Codec) Decode(raw string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, fmt.Errorf("%w: %v", ErrExpired, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	// Shape checks. TenantID presence is enforced by the verifier, not here:
	// the codec round-trips any structurally valid claim set so that the
	// verifier owns the tenant-required decision.
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: subject missing", ErrMalformed)
	}
	if len(claims.Roles) == 0 {
		return Claims{}, fmt.Errorf("%w: roles missing", ErrMalformed)
	}

	return claims, nil
}
