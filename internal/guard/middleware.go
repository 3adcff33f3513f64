package guard

import (
	"net/http"

	"saas-platform/internal/authn"

	"github.com/gin-gonic/gin"
)

// The guard chain is strictly fail-closed and linear per request:
// authenticate (internal/authn) -> tenant claim present -> role intersection.
// Any ambiguity resolves to denial; there is no default role, no bypass role,
// and no "public" fallback. Routes that operate on the caller's own identity
// (self-profile) opt out of tenant-resource checks explicitly by not mounting
// these middlewares, never by default.

// RequireTenant enforces that the authenticated principal carries a tenant
// claim. internal/authn already rejects tenant-less tokens; this is the
// second lock on tenant-scoped route groups.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authn.PrincipalFrom(c.Request.Context())
		if err != nil || p.TenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant required"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows the request through iff the principal's role set
// intersects the allowed set. No principal is 401; a principal without a
// matching role is 403.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authn.PrincipalFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !p.HasAnyRole(allowed...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
