package authn

import (
	"net/http"
	"time"

	"saas-platform/internal/token"
	"saas-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequireAuth verifies the bearer token and injects the principal into the
// request context. It does not perform role or tenant-resource checks; those
// belong to internal/guard.
//
// All verification failures collapse to a generic 401. The underlying decode
// error is logged server-side only.
func RequireAuth(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := Authenticate(codec, c.Request, time.Now())
		if err != nil {
			logger.FromGin(c).Debug("authentication failed", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))

		// Also store on gin context for handler convenience.
		c.Set("principal", p)

		c.Next()
	}
}
