package main

import (
	"saas-platform/internal/session"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires the identity-service HTTP surface. The token export
// endpoint is same-origin only: it authenticates by session cookie and must
// not be exposed cross-origin without CSRF protection.
func registerRoutes(r *gin.Engine, h session.Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/token", h.Token)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		auth.GET("/oauth/start", h.OAuthStart)
		auth.GET("/oauth/callback", h.OAuthCallback)
	}
}
