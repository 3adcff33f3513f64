package main

import (
	"saas-platform/internal/guard"
	"saas-platform/internal/httpapi"
	"saas-platform/internal/tenant"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to
// internal modules.
//
// Every protected route passes the same linear guard chain:
// authenticate -> tenant claim -> role intersection -> handler. Self-scoped
// routes (me, tenants) mount behind authentication only; that opt-out is
// per-route and explicit.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, users httpapi.Handlers, tenants tenant.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Self-profile: scoped by principal id, not by a path parameter.
		v1.GET("/me", users.Me)

		// TENANT routes: membership data is the caller's own.
		tg := v1.Group("/tenants")
		{
			tg.GET("", tenants.List)
			tg.POST("/switch", tenants.Switch)
		}

		// USER routes: tenant-scoped CRUD behind the full guard chain.
		ug := v1.Group("/users")
		ug.Use(guard.RequireTenant())
		{
			ug.GET("", guard.RequireAnyRole(guard.RoleUser, guard.RolePowerUser, guard.RoleAdmin), users.List)
			ug.GET("/:id", guard.RequireAnyRole(guard.RolePowerUser, guard.RoleAdmin), users.Get)
			ug.POST("", guard.RequireAnyRole(guard.RolePowerUser, guard.RoleAdmin), users.Create)
			ug.DELETE("/:id", guard.RequireAnyRole(guard.RoleAdmin), users.Delete)
		}
	}
}
