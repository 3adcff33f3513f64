package tenant

import (
	"context"
	"errors"
	"net/http"

	"saas-platform/internal/audit"
	"saas-platform/internal/authn"
	"saas-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Switcher is the protocol surface the HTTP layer depends on.
type Switcher interface {
	Switch(ctx context.Context, userID, targetTenantID string) (SwitchResult, error)
	Memberships(ctx context.Context, userID string) ([]Membership, error)
}

// Handlers serves the tenant endpoints on the api process. Both operate on
// the caller's own identity, so they mount behind authentication only; the
// membership data itself provides the tenant scoping.
type Handlers struct {
	Tenants Switcher

	// Audit is best-effort; a switch never fails on audit errors.
	Audit *audit.Service
}

type switchRequest struct {
	TenantID string `json:"tenantId"`
}

// Switch flips the caller's current tenant. On success the client must call
// the identity service's refresh endpoint and re-fetch the raw token; any
// locally cached token still carries the old tenant claims.
func (h Handlers) Switch(c *gin.Context) {
	p, err := authn.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.TenantID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenantId required"})
		return
	}

	res, err := h.Tenants.Switch(c.Request.Context(), p.ID, req.TenantID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user does not belong to this tenant"})
			return
		}
		logger.FromGin(c).Error("tenant switch failed", "err", err, "user_id", p.ID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tenant switch failed"})
		return
	}

	if h.Audit != nil {
		if err := h.Audit.LogTenantSwitch(c.Request.Context(), p.TenantID, res.TenantID, p.ID, c.ClientIP()); err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, res)
}

// List returns the caller's memberships, current tenant first.
func (h Handlers) List(c *gin.Context) {
	p, err := authn.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	memberships, err := h.Tenants.Memberships(c.Request.Context(), p.ID)
	if err != nil {
		logger.FromGin(c).Error("membership listing failed", "err", err, "user_id", p.ID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list tenants"})
		return
	}
	if memberships == nil {
		memberships = []Membership{}
	}
	c.JSON(http.StatusOK, gin.H{"tenants": memberships})
}
