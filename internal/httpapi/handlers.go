package httpapi

import (
	"context"
	"errors"
	"net/http"

	"saas-platform/internal/authn"
	"saas-platform/internal/identity"
	"saas-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UserStore is the tenant-scoped user CRUD collaborator. Every method takes
// the caller's tenant; a resource outside that tenant surfaces as
// identity.ErrNotFound, which is how wrong-tenant access stays
// indistinguishable from absence on these endpoints.
type UserStore interface {
	ListUsers(ctx context.Context, tenantID string) ([]identity.UserRecord, error)
	GetUser(ctx context.Context, id, tenantID string) (identity.UserRecord, error)
	CreateUser(ctx context.Context, tenantID string, nu identity.NewUser) (identity.UserRecord, error)
	DeleteUser(ctx context.Context, id, tenantID string) error
}

// Handlers groups the api-process user endpoints for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Users UserStore
}

// Me returns the caller's own profile. This route is scoped by the principal
// id rather than a path parameter, an explicit opt-out of tenant-resource
// checks.
func (h Handlers) Me(c *gin.Context) {
	p, err := authn.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	u, err := h.Users.GetUser(c.Request.Context(), p.ID, p.TenantID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.FromGin(c).Error("profile lookup failed", "err", err, "user_id", p.ID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// List returns all users in the caller's tenant.
func (h Handlers) List(c *gin.Context) {
	tenantID, err := authn.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	users, err := h.Users.ListUsers(c.Request.Context(), tenantID)
	if err != nil {
		logger.FromGin(c).Error("user listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	if users == nil {
		users = []identity.UserRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Get returns a single user in the caller's tenant.
func (h Handlers) Get(c *gin.Context) {
	tenantID, err := authn.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	u, err := h.Users.GetUser(c.Request.Context(), c.Param("id"), tenantID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.FromGin(c).Error("user lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type createUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Create provisions a user into the caller's tenant.
func (h Handlers) Create(c *gin.Context) {
	tenantID, err := authn.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	u, err := h.Users.CreateUser(c.Request.Context(), tenantID, identity.NewUser{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		logger.FromGin(c).Error("user creation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Delete removes a user from the caller's tenant.
func (h Handlers) Delete(c *gin.Context) {
	tenantID, err := authn.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Users.DeleteUser(c.Request.Context(), c.Param("id"), tenantID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.FromGin(c).Error("user deletion failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
