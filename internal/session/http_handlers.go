package session

import (
	"errors"
	"net/http"
	"time"

	"saas-platform/internal/audit"
	"saas-platform/internal/identity"
	"saas-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie    = "sid"
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// Handlers exposes the identity-service HTTP surface: credential and
// federated login, session refresh, raw-token export and logout.
//
// The token export endpoint is same-origin only: it authenticates by session
// cookie, and a caller can only ever export their own session's token.
type Handlers struct {
	Issuer    *Issuer
	Directory identity.Directory

	// Flow is nil when federated login is not configured.
	Flow *identity.OAuthFlow

	// Audit is best-effort; login flows never fail on audit errors.
	Audit *audit.Service

	CookieSecure bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	TenantID string   `json:"tenantId"`
	Roles    []string `json:"roles"`
}

// Login handles credential logins.
// Invalid credentials and unresolvable tenants both fail the login; the
// distinction stays in server logs.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	id, err := h.Directory.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			logger.FromGin(c).Error("credential validation failed", "err", err)
		}
		h.auditLoginFailed(c, req.Email)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.establishSession(c, id)
}

// Token exports the raw signed token for the caller's own active session.
func (h Handlers) Token(c *gin.Context) {
	sid, err := c.Cookie(sessionCookie)
	if err != nil || sid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}

	raw, err := h.Issuer.ExportRawToken(c.Request.Context(), sid)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.FromGin(c).Error("token export failed", "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": raw})
}

// Refresh re-issues the session token with new tenant/role claims. The UI
// calls this after a tenant switch, then re-fetches the raw token; any copy
// exported before this point lives on until its own expiry.
func (h Handlers) Refresh(c *gin.Context) {
	sid, err := c.Cookie(sessionCookie)
	if err != nil || sid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.TenantID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenantId required"})
		return
	}

	sess, err := h.Issuer.Refresh(c.Request.Context(), sid, RefreshPatch{TenantID: req.TenantID, Roles: req.Roles})
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
			return
		}
		logger.FromGin(c).Error("session refresh failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenantId": sess.TenantID, "roles": sess.Roles})
}

// Logout drops the session and clears the cookie.
func (h Handlers) Logout(c *gin.Context) {
	sid, err := c.Cookie(sessionCookie)
	if err == nil && sid != "" {
		if err := h.Issuer.Logout(c.Request.Context(), sid); err != nil {
			logger.FromGin(c).Error("logout failed", "err", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

/* ===================== FEDERATED LOGIN ===================== */

// OAuthStart redirects to the provider's authorization endpoint with a CSRF
// state bound to a short-lived cookie.
func (h Handlers) OAuthStart(c *gin.Context) {
	if h.Flow == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "federated login not configured"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int(oauthStateTTL.Seconds()), "/", "", h.CookieSecure, true)
	c.Redirect(http.StatusFound, h.Flow.AuthURL(state))
}

// OAuthCallback finishes the code flow: verify state, exchange the code,
// resolve-or-provision by email, then establish a session exactly like a
// credential login.
func (h Handlers) OAuthCallback(c *gin.Context) {
	if h.Flow == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "federated login not configured"})
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "authorization failed"})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	wantState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || code == "" || state != wantState {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.CookieSecure, true)

	profile, err := h.Flow.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.FromGin(c).Error("oauth exchange failed", "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}

	id, err := h.Directory.ResolveByEmail(c.Request.Context(), profile.Email, profile.Name, profile.Picture)
	if err != nil {
		// Includes ErrTenantMissing: a login that cannot resolve a tenant is
		// a failed login, never a tenant-less session.
		logger.FromGin(c).Warn("federated resolution failed", "err", err)
		h.auditLoginFailed(c, profile.Email)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}

	h.establishSession(c, id)
}

/* ===================== INTERNAL ===================== */

func (h Handlers) establishSession(c *gin.Context, id identity.Identity) {
	sess, err := h.Issuer.Login(c.Request.Context(), id)
	if err != nil {
		logger.FromGin(c).Warn("login aborted", "err", err, "user_id", id.ID)
		h.auditLoginFailed(c, id.Email)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}

	h.setSessionCookie(c, sess.ID, int(time.Until(sess.ExpiresAt).Seconds()))

	if h.Audit != nil {
		if err := h.Audit.LogLogin(c.Request.Context(), sess.TenantID, sess.UserID, c.ClientIP()); err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       sess.UserID,
		"email":    sess.Email,
		"name":     sess.Name,
		"roles":    sess.Roles,
		"tenantId": sess.TenantID,
	})
}

func (h Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, value, maxAge, "/", "", h.CookieSecure, true)
}

func (h Handlers) auditLoginFailed(c *gin.Context, email string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogLoginFailed(c.Request.Context(), email, c.ClientIP()); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}
