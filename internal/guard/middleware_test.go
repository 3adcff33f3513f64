package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"saas-platform/internal/authn"

	"github.com/gin-gonic/gin"
)

func withPrincipal(p authn.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(authn.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func serve(t *testing.T, mw ...gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.Status(200) })
	r.GET("/x", handlers...)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireAnyRole_PassesOnIntersection(t *testing.T) {
	p := authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"user", "powerUser"}}
	if code := serve(t, withPrincipal(p), RequireTenant(), RequireAnyRole(RolePowerUser, RoleAdmin)); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_ForbiddenWithoutIntersection(t *testing.T) {
	// Valid, unexpired, tenant-scoped principal; role set still decides.
	p := authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"user"}}
	if code := serve(t, withPrincipal(p), RequireTenant(), RequireAnyRole(RoleAdmin, RolePowerUser)); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_UnauthenticatedIs401(t *testing.T) {
	if code := serve(t, RequireAnyRole(RoleAdmin)); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireTenant_RejectsMissingTenant(t *testing.T) {
	p := authn.Principal{ID: "u1", Roles: []string{RoleAdmin}}
	if code := serve(t, withPrincipal(p), RequireTenant(), RequireAnyRole(RoleAdmin)); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireTenant_RejectsNoPrincipal(t *testing.T) {
	if code := serve(t, RequireTenant()); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}
