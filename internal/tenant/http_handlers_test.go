package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saas-platform/internal/authn"

	"github.com/gin-gonic/gin"
)

type stubSwitcher struct {
	switchFn func(ctx context.Context, userID, targetTenantID string) (SwitchResult, error)
	listFn   func(ctx context.Context, userID string) ([]Membership, error)
}

func (s stubSwitcher) Switch(ctx context.Context, userID, targetTenantID string) (SwitchResult, error) {
	return s.switchFn(ctx, userID, targetTenantID)
}

func (s stubSwitcher) Memberships(ctx context.Context, userID string) ([]Membership, error) {
	return s.listFn(ctx, userID)
}

func serveWithPrincipal(h gin.HandlerFunc, p *authn.Principal, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		if p != nil {
			c.Request = c.Request.WithContext(authn.WithPrincipal(c.Request.Context(), *p))
		}
		h(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestSwitchHandlerReturnsSwitchResult(t *testing.T) {
	h := Handlers{Tenants: stubSwitcher{
		switchFn: func(_ context.Context, userID, target string) (SwitchResult, error) {
			if userID != "u1" || target != "t2" {
				t.Fatalf("unexpected args: %s %s", userID, target)
			}
			return SwitchResult{UserID: "u1", TenantID: "t2", Roles: []string{"admin"}, TenantRole: "member"}, nil
		},
	}}

	p := &authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"admin"}}
	w := serveWithPrincipal(h.Switch, p, http.MethodPost, "/tenants/switch", `{"tenantId":"t2"}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got["id"] != "u1" || got["tenantId"] != "t2" || got["tenantRole"] != "member" {
		t.Fatalf("body = %v", got)
	}
	if _, ok := got["roles"]; !ok {
		t.Fatalf("roles missing from body: %v", got)
	}
}

func TestSwitchHandlerNonMemberIs404(t *testing.T) {
	h := Handlers{Tenants: stubSwitcher{
		switchFn: func(context.Context, string, string) (SwitchResult, error) {
			return SwitchResult{}, ErrNotMember
		},
	}}

	p := &authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"user"}}
	w := serveWithPrincipal(h.Switch, p, http.MethodPost, "/tenants/switch", `{"tenantId":"t9"}`)
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "does not belong") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSwitchHandlerRequiresPrincipal(t *testing.T) {
	h := Handlers{Tenants: stubSwitcher{
		switchFn: func(context.Context, string, string) (SwitchResult, error) {
			t.Fatal("switch must not be called")
			return SwitchResult{}, nil
		},
	}}

	w := serveWithPrincipal(h.Switch, nil, http.MethodPost, "/tenants/switch", `{"tenantId":"t2"}`)
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSwitchHandlerRequiresTenantID(t *testing.T) {
	h := Handlers{Tenants: stubSwitcher{
		switchFn: func(context.Context, string, string) (SwitchResult, error) {
			t.Fatal("switch must not be called")
			return SwitchResult{}, nil
		},
	}}

	p := &authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"user"}}
	w := serveWithPrincipal(h.Switch, p, http.MethodPost, "/tenants/switch", `{}`)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListHandlerReturnsEmptySliceNotNull(t *testing.T) {
	h := Handlers{Tenants: stubSwitcher{
		listFn: func(context.Context, string) ([]Membership, error) {
			return nil, nil
		},
	}}

	p := &authn.Principal{ID: "u1", TenantID: "t1", Roles: []string{"user"}}
	w := serveWithPrincipal(h.List, p, http.MethodGet, "/tenants", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"tenants":[]`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}
