package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"saas-platform/internal/audit"
	"saas-platform/internal/identity"
	"saas-platform/internal/token"

	"github.com/gin-gonic/gin"
)

type fakeDirectory struct {
	byCredentials map[string]identity.Identity
	byEmail       map[string]identity.Identity
}

func (f *fakeDirectory) ValidateCredentials(_ context.Context, email, password string) (identity.Identity, error) {
	id, ok := f.byCredentials[email+":"+password]
	if !ok {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	return id, nil
}

func (f *fakeDirectory) ResolveByEmail(_ context.Context, email, _, _ string) (identity.Identity, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return identity.Identity{}, identity.ErrTenantMissing
	}
	return id, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *token.Codec, *audit.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	iss, codec := newTestIssuer(t)
	repo := audit.NewMemoryRepo()

	dir := &fakeDirectory{
		byCredentials: map[string]identity.Identity{
			"ada@example.com:pw": testIdentity(),
		},
	}

	h := Handlers{Issuer: iss, Directory: dir, Audit: audit.NewService(repo)}

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.GET("/auth/token", h.Token)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	return r, codec, repo
}

func sessionCookieOf(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie && ck.Value != "" {
			return ck
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestLoginThenTokenExport(t *testing.T) {
	r, codec, auditRepo := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"pw"}`))
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	ck := sessionCookieOf(t, w)

	var loginResp struct {
		ID       string   `json:"id"`
		TenantID string   `json:"tenantId"`
		Roles    []string `json:"roles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("login body: %v", err)
	}
	if loginResp.ID != "u1" || loginResp.TenantID != "t1" {
		t.Fatalf("unexpected login response: %+v", loginResp)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/token", nil)
	req.AddCookie(ck)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("token: expected 200, got %d", w.Code)
	}

	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("token body: %v", err)
	}
	claims, err := codec.Decode(tokenResp.Token, time.Now())
	if err != nil {
		t.Fatalf("exported token must verify: %v", err)
	}
	if claims.Subject != "u1" || claims.TenantID != "t1" {
		t.Fatalf("exported claims: %+v", claims)
	}

	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventTypeLogin {
		t.Fatalf("expected a login audit event, got %+v", evs)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _, auditRepo := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))
	r.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventTypeLoginFailed {
		t.Fatalf("expected a login_failed audit event, got %+v", evs)
	}
}

func TestTokenExportRequiresSession(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/token", nil))
	if w.Code != 401 {
		t.Fatalf("expected 401 without cookie, got %d", w.Code)
	}
}

func TestRefreshReissuesAndLogoutInvalidates(t *testing.T) {
	r, codec, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"pw"}`))
	r.ServeHTTP(w, req)
	ck := sessionCookieOf(t, w)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"tenantId":"t2","roles":["user"]}`))
	req.AddCookie(ck)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/token", nil)
	req.AddCookie(ck)
	r.ServeHTTP(w, req)
	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("token body: %v", err)
	}
	claims, err := codec.Decode(tokenResp.Token, time.Now())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.TenantID != "t2" {
		t.Fatalf("expected refreshed tenant claim, got %q", claims.TenantID)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(ck)
	r.ServeHTTP(w, req)
	if w.Code != 204 {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/token", nil)
	req.AddCookie(ck)
	r.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
