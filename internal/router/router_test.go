package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/handlers"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/token"
)

// fakeDirectory satisfies middleware.PlanDirectory for routing tests.
type fakeDirectory struct {
	users map[uuid.UUID]*models.User
}

func (d *fakeDirectory) FindByID(id uuid.UUID) (*models.User, error) {
	return d.users[id], nil
}

// newTestRouter builds a router with nil-store handler groups. Only routes
// that never reach a store are exercised here; the handler packages own the
// behavioral tests.
func newTestRouter(limiter *middleware.RateLimiter) (http.Handler, *token.Issuer, *fakeDirectory) {
	issuer := token.NewIssuer([]byte("router-test-secret-0123456789ab"))
	dir := &fakeDirectory{users: map[uuid.UUID]*models.User{}}

	r := New(Config{
		Issuer:       issuer,
		Users:        dir,
		Auth:         &handlers.Auth{},
		Jobs:         &handlers.Jobs{},
		AI:           &handlers.AI{},
		CoverLetters: &handlers.CoverLetters{},
		Analytics:    &handlers.Analytics{},
		ClientOrigin: "http://localhost:5173",
		AuthLimiter:  limiter,
	})
	return r, issuer, dir
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health response is not JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, _, _ := newTestRouter(nil)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPatch, "/api/auth/profile"},
		{http.MethodPost, "/api/auth/2fa/setup"},
		{http.MethodGet, "/api/jobs"},
		{http.MethodGet, "/api/jobs/stats"},
		{http.MethodPost, "/api/jobs"},
		{http.MethodPost, "/api/ai/match"},
		{http.MethodGet, "/api/cover-letters"},
		{http.MethodGet, "/api/analytics/monthly"},
	}

	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", rt.method, rt.path, rec.Code)
		}
	}
}

func TestAIRoutesRequireProPlan(t *testing.T) {
	r, issuer, dir := newTestRouter(nil)

	userID := uuid.New()
	dir.users[userID] = &models.User{ID: userID, Plan: models.PlanFree}
	session, err := issuer.IssueSession(userID)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/ai/match", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+session)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("free plan on AI route: status = %d, want 403", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["upgrade"] != true {
		t.Errorf("expected upgrade marker, got %v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	r, _, _ := newTestRouter(middleware.NewRateLimiter(3, time.Minute))

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
		req.RemoteAddr = "10.1.2.3:4000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("fourth request: status = %d, want 429", last)
	}

	// Protected routes are not behind the auth limiter.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d: protected route hit the auth limiter", i)
		}
	}
}

func TestDefaultAuthLimiter(t *testing.T) {
	limiter := DefaultAuthLimiter()
	if limiter == nil {
		t.Fatal("nil limiter")
	}

	// 20 requests pass, the 21st does not.
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	var last int
	for i := 0; i < 21; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.9:%d", 1000+i)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("21st request: status = %d, want 429", last)
	}
}
