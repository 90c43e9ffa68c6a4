package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"healthline/internal/handlers"
	"healthline/internal/render"
	"healthline/internal/session"
)

// testRouter wires the full route table with nil stores. Requests without a
// session cookie never touch Valkey, and the routes exercised here never
// touch PostgreSQL.
func testRouter(t *testing.T) chi.Router {
	t.Helper()

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(redis.NewClient(&redis.Options{Addr: "localhost:1"}), false)

	public := handlers.NewPublic(renderer, nil, nil, nil, nil)
	account := handlers.NewAccount(renderer, sessions, nil, nil, nil)
	actions := handlers.NewActions(nil, nil, nil)
	admin := handlers.NewAdmin(renderer, nil, nil, nil, nil, nil, nil)
	adminAuth := handlers.NewAdminAuth(renderer, sessions, nil)

	r, limiter := New(sessions, public, account, actions, admin, adminAuth)
	t.Cleanup(limiter.Stop)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStaticAssetsServed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/images/placeholder.svg", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAdminRoutesGated(t *testing.T) {
	paths := []string{"/admin/", "/admin/dashboard", "/admin/articles/", "/admin/users/"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("%s: Location = %q, want /admin/login", path, loc)
		}
	}
}

func TestStateChangingRoutesRequireCSRF(t *testing.T) {
	paths := []string{"/signout", "/articles/123/save", "/admin/logout"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestSigninPageRenders(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signin", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
}
