package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"healthline/internal/session"
)

func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, data))
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)

	RequireUser(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Errorf("Location = %q, want /signin", loc)
	}
}

func TestRequireUserPassesSignedIn(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/profile", nil),
		&session.Data{UserID: uuid.New(), Username: "reader"})

	RequireUser(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireStaffRemembersPathForAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)

	RequireStaff(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Location = %q, want /admin/login", loc)
	}

	var next string
	for _, c := range rec.Result().Cookies() {
		if c.Name == NextCookieName {
			next = c.Value
		}
	}
	if next != "/admin/articles" {
		t.Errorf("remembered path = %q, want /admin/articles", next)
	}
}

func TestRequireStaffRedirectsNonStaffHome(t *testing.T) {
	// Reader sign-in produces IsStaff:false, StaffVerified:false. A reader
	// hitting the admin panel is turned back home with a rejection flash,
	// never sent to the staff login form.
	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
		&session.Data{UserID: uuid.New(), Username: "reader"})

	RequireStaff(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	flashed := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hl_flash" && c.Value != "" {
			flashed = true
		}
	}
	if !flashed {
		t.Error("no rejection flash was queued")
	}
}

func TestRequireStaffSendsUnverifiedToCodeEntry(t *testing.T) {
	// A staff account that has not entered its TOTP code yet is not let
	// through; it goes to the code entry page with the path remembered.
	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/admin/articles", nil),
		&session.Data{UserID: uuid.New(), Username: "editor", IsStaff: true, StaffVerified: false})

	RequireStaff(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/2fa/verify" {
		t.Errorf("Location = %q, want /admin/2fa/verify", loc)
	}

	var next string
	for _, c := range rec.Result().Cookies() {
		if c.Name == NextCookieName {
			next = c.Value
		}
	}
	if next != "/admin/articles" {
		t.Errorf("remembered path = %q, want /admin/articles", next)
	}
}

func TestRequireStaffPassesVerifiedStaff(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
		&session.Data{UserID: uuid.New(), Username: "editor", IsStaff: true, StaffVerified: true})

	RequireStaff(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRememberNextRejectsOffsitePaths(t *testing.T) {
	for _, path := range []string{"/profile", "//evil.example/admin", "https://evil.example"} {
		rec := httptest.NewRecorder()
		RememberNext(rec, path)
		if len(rec.Result().Cookies()) != 0 {
			t.Errorf("RememberNext(%q) set a cookie", path)
		}
	}
}

func TestPopNext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: NextCookieName, Value: "/admin/newsletters"})
	rec := httptest.NewRecorder()

	if got := PopNext(rec, req); got != "/admin/newsletters" {
		t.Errorf("PopNext = %q, want /admin/newsletters", got)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == NextCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("PopNext did not clear the cookie")
	}
}

func TestPopNextFallback(t *testing.T) {
	// Missing cookie and tampered values both fall back to the dashboard.
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	if got := PopNext(httptest.NewRecorder(), req); got != "/admin/dashboard" {
		t.Errorf("PopNext without cookie = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: NextCookieName, Value: "/profile"})
	if got := PopNext(httptest.NewRecorder(), req); got != "/admin/dashboard" {
		t.Errorf("PopNext with non-admin path = %q", got)
	}
}

func TestSessionFromCtx(t *testing.T) {
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("got %+v, want nil", got)
	}

	data := &session.Data{Username: "reader"}
	ctx := context.WithValue(context.Background(), SessionKey, data)
	if got := SessionFromCtx(ctx); got != data {
		t.Errorf("got %+v, want the stored session", got)
	}
}
