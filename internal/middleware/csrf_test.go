package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFIssuesCookieOnGet(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/signin", nil)

	CSRF(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			token = c.Value
		}
	}
	if len(token) != csrfTokenLength*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), csrfTokenLength*2)
	}
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)

	CSRF(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "aaaa"})
	req.Header.Set(CSRFHeaderName, "bbbb")

	CSRF(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCSRFAcceptsMatchingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/x/like", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token123"})
	req.Header.Set(CSRFHeaderName, "token123")

	CSRF(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCSRFAcceptsMatchingFormField(t *testing.T) {
	form := url.Values{CSRFFormField: {"token123"}, "name": {"Fitness"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token123"})
	rec := httptest.NewRecorder()

	CSRF(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("GetCSRFToken without cookie = %q, want empty", got)
	}

	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
	if got := GetCSRFToken(req); got != "tok" {
		t.Errorf("GetCSRFToken = %q, want %q", got, "tok")
	}
}
