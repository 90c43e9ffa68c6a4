package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// carry copies the flash cookie set on a recorder onto a fresh request, the
// way a browser would across a redirect. The last Set-Cookie header wins,
// matching browser behavior when a cookie is rewritten on one response.
func carry(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var latest *http.Cookie
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		if c.Name == cookieName {
			latest = c
		}
	}
	if latest != nil {
		req.AddCookie(&http.Cookie{Name: latest.Name, Value: latest.Value})
	}
	return req
}

func TestQueueAndPop(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/categories", nil)

	Success(rec, req, "Category created.")

	next := carry(t, rec)
	rec2 := httptest.NewRecorder()
	msgs := Pop(rec2, next)

	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Type != "success" || msgs[0].Text != "Category created." {
		t.Errorf("unexpected message %+v", msgs[0])
	}

	// Pop must clear the cookie.
	cleared := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Pop did not clear the flash cookie")
	}
}

func TestMultipleMessagesAccumulate(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	Error(rec, req, "first")

	// The second add on the same request must keep the first message.
	next := carry(t, rec)
	Info(rec, next, "second")

	msgs := Pop(httptest.NewRecorder(), carry(t, rec))
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Errorf("unexpected order: %+v", msgs)
	}
	if msgs[0].Type != "error" || msgs[1].Type != "info" {
		t.Errorf("unexpected types: %+v", msgs)
	}
}

func TestTwoMessagesOnOneResponse(t *testing.T) {
	// Two flashes queued while handling one request, with no cookie carry
	// in between, must both survive to the next render. The second add has
	// to read the pending response cookie, not the stale request.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)

	Info(rec, req, "first")
	Error(rec, req, "second")

	msgs := Pop(httptest.NewRecorder(), carry(t, rec))
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Errorf("unexpected order: %+v", msgs)
	}
}

func TestPopWithoutCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if msgs := Pop(rec, req); msgs != nil {
		t.Errorf("got %v, want nil", msgs)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Pop set a cookie with nothing queued")
	}
}

func TestMalformedCookieIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "%%%not-base64"})

	if msgs := Pop(httptest.NewRecorder(), req); msgs != nil {
		t.Errorf("got %v, want nil for malformed cookie", msgs)
	}
}
