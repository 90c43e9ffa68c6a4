package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"healthline/internal/render"
)

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

func TestSearchEmptyQuerySkipsDatabase(t *testing.T) {
	// The handler gets a nil article store: any database access on the
	// empty-query path would panic the test.
	p := NewPublic(testRenderer(t), nil, nil, nil, nil)

	for _, target := range []string{"/search", "/search?q=", "/search?q=%20%20"} {
		rec := httptest.NewRecorder()
		p.Search(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", target, rec.Code)
		}
	}
}
