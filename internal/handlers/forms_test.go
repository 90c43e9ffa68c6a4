package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"healthline/internal/models"
)

func formRequest(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseCategoryFormDerivesSlug(t *testing.T) {
	req := formRequest(t, url.Values{"name": {"Mental Health"}})

	f := parseCategoryForm(req)
	if f.Slug != "mental-health" {
		t.Errorf("Slug = %q, want mental-health", f.Slug)
	}
	if msg := f.validate(); msg != "" {
		t.Errorf("validate = %q, want empty", msg)
	}
}

func TestParseCategoryFormKeepsExplicitSlug(t *testing.T) {
	req := formRequest(t, url.Values{
		"name":       {"Mental Health"},
		"slug":       {"mind"},
		"sort_order": {"3"},
	})

	f := parseCategoryForm(req)
	if f.Slug != "mind" {
		t.Errorf("Slug = %q, want mind", f.Slug)
	}
	if f.SortOrder != 3 {
		t.Errorf("SortOrder = %d, want 3", f.SortOrder)
	}
}

func TestCategoryFormValidate(t *testing.T) {
	f := categoryForm{}
	if msg := f.validate(); msg != "Name is required." {
		t.Errorf("validate = %q", msg)
	}

	f = categoryForm{Name: strings.Repeat("x", maxNameLen+1)}
	if msg := f.validate(); !strings.Contains(msg, "too long") {
		t.Errorf("validate = %q, want length error", msg)
	}
}

func TestParseArticleFormDefaults(t *testing.T) {
	catID := uuid.New()
	req := formRequest(t, url.Values{
		"title":       {"Benefits of Sleep"},
		"category_id": {catID.String()},
	})

	f := parseArticleForm(req)

	if f.Slug != "benefits-of-sleep" {
		t.Errorf("Slug = %q", f.Slug)
	}
	if f.ReadTime != 5 {
		t.Errorf("ReadTime = %d, want default 5", f.ReadTime)
	}
	if f.Author != models.DefaultAuthor {
		t.Errorf("Author = %q, want default", f.Author)
	}
	if f.Status != models.ArticleStatusPublished {
		t.Errorf("Status = %q, want published", f.Status)
	}
	if f.Featured || f.Trending {
		t.Error("flags should default to false")
	}
	if f.SubCategoryID != nil {
		t.Error("SubCategoryID should default to nil")
	}
	if msg := f.validate(); msg != "" {
		t.Errorf("validate = %q, want empty", msg)
	}
}

func TestParseArticleFormExplicitValues(t *testing.T) {
	catID := uuid.New()
	subID := uuid.New()
	req := formRequest(t, url.Values{
		"title":          {"Strength Training 101"},
		"slug":           {"strength-101"},
		"category_id":    {catID.String()},
		"subcategory_id": {subID.String()},
		"author":         {"Dr. Rivera"},
		"read_time":      {"12"},
		"featured":       {"on"},
		"trending":       {"on"},
		"status":         {"draft"},
	})

	f := parseArticleForm(req)

	if f.Slug != "strength-101" || f.Author != "Dr. Rivera" || f.ReadTime != 12 {
		t.Errorf("unexpected parse: %+v", f)
	}
	if !f.Featured || !f.Trending {
		t.Error("checkbox flags not parsed")
	}
	if f.Status != models.ArticleStatusDraft {
		t.Errorf("Status = %q, want draft", f.Status)
	}
	if f.SubCategoryID == nil || *f.SubCategoryID != subID {
		t.Errorf("SubCategoryID = %v, want %s", f.SubCategoryID, subID)
	}
}

func TestArticleFormValidate(t *testing.T) {
	tests := []struct {
		name string
		form articleForm
		want string
	}{
		{"missing title", articleForm{CategoryID: uuid.New(), ReadTime: 5}, "Title is required."},
		{"missing category", articleForm{Title: "x", ReadTime: 5}, "Category is required."},
		{"zero read time", articleForm{Title: "x", CategoryID: uuid.New()}, "Read time must be at least 1 minute."},
		{"valid", articleForm{Title: "x", CategoryID: uuid.New(), ReadTime: 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.validate(); got != tt.want {
				t.Errorf("validate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticleFormToModel(t *testing.T) {
	catID := uuid.New()
	f := articleForm{
		Title:      "Hydration Myths",
		Slug:       "hydration-myths",
		CategoryID: catID,
		Author:     "Staff",
		ReadTime:   7,
		Status:     models.ArticleStatusPublished,
	}

	a := f.toModel()
	if a.Title != f.Title || a.Slug != f.Slug || a.CategoryID != catID {
		t.Errorf("toModel mismatch: %+v", a)
	}
	if a.Views != 0 || a.Likes != 0 {
		t.Error("counters must start at zero")
	}
}

func TestSignupFormValidate(t *testing.T) {
	tests := []struct {
		name string
		form signupForm
		ok   bool
	}{
		{"valid", signupForm{Username: "reader", Email: "r@example.com", Password: "longenough"}, true},
		{"no username", signupForm{Email: "r@example.com", Password: "longenough"}, false},
		{"bad email", signupForm{Username: "reader", Email: "nope", Password: "longenough"}, false},
		{"short password", signupForm{Username: "reader", Email: "r@example.com", Password: "short"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.form.validate()
			if tt.ok && msg != "" {
				t.Errorf("validate = %q, want empty", msg)
			}
			if !tt.ok && msg == "" {
				t.Error("validate passed, want error")
			}
		})
	}
}

func TestIntOrDefault(t *testing.T) {
	if got := intOrDefault("", 5); got != 5 {
		t.Errorf("empty = %d, want 5", got)
	}
	if got := intOrDefault("abc", 5); got != 5 {
		t.Errorf("malformed = %d, want 5", got)
	}
	if got := intOrDefault("9", 5); got != 9 {
		t.Errorf("numeric = %d, want 9", got)
	}
}
