package models

import "testing"

func strPtr(s string) *string { return &s }

func TestResolveImage(t *testing.T) {
	tests := []struct {
		name     string
		imageURL string
		uploaded *string
		want     string
	}{
		{"absolute url", "https://cdn.example.com/a.jpg", nil, "https://cdn.example.com/a.jpg"},
		{"absolute path", "/media/a.jpg", nil, "/media/a.jpg"},
		{"static-relative", "images/heart.jpg", nil, "/static/images/heart.jpg"},
		{"bare filename", "heart.jpg", nil, "/static/images/articles/heart.jpg"},
		{"uploaded fallback", "", strPtr("https://s3.example.com/b.jpg"), "https://s3.example.com/b.jpg"},
		{"url beats upload", "https://cdn.example.com/a.jpg", strPtr("https://s3.example.com/b.jpg"), "https://cdn.example.com/a.jpg"},
		{"placeholder", "", nil, placeholderImage},
		{"empty upload", "", strPtr(""), placeholderImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveImage(tt.imageURL, tt.uploaded); got != tt.want {
				t.Errorf("resolveImage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticleIsPublished(t *testing.T) {
	a := &Article{Status: ArticleStatusPublished}
	if !a.IsPublished() {
		t.Error("published article reported unpublished")
	}
	a.Status = ArticleStatusDraft
	if a.IsPublished() {
		t.Error("draft article reported published")
	}
}
