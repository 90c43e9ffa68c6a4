// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// DefaultAuthor is used when an article is created without an author name.
const DefaultAuthor = "HealthLine Team"

// Article is a single piece of health content. The view and like counters
// are adjusted atomically by the store; they never go negative.
type Article struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Body          string        `json:"body"`
	ImageURL      string        `json:"image_url"`
	UploadedImage *string       `json:"uploaded_image,omitempty"`
	CategoryID    uuid.UUID     `json:"category_id"`
	SubCategoryID *uuid.UUID    `json:"subcategory_id,omitempty"`
	Author        string        `json:"author"`
	ReadTime      int           `json:"read_time"`
	Views         int           `json:"views"`
	Likes         int           `json:"likes"`
	Featured      bool          `json:"featured"`
	Trending      bool          `json:"trending"`
	Status        ArticleStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Virtual fields populated by store methods via joins.
	CategoryName string `json:"category_name,omitempty"`
	CategorySlug string `json:"category_slug,omitempty"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// DisplayImage returns the image URL to render for this article.
func (a *Article) DisplayImage() string {
	return resolveImage(a.ImageURL, a.UploadedImage)
}

// placeholderImage is served when an entity has no image reference at all.
const placeholderImage = "/static/images/placeholder.svg"

// resolveImage picks a renderable URL from an explicit URL string and an
// uploaded-file URL. The explicit string takes priority: absolute URLs and
// absolute paths pass through, static-looking paths get a /static/ prefix,
// and bare names are assumed to live in the articles image folder.
func resolveImage(imageURL string, uploaded *string) string {
	if imageURL != "" {
		switch {
		case strings.HasPrefix(imageURL, "http://"), strings.HasPrefix(imageURL, "https://"):
			return imageURL
		case strings.HasPrefix(imageURL, "/"):
			return imageURL
		case strings.HasPrefix(imageURL, "images/"):
			return "/static/" + imageURL
		default:
			return "/static/images/articles/" + imageURL
		}
	}
	if uploaded != nil && *uploaded != "" {
		return *uploaded
	}
	return placeholderImage
}
