package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies articles into top-level health topics.
// Categories own their subcategories (cascade delete) and are referenced
// by articles; a category cannot be deleted while articles point at it.
type Category struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	UploadedImage *string   `json:"uploaded_image,omitempty"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Virtual field populated by store list methods.
	ArticleCount int `json:"article_count"`
}

// DisplayImage returns the image URL to render for this category.
// An explicit URL string wins over an uploaded file, matching how imported
// content carries external image references.
func (c *Category) DisplayImage() string {
	return resolveImage(c.ImageURL, c.UploadedImage)
}

// SubCategory refines a category into a more specific topic.
// The (category, slug) pair is unique; subcategories are removed together
// with their parent category.
type SubCategory struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}
