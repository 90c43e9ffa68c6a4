package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"healthline/internal/models"
	"healthline/internal/slug"
)

// Validation limits for form fields.
const (
	maxNameLen    = 200
	maxSlugLen    = 200
	maxTitleLen   = 300
	maxExcerptLen = 1_000
	maxBodyLen    = 200_000
	maxEmailLen   = 254
)

// categoryForm holds the parsed category create/edit form. Every field has
// a declared default; parsing never fails, validation reports the first
// problem as a user-visible string.
type categoryForm struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
}

func parseCategoryForm(r *http.Request) categoryForm {
	f := categoryForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}
	f.SortOrder = intOrDefault(r.FormValue("sort_order"), 0)
	if f.Slug == "" {
		f.Slug = slug.Generate(f.Name)
	}
	return f
}

func (f categoryForm) validate() string {
	if f.Name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(f.Name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(f.Slug) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	return ""
}

// toModel builds a Category from the form fields.
func (f categoryForm) toModel() *models.Category {
	return &models.Category{
		Name:        f.Name,
		Slug:        f.Slug,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		SortOrder:   f.SortOrder,
	}
}

// articleForm holds the parsed article create/edit form.
type articleForm struct {
	Title         string
	Slug          string
	Excerpt       string
	Body          string
	ImageURL      string
	CategoryID    uuid.UUID
	SubCategoryID *uuid.UUID
	Author        string
	ReadTime      int
	Featured      bool
	Trending      bool
	Status        models.ArticleStatus
}

func parseArticleForm(r *http.Request) articleForm {
	f := articleForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Slug:     strings.TrimSpace(r.FormValue("slug")),
		Excerpt:  strings.TrimSpace(r.FormValue("excerpt")),
		Body:     r.FormValue("body"),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
		Author:   strings.TrimSpace(r.FormValue("author")),
		ReadTime: intOrDefault(r.FormValue("read_time"), 5),
		Featured: r.FormValue("featured") == "on",
		Trending: r.FormValue("trending") == "on",
		Status:   models.ArticleStatusPublished,
	}
	if f.Slug == "" {
		f.Slug = slug.Generate(f.Title)
	}
	if f.Author == "" {
		f.Author = models.DefaultAuthor
	}
	if r.FormValue("status") == string(models.ArticleStatusDraft) {
		f.Status = models.ArticleStatusDraft
	}
	if id, err := uuid.Parse(r.FormValue("category_id")); err == nil {
		f.CategoryID = id
	}
	if id, err := uuid.Parse(r.FormValue("subcategory_id")); err == nil {
		f.SubCategoryID = &id
	}
	return f
}

func (f articleForm) validate() string {
	if f.Title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(f.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(f.Slug) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(f.Excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(f.Body) > maxBodyLen {
		return "Body is too long (max 200,000 characters)."
	}
	if f.CategoryID == uuid.Nil {
		return "Category is required."
	}
	if f.ReadTime < 1 {
		return "Read time must be at least 1 minute."
	}
	return ""
}

// toModel builds an Article from the form fields.
func (f articleForm) toModel() *models.Article {
	return &models.Article{
		Title:         f.Title,
		Slug:          f.Slug,
		Excerpt:       f.Excerpt,
		Body:          f.Body,
		ImageURL:      f.ImageURL,
		CategoryID:    f.CategoryID,
		SubCategoryID: f.SubCategoryID,
		Author:        f.Author,
		ReadTime:      f.ReadTime,
		Featured:      f.Featured,
		Trending:      f.Trending,
		Status:        f.Status,
	}
}

// signupForm holds the parsed reader registration form.
type signupForm struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func parseSignupForm(r *http.Request) signupForm {
	return signupForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
}

func (f signupForm) validate() string {
	if f.Username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(f.Username) > maxNameLen {
		return "Username is too long."
	}
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(f.Email) > maxEmailLen {
		return "Email is too long."
	}
	if len(f.Password) < 8 {
		return "Password must be at least 8 characters."
	}
	return ""
}

// profileForm holds the parsed profile update form.
type profileForm struct {
	Email     string
	FirstName string
	LastName  string
}

func parseProfileForm(r *http.Request) profileForm {
	return profileForm{
		Email:     strings.TrimSpace(r.FormValue("email")),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
}

func (f profileForm) validate() string {
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(f.Email) > maxEmailLen {
		return "Email is too long."
	}
	return ""
}

// intOrDefault parses a form value as an integer, falling back when the
// value is empty or malformed.
func intOrDefault(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
