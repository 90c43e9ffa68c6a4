package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"healthline/internal/flash"
	"healthline/internal/models"
	"healthline/internal/render"
	"healthline/internal/store"
)

// ArticleList renders the paginated article list with category, status,
// and title filters.
func (h *Admin) ArticleList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	filter := store.Filter{
		CategorySlug: r.URL.Query().Get("category"),
		TitleSearch:  strings.TrimSpace(r.URL.Query().Get("q")),
	}
	switch r.URL.Query().Get("status") {
	case string(models.ArticleStatusDraft):
		filter.Status = models.ArticleStatusDraft
	case string(models.ArticleStatusPublished):
		filter.Status = models.ArticleStatusPublished
	}

	articles, err := h.articles.List(filter, adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		slog.Error("list articles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	total, err := h.articles.CountFiltered(filter)
	if err != nil {
		slog.Error("count articles failed", "error", err)
	}

	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	h.renderer.Page(w, r, "admin/article_list", &render.PageData{
		Title:   "Articles",
		Section: "articles",
		Data: map[string]any{
			"Articles":       articles,
			"Categories":     categories,
			"FilterCategory": filter.CategorySlug,
			"FilterStatus":   string(filter.Status),
			"FilterQuery":    filter.TitleSearch,
			"Page":           page,
			"TotalPages":     totalPages(total),
		},
	})
}

// ArticleNew renders an empty article form.
func (h *Admin) ArticleNew(w http.ResponseWriter, r *http.Request) {
	h.renderArticleForm(w, r, "New Article", nil, articleForm{ReadTime: 5, Author: models.DefaultAuthor, Status: models.ArticleStatusPublished}, "")
}

// ArticleCreate handles the new-article form post.
func (h *Admin) ArticleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flash.Error(w, r, "Upload is too large (max 10 MB).")
		http.Redirect(w, r, "/admin/articles/new", http.StatusSeeOther)
		return
	}

	form := parseArticleForm(r)
	if msg := form.validate(); msg != "" {
		h.renderArticleForm(w, r, "New Article", nil, form, msg)
		return
	}

	taken, err := h.articles.SlugExists(form.Slug, uuid.Nil)
	if err != nil {
		slog.Error("article slug check failed", "error", err)
		h.renderArticleForm(w, r, "New Article", nil, form, "An unexpected error occurred.")
		return
	}
	if taken {
		h.renderArticleForm(w, r, "New Article", nil, form,
			fmt.Sprintf("An article with slug %q already exists.", form.Slug))
		return
	}

	article := form.toModel()
	if uploaded, ok := h.handleImageUpload(w, r, "articles"); ok {
		article.UploadedImage = uploaded
		if uploaded != nil {
			article.ImageURL = ""
		}
	} else {
		return
	}

	if _, err := h.articles.Create(article); err != nil {
		slog.Error("create article failed", "error", err)
		h.renderArticleForm(w, r, "New Article", nil, form, "An unexpected error occurred.")
		return
	}

	flash.Success(w, r, fmt.Sprintf("Article %q created.", article.Title))
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

// ArticleEdit renders the edit form for an existing article.
func (h *Admin) ArticleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	article, err := h.articles.FindByID(id)
	if err != nil {
		slog.Error("find article failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if article == nil {
		http.NotFound(w, r)
		return
	}

	h.renderArticleFormFor(w, r, "Edit Article", article, nil, "")
}

// ArticleUpdate handles the edit form post.
func (h *Admin) ArticleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	article, err := h.articles.FindByID(id)
	if err != nil || article == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flash.Error(w, r, "Upload is too large (max 10 MB).")
		http.Redirect(w, r, "/admin/articles/"+id.String()+"/edit", http.StatusSeeOther)
		return
	}

	form := parseArticleForm(r)
	if msg := form.validate(); msg != "" {
		h.renderArticleFormFor(w, r, "Edit Article", article, &form, msg)
		return
	}

	taken, err := h.articles.SlugExists(form.Slug, id)
	if err != nil {
		slog.Error("article slug check failed", "error", err)
		h.renderArticleFormFor(w, r, "Edit Article", article, &form, "An unexpected error occurred.")
		return
	}
	if taken {
		h.renderArticleFormFor(w, r, "Edit Article", article, &form,
			fmt.Sprintf("An article with slug %q already exists.", form.Slug))
		return
	}

	article.Title = form.Title
	article.Slug = form.Slug
	article.Excerpt = form.Excerpt
	article.Body = form.Body
	article.ImageURL = form.ImageURL
	article.CategoryID = form.CategoryID
	article.SubCategoryID = form.SubCategoryID
	article.Author = form.Author
	article.ReadTime = form.ReadTime
	article.Featured = form.Featured
	article.Trending = form.Trending
	article.Status = form.Status

	if uploaded, ok := h.handleImageUpload(w, r, "articles"); ok {
		if uploaded != nil {
			article.UploadedImage = uploaded
			article.ImageURL = ""
		}
	} else {
		return
	}

	if err := h.articles.Update(article); err != nil {
		slog.Error("update article failed", "error", err)
		h.renderArticleFormFor(w, r, "Edit Article", article, &form, "An unexpected error occurred.")
		return
	}

	flash.Success(w, r, fmt.Sprintf("Article %q updated.", article.Title))
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

// ArticleDelete removes an article unconditionally.
func (h *Admin) ArticleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	article, err := h.articles.FindByID(id)
	if err != nil || article == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.articles.Delete(id); err != nil {
		slog.Error("delete article failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, fmt.Sprintf("Article %q deleted.", article.Title))
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

func (h *Admin) renderArticleForm(w http.ResponseWriter, r *http.Request, title string, existing *models.Article, form articleForm, errMsg string) {
	h.renderArticleFormFor(w, r, title, existing, &form, errMsg)
}

// renderArticleFormFor renders the article form with category and
// subcategory dropdowns populated. form may be nil when re-rendering an
// untouched article.
func (h *Admin) renderArticleFormFor(w http.ResponseWriter, r *http.Request, title string, existing *models.Article, form *articleForm, errMsg string) {
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	subcategories, err := h.subcategories.ListAll()
	if err != nil {
		slog.Error("list subcategories failed", "error", err)
	}

	data := map[string]any{
		"Article":        existing,
		"Categories":     categories,
		"SubCategories":  subcategories,
		"Error":          errMsg,
		"UploadsEnabled": h.storage != nil,
	}
	if form != nil {
		data["Form"] = *form
	}

	h.renderer.Page(w, r, "admin/article_form", &render.PageData{
		Title:   title,
		Section: "articles",
		Data:    data,
	})
}
