// Package handlers contains the HTTP handler groups for the reader site,
// account pages, AJAX actions, and the admin panel.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"healthline/internal/markdown"
	"healthline/internal/middleware"
	"healthline/internal/models"
	"healthline/internal/render"
	"healthline/internal/store"
)

// Public groups handlers for the public-facing reader site.
type Public struct {
	renderer      *render.Renderer
	articles      *store.ArticleStore
	categories    *store.CategoryStore
	subcategories *store.SubCategoryStore
	profiles      *store.ProfileStore
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, articles *store.ArticleStore, categories *store.CategoryStore, subcategories *store.SubCategoryStore, profiles *store.ProfileStore) *Public {
	return &Public{
		renderer:      renderer,
		articles:      articles,
		categories:    categories,
		subcategories: subcategories,
		profiles:      profiles,
	}
}

// Home renders the landing page: one featured hero article, four trending
// articles (most-viewed when too few are flagged), a four-article featured
// panel (recent articles fill the gap), and the category list.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	hero, err := p.articles.FirstFeatured()
	if err != nil {
		slog.Error("load hero article failed", "error", err)
	}

	trending, err := p.articles.ListTrending(4)
	if err != nil {
		slog.Error("load trending articles failed", "error", err)
	}
	if len(trending) < 4 {
		trending = p.fillFrom(trending, 4, p.articles.ListMostViewed)
	}

	featured, err := p.articles.ListFeatured(4)
	if err != nil {
		slog.Error("load featured articles failed", "error", err)
	}
	if len(featured) < 4 {
		featured = p.fillFrom(featured, 4, p.articles.ListRecent)
	}

	categories, err := p.categories.List()
	if err != nil {
		slog.Error("load categories failed", "error", err)
	}

	p.renderer.Page(w, r, "site/home", &render.PageData{
		Title:   "HealthLine",
		Section: "home",
		Data: map[string]any{
			"Hero":       hero,
			"Trending":   trending,
			"Featured":   featured,
			"Categories": categories,
		},
	})
}

// fillFrom tops up a short article list to want entries using the fallback
// query, skipping articles already present.
func (p *Public) fillFrom(have []models.Article, want int, fallback func(int) ([]models.Article, error)) []models.Article {
	extra, err := fallback(want + len(have))
	if err != nil {
		slog.Error("fallback article query failed", "error", err)
		return have
	}

	seen := make(map[string]bool, len(have))
	for _, a := range have {
		seen[a.Slug] = true
	}
	for _, a := range extra {
		if len(have) >= want {
			break
		}
		if !seen[a.Slug] {
			have = append(have, a)
			seen[a.Slug] = true
		}
	}
	return have
}

// Category renders one category's published articles, optionally narrowed
// by a ?sub= subcategory slug.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	category, err := p.categories.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	subSlug := r.URL.Query().Get("sub")
	articles, err := p.articles.ListByCategory(category.ID, subSlug)
	if err != nil {
		slog.Error("list category articles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	subcategories, err := p.subcategories.ListByCategory(category.ID)
	if err != nil {
		slog.Error("list subcategories failed", "error", err)
	}

	p.renderer.Page(w, r, "site/category", &render.PageData{
		Title:   category.Name,
		Section: "category",
		Data: map[string]any{
			"Category":      category,
			"Articles":      articles,
			"SubCategories": subcategories,
			"ActiveSub":     subSlug,
		},
	})
}

// Article renders the article detail page. Every load increments the view
// counter by exactly one; the new count is what gets rendered. The page
// also reports whether the current user has saved or liked the article.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	article, err := p.articles.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find article failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if article == nil || !article.IsPublished() {
		http.NotFound(w, r)
		return
	}

	views, err := p.articles.IncrementViews(article.ID)
	if err != nil {
		slog.Error("increment views failed", "error", err, "slug", article.Slug)
	} else {
		article.Views = views
	}

	related, err := p.articles.Related(article.CategoryID, article.ID, 4)
	if err != nil {
		slog.Error("load related articles failed", "error", err)
	}

	// A user without a profile simply has nothing saved or liked yet.
	var isSaved, isLiked bool
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		profile, err := p.profiles.FindByUserID(sess.UserID)
		if err != nil {
			slog.Error("load profile failed", "error", err)
		} else if profile != nil {
			if isSaved, err = p.profiles.IsSaved(sess.UserID, article.ID); err != nil {
				slog.Error("saved lookup failed", "error", err)
			}
			if isLiked, err = p.profiles.IsLiked(sess.UserID, article.ID); err != nil {
				slog.Error("liked lookup failed", "error", err)
			}
		}
	}

	bodyHTML, err := markdown.ToHTML(article.Body)
	if err != nil {
		slog.Error("render article body failed", "error", err, "slug", article.Slug)
		bodyHTML = ""
	}

	p.renderer.Page(w, r, "site/article", &render.PageData{
		Title:   article.Title,
		Section: "article",
		Data: map[string]any{
			"Article":  article,
			"BodyHTML": bodyHTML,
			"Related":  related,
			"IsSaved":  isSaved,
			"IsLiked":  isLiked,
		},
	})
}

// Search performs a case-insensitive substring search across article title,
// excerpt, body, and category name. An empty query renders zero results
// without touching the database.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var results []models.Article
	if query != "" {
		var err error
		results, err = p.articles.Search(query)
		if err != nil {
			slog.Error("search failed", "error", err, "query", query)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	p.renderer.Page(w, r, "site/search", &render.PageData{
		Title:   "Search",
		Section: "search",
		Data: map[string]any{
			"Query":   query,
			"Results": results,
			"Count":   len(results),
		},
	})
}
