// Package main implements the article importer. It reads a JSON fixture of
// article records, resolves or creates their categories and subcategories
// by slug, and upserts each article keyed by its slug, so reruns update
// rather than duplicate.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"

	"healthline/internal/config"
	"healthline/internal/database"
	"healthline/internal/models"
	"healthline/internal/slug"
	"healthline/internal/store"
)

// fixture mirrors the JSON document shape.
type fixture struct {
	Articles []articleRecord `json:"articles"`
}

// articleRecord is one article entry in the fixture.
type articleRecord struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	SubCategory string `json:"subcategory"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	ReadTime    string `json:"readTime"`
	Featured    bool   `json:"featured"`
}

func main() {
	path := flag.String("file", "data/articles.json", "path to the articles JSON fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		slog.Error("failed to read fixture", "error", err, "path", *path)
		os.Exit(1)
	}

	var doc fixture
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Error("failed to parse fixture", "error", err)
		os.Exit(1)
	}

	categories := store.NewCategoryStore(db)
	subcategories := store.NewSubCategoryStore(db)
	articles := store.NewArticleStore(db)

	var categoriesCreated, subcategoriesCreated, created, updated int

	for _, rec := range doc.Articles {
		if rec.Slug == "" {
			rec.Slug = slug.Generate(rec.Title)
		}
		if rec.Slug == "" {
			slog.Warn("skipping article without title or slug")
			continue
		}

		categorySlug := slug.Generate(rec.Category)
		if categorySlug == "" {
			categorySlug = "general"
		}
		category, wasCreated, err := categories.GetOrCreateBySlug(categorySlug, slug.Titleize(categorySlug))
		if err != nil {
			slog.Error("resolve category failed", "error", err, "slug", categorySlug)
			os.Exit(1)
		}
		if wasCreated {
			categoriesCreated++
		}

		article := &models.Article{
			Title:      rec.Title,
			Slug:       rec.Slug,
			Excerpt:    rec.Excerpt,
			Body:       rec.Content,
			ImageURL:   rec.Image,
			CategoryID: category.ID,
			Author:     rec.Author,
			ReadTime:   parseReadTime(rec.ReadTime),
			Featured:   rec.Featured,
			Status:     models.ArticleStatusPublished,
		}
		if article.Author == "" {
			article.Author = models.DefaultAuthor
		}

		if rec.SubCategory != "" {
			subSlug := slug.Generate(rec.SubCategory)
			sub, wasCreated, err := subcategories.GetOrCreate(category.ID, subSlug, slug.Titleize(subSlug))
			if err != nil {
				slog.Error("resolve subcategory failed", "error", err, "slug", subSlug)
				os.Exit(1)
			}
			if wasCreated {
				subcategoriesCreated++
			}
			article.SubCategoryID = &sub.ID
		}

		wasCreated, err = articles.UpsertBySlug(article)
		if err != nil {
			slog.Error("upsert article failed", "error", err, "slug", article.Slug)
			os.Exit(1)
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}

	slog.Info("import complete",
		"categories_created", categoriesCreated,
		"subcategories_created", subcategoriesCreated,
		"articles_created", created,
		"articles_updated", updated,
	)
}

// parseReadTime extracts the leading digit run from a free-text read time
// ("8 min read" → 8), defaulting to 5 when there is none.
func parseReadTime(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if i == 0 || n == 0 {
		return 5
	}
	return n
}
