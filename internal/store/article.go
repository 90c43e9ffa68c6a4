package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthline/internal/models"
)

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `a.id, a.title, a.slug, a.excerpt, a.body, a.image_url, a.uploaded_image,
	a.category_id, a.subcategory_id, a.author, a.read_time, a.views, a.likes,
	a.featured, a.trending, a.status, a.created_at, a.updated_at`

// scanArticle scans a plain article row (no joined columns).
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Body, &a.ImageURL, &a.UploadedImage,
		&a.CategoryID, &a.SubCategoryID, &a.Author, &a.ReadTime, &a.Views, &a.Likes,
		&a.Featured, &a.Trending, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// queryArticles runs a query whose SELECT list is articleColumns plus the
// joined category name and slug, and scans all rows.
func (s *ArticleStore) queryArticles(query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		var a models.Article
		err := rows.Scan(
			&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Body, &a.ImageURL, &a.UploadedImage,
			&a.CategoryID, &a.SubCategoryID, &a.Author, &a.ReadTime, &a.Views, &a.Likes,
			&a.Featured, &a.Trending, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&a.CategoryName, &a.CategorySlug,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const joinedSelect = `
	SELECT ` + articleColumns + `, c.name, c.slug
	FROM articles a
	JOIN categories c ON c.id = a.category_id`

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an article by its slug with the category joined in.
// Returns nil if not found.
func (s *ArticleStore) FindBySlug(slug string) (*models.Article, error) {
	items, err := s.queryArticles(joinedSelect+` WHERE a.slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// SlugExists reports whether an article other than excludeID already uses
// the given slug. Pass uuid.Nil on create.
func (s *ArticleStore) SlugExists(slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("article slug exists: %w", err)
	}
	return exists, nil
}

// Filter narrows the admin article list. Zero values mean "no filter".
type Filter struct {
	CategorySlug string
	Status       models.ArticleStatus
	TitleSearch  string
}

// List returns one page of articles matching the filter, newest first,
// with category name/slug joined in.
func (s *ArticleStore) List(f Filter, limit, offset int) ([]models.Article, error) {
	query := joinedSelect + `
		WHERE ($1 = '' OR c.slug = $1)
		  AND ($2 = '' OR a.status = $2)
		  AND ($3 = '' OR a.title ILIKE '%' || $3 || '%')
		ORDER BY a.created_at DESC
		LIMIT $4 OFFSET $5`
	return s.queryArticles(query, f.CategorySlug, string(f.Status), f.TitleSearch, limit, offset)
}

// CountFiltered returns the number of articles matching the filter.
func (s *ArticleStore) CountFiltered(f Filter) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE ($1 = '' OR c.slug = $1)
		  AND ($2 = '' OR a.status = $2)
		  AND ($3 = '' OR a.title ILIKE '%' || $3 || '%')
	`, f.CategorySlug, string(f.Status), f.TitleSearch).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count filtered articles: %w", err)
	}
	return count, nil
}

// Count returns the total number of articles.
func (s *ArticleStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// CountByCategory returns how many articles reference the given category.
// The admin delete handler refuses to remove a category while this is > 0.
func (s *ArticleStore) CountByCategory(categoryID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles by category: %w", err)
	}
	return count, nil
}

// ListByCategory returns a category's published articles, newest first,
// optionally narrowed to one subcategory slug.
func (s *ArticleStore) ListByCategory(categoryID uuid.UUID, subSlug string) ([]models.Article, error) {
	query := joinedSelect + `
		LEFT JOIN subcategories sc ON sc.id = a.subcategory_id
		WHERE a.category_id = $1
		  AND a.status = 'published'
		  AND ($2 = '' OR sc.slug = $2)
		ORDER BY a.created_at DESC`
	return s.queryArticles(query, categoryID, subSlug)
}

// FirstFeatured returns the most recent featured article for the home page
// hero slot, or nil when none is flagged.
func (s *ArticleStore) FirstFeatured() (*models.Article, error) {
	items, err := s.queryArticles(joinedSelect + `
		WHERE a.featured AND a.status = 'published'
		ORDER BY a.created_at DESC
		LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("first featured article: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListTrending returns up to limit published articles flagged trending,
// newest first.
func (s *ArticleStore) ListTrending(limit int) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.trending AND a.status = 'published'
		ORDER BY a.created_at DESC
		LIMIT $1`, limit)
}

// ListMostViewed returns the limit most-viewed published articles.
func (s *ArticleStore) ListMostViewed(limit int) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.status = 'published'
		ORDER BY a.views DESC
		LIMIT $1`, limit)
}

// ListFeatured returns up to limit published featured articles, newest first.
func (s *ArticleStore) ListFeatured(limit int) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.featured AND a.status = 'published'
		ORDER BY a.created_at DESC
		LIMIT $1`, limit)
}

// ListRecent returns the limit most recent published articles.
func (s *ArticleStore) ListRecent(limit int) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.status = 'published'
		ORDER BY a.created_at DESC
		LIMIT $1`, limit)
}

// Related returns up to limit published articles from the same category,
// excluding the article itself.
func (s *ArticleStore) Related(categoryID, excludeID uuid.UUID, limit int) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.category_id = $1 AND a.id <> $2 AND a.status = 'published'
		ORDER BY a.created_at DESC
		LIMIT $3`, categoryID, excludeID, limit)
}

// Search performs a case-insensitive substring match across the article
// title, excerpt, body, and category name. An empty query returns nothing;
// the handler short-circuits before calling this.
func (s *ArticleStore) Search(query string) ([]models.Article, error) {
	return s.queryArticles(joinedSelect+`
		WHERE a.status = 'published'
		  AND (a.title ILIKE '%' || $1 || '%'
		    OR a.excerpt ILIKE '%' || $1 || '%'
		    OR a.body ILIKE '%' || $1 || '%'
		    OR c.name ILIKE '%' || $1 || '%')
		ORDER BY a.created_at DESC`, query)
}

// Create inserts a new article and returns it with the generated ID.
func (s *ArticleStore) Create(a *models.Article) (*models.Article, error) {
	row := s.db.QueryRow(`
		INSERT INTO articles (title, slug, excerpt, body, image_url, uploaded_image,
		                      category_id, subcategory_id, author, read_time,
		                      featured, trending, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Excerpt, a.Body, a.ImageURL, a.UploadedImage,
		a.CategoryID, a.SubCategoryID, a.Author, a.ReadTime,
		a.Featured, a.Trending, a.Status,
	)
	result, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return result, nil
}

// Update modifies an existing article. Counters are untouched — they move
// only through IncrementViews and the profile like toggle.
func (s *ArticleStore) Update(a *models.Article) error {
	_, err := s.db.Exec(`
		UPDATE articles SET
			title = $1, slug = $2, excerpt = $3, body = $4, image_url = $5,
			uploaded_image = $6, category_id = $7, subcategory_id = $8,
			author = $9, read_time = $10, featured = $11, trending = $12,
			status = $13, updated_at = NOW()
		WHERE id = $14
	`, a.Title, a.Slug, a.Excerpt, a.Body, a.ImageURL,
		a.UploadedImage, a.CategoryID, a.SubCategoryID,
		a.Author, a.ReadTime, a.Featured, a.Trending,
		a.Status, a.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// IncrementViews adds one to the view counter in a single atomic UPDATE
// and returns the new value. Every page load counts; there is no
// deduplication.
func (s *ArticleStore) IncrementViews(id uuid.UUID) (int, error) {
	var views int
	err := s.db.QueryRow(`
		UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views
	`, id).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// UpsertBySlug creates the article or overwrites an existing row with the
// same slug. Returns true when a new row was created. Used by the importer,
// which reruns against the same fixture.
func (s *ArticleStore) UpsertBySlug(a *models.Article) (bool, error) {
	var created bool
	err := s.db.QueryRow(`
		INSERT INTO articles (title, slug, excerpt, body, image_url,
		                      category_id, subcategory_id, author, read_time,
		                      featured, trending, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title, excerpt = EXCLUDED.excerpt,
			body = EXCLUDED.body, image_url = EXCLUDED.image_url,
			category_id = EXCLUDED.category_id, subcategory_id = EXCLUDED.subcategory_id,
			author = EXCLUDED.author, read_time = EXCLUDED.read_time,
			featured = EXCLUDED.featured, trending = EXCLUDED.trending,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`, a.Title, a.Slug, a.Excerpt, a.Body, a.ImageURL,
		a.CategoryID, a.SubCategoryID, a.Author, a.ReadTime,
		a.Featured, a.Trending, a.Status,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert article: %w", err)
	}
	return created, nil
}
