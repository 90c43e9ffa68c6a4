package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthline/internal/models"
)

// SubCategoryStore manages subcategories in the database.
type SubCategoryStore struct {
	db *sql.DB
}

// NewSubCategoryStore returns a new SubCategoryStore.
func NewSubCategoryStore(db *sql.DB) *SubCategoryStore {
	return &SubCategoryStore{db: db}
}

const subCategoryColumns = `id, name, slug, category_id, created_at`

// ListByCategory returns the subcategories of one category, ordered by name.
func (s *SubCategoryStore) ListByCategory(categoryID uuid.UUID) ([]models.SubCategory, error) {
	rows, err := s.db.Query(`
		SELECT `+subCategoryColumns+`
		FROM subcategories
		WHERE category_id = $1
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.SubCategory
	for rows.Next() {
		var sc models.SubCategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

// ListAll returns every subcategory, ordered by name. Used by the admin
// article form to populate its subcategory dropdown.
func (s *SubCategoryStore) ListAll() ([]models.SubCategory, error) {
	rows, err := s.db.Query(`SELECT ` + subCategoryColumns + ` FROM subcategories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list all subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.SubCategory
	for rows.Next() {
		var sc models.SubCategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

// FindByID retrieves a subcategory by ID. Returns nil if not found.
func (s *SubCategoryStore) FindByID(id uuid.UUID) (*models.SubCategory, error) {
	var sc models.SubCategory
	err := s.db.QueryRow(`
		SELECT `+subCategoryColumns+` FROM subcategories WHERE id = $1
	`, id).Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by id: %w", err)
	}
	return &sc, nil
}

// FindBySlug retrieves a subcategory by its (category, slug) pair.
// Returns nil if not found.
func (s *SubCategoryStore) FindBySlug(categoryID uuid.UUID, slug string) (*models.SubCategory, error) {
	var sc models.SubCategory
	err := s.db.QueryRow(`
		SELECT `+subCategoryColumns+` FROM subcategories
		WHERE category_id = $1 AND slug = $2
	`, categoryID, slug).Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by slug: %w", err)
	}
	return &sc, nil
}

// GetOrCreate finds a subcategory by its (category, slug) pair, creating it
// with the given name when absent. Returns the subcategory and whether it
// was created. Used by the article importer.
func (s *SubCategoryStore) GetOrCreate(categoryID uuid.UUID, slug, name string) (*models.SubCategory, bool, error) {
	existing, err := s.FindBySlug(categoryID, slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var sc models.SubCategory
	err = s.db.QueryRow(`
		INSERT INTO subcategories (name, slug, category_id)
		VALUES ($1, $2, $3)
		RETURNING `+subCategoryColumns,
		name, slug, categoryID,
	).Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("create subcategory: %w", err)
	}
	return &sc, true, nil
}

// Count returns the total number of subcategories.
func (s *SubCategoryStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM subcategories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return count, nil
}
