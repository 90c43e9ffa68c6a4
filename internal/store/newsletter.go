package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthline/internal/models"
)

// NewsletterStore manages newsletter subscriptions in the database.
type NewsletterStore struct {
	db *sql.DB
}

// NewNewsletterStore returns a new NewsletterStore.
func NewNewsletterStore(db *sql.DB) *NewsletterStore {
	return &NewsletterStore{db: db}
}

const newsletterColumns = `id, email, is_active, subscribed_at`

// List returns one page of subscriptions, newest first. When activeOnly is
// true, deactivated rows are excluded.
func (s *NewsletterStore) List(activeOnly bool, limit, offset int) ([]models.Newsletter, error) {
	rows, err := s.db.Query(`
		SELECT `+newsletterColumns+`
		FROM newsletters
		WHERE NOT $1 OR is_active
		ORDER BY subscribed_at DESC
		LIMIT $2 OFFSET $3
	`, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	var items []models.Newsletter
	for rows.Next() {
		var n models.Newsletter
		if err := rows.Scan(&n.ID, &n.Email, &n.IsActive, &n.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// Count returns the total number of subscriptions, active or not.
func (s *NewsletterStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM newsletters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count newsletters: %w", err)
	}
	return count, nil
}

// CountActive returns the number of active subscriptions.
func (s *NewsletterStore) CountActive() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM newsletters WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active newsletters: %w", err)
	}
	return count, nil
}

// FindByEmail retrieves a subscription by email. Returns nil if not found.
func (s *NewsletterStore) FindByEmail(email string) (*models.Newsletter, error) {
	var n models.Newsletter
	err := s.db.QueryRow(`
		SELECT `+newsletterColumns+` FROM newsletters WHERE email = $1
	`, email).Scan(&n.ID, &n.Email, &n.IsActive, &n.SubscribedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find newsletter by email: %w", err)
	}
	return &n, nil
}

// Create inserts a new active subscription.
func (s *NewsletterStore) Create(email string) (*models.Newsletter, error) {
	var n models.Newsletter
	err := s.db.QueryRow(`
		INSERT INTO newsletters (email) VALUES ($1)
		RETURNING `+newsletterColumns,
		email,
	).Scan(&n.ID, &n.Email, &n.IsActive, &n.SubscribedAt)
	if err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	return &n, nil
}

// SetActive flips a subscription's active flag.
func (s *NewsletterStore) SetActive(id uuid.UUID, active bool) error {
	_, err := s.db.Exec(`UPDATE newsletters SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set newsletter active: %w", err)
	}
	return nil
}

// Toggle inverts a subscription's active flag and returns the new value.
func (s *NewsletterStore) Toggle(id uuid.UUID) (bool, error) {
	var active bool
	err := s.db.QueryRow(`
		UPDATE newsletters SET is_active = NOT is_active WHERE id = $1 RETURNING is_active
	`, id).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("toggle newsletter: %w", err)
	}
	return active, nil
}

// Delete removes a subscription by ID.
func (s *NewsletterStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM newsletters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	return nil
}
