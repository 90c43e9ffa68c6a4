package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthline/internal/models"
)

// ProfileStore manages reader profiles and their saved/liked article sets.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `user_id, avatar, photo_url, created_at, updated_at`

// FindByUserID retrieves a user's profile. Returns nil if the user has no
// profile row yet.
func (s *ProfileStore) FindByUserID(userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`
		SELECT `+profileColumns+` FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Avatar, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// GetOrCreate returns the user's profile, creating an empty one if absent.
func (s *ProfileStore) GetOrCreate(userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+profileColumns,
		userID,
	).Scan(&p.UserID, &p.Avatar, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create profile: %w", err)
	}
	return &p, nil
}

// SetPhoto stores the uploaded photo URL. Pass nil to remove the photo.
func (s *ProfileStore) SetPhoto(userID uuid.UUID, photoURL *string) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET photo_url = $1, updated_at = NOW() WHERE user_id = $2
	`, photoURL, userID)
	if err != nil {
		return fmt.Errorf("set profile photo: %w", err)
	}
	return nil
}

// SetAvatar stores the chosen built-in avatar name.
func (s *ProfileStore) SetAvatar(userID uuid.UUID, avatar string) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET avatar = $1, updated_at = NOW() WHERE user_id = $2
	`, avatar, userID)
	if err != nil {
		return fmt.Errorf("set profile avatar: %w", err)
	}
	return nil
}

// IsSaved reports whether the user has saved the article.
func (s *ProfileStore) IsSaved(userID, articleID uuid.UUID) (bool, error) {
	var saved bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM profile_saved_articles
			WHERE user_id = $1 AND article_id = $2
		)
	`, userID, articleID).Scan(&saved)
	if err != nil {
		return false, fmt.Errorf("is saved: %w", err)
	}
	return saved, nil
}

// IsLiked reports whether the user has liked the article.
func (s *ProfileStore) IsLiked(userID, articleID uuid.UUID) (bool, error) {
	var liked bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM profile_liked_articles
			WHERE user_id = $1 AND article_id = $2
		)
	`, userID, articleID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("is liked: %w", err)
	}
	return liked, nil
}

// ToggleSave adds the article to the user's saved set, or removes it when
// already present. Returns true when the article is now saved.
func (s *ProfileStore) ToggleSave(userID, articleID uuid.UUID) (bool, error) {
	saved, err := s.IsSaved(userID, articleID)
	if err != nil {
		return false, err
	}

	if saved {
		_, err = s.db.Exec(`
			DELETE FROM profile_saved_articles WHERE user_id = $1 AND article_id = $2
		`, userID, articleID)
		if err != nil {
			return false, fmt.Errorf("unsave article: %w", err)
		}
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO profile_saved_articles (user_id, article_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("save article: %w", err)
	}
	return true, nil
}

// RemoveSaved removes the article from the user's saved set.
func (s *ProfileStore) RemoveSaved(userID, articleID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM profile_saved_articles WHERE user_id = $1 AND article_id = $2
	`, userID, articleID)
	if err != nil {
		return fmt.Errorf("remove saved article: %w", err)
	}
	return nil
}

// ToggleLike adds or removes the user's like and moves the article's like
// counter in the same transaction, so membership and counter never drift.
// The counter clamps at zero. Returns the liked state and the new count.
func (s *ProfileStore) ToggleLike(userID, articleID uuid.UUID) (liked bool, likes int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM profile_liked_articles
			WHERE user_id = $1 AND article_id = $2
		)
	`, userID, articleID).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	if exists {
		if _, err = tx.Exec(`
			DELETE FROM profile_liked_articles WHERE user_id = $1 AND article_id = $2
		`, userID, articleID); err != nil {
			return false, 0, fmt.Errorf("toggle like: %w", err)
		}
		err = tx.QueryRow(`
			UPDATE articles SET likes = GREATEST(likes - 1, 0)
			WHERE id = $1 RETURNING likes
		`, articleID).Scan(&likes)
		liked = false
	} else {
		if _, err = tx.Exec(`
			INSERT INTO profile_liked_articles (user_id, article_id) VALUES ($1, $2)
		`, userID, articleID); err != nil {
			return false, 0, fmt.Errorf("toggle like: %w", err)
		}
		err = tx.QueryRow(`
			UPDATE articles SET likes = likes + 1
			WHERE id = $1 RETURNING likes
		`, articleID).Scan(&likes)
		liked = true
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	return liked, likes, nil
}

// ListSaved returns the user's saved articles, most recently saved first,
// with category name/slug joined in.
func (s *ProfileStore) ListSaved(userID uuid.UUID) ([]models.Article, error) {
	return s.queryMembershipArticles(`
		SELECT `+articleColumns+`, c.name, c.slug
		FROM profile_saved_articles m
		JOIN articles a ON a.id = m.article_id
		JOIN categories c ON c.id = a.category_id
		WHERE m.user_id = $1
		ORDER BY m.added_at DESC
	`, userID)
}

// ListLiked returns the user's liked articles, most recently liked first.
func (s *ProfileStore) ListLiked(userID uuid.UUID) ([]models.Article, error) {
	return s.queryMembershipArticles(`
		SELECT `+articleColumns+`, c.name, c.slug
		FROM profile_liked_articles m
		JOIN articles a ON a.id = m.article_id
		JOIN categories c ON c.id = a.category_id
		WHERE m.user_id = $1
		ORDER BY m.added_at DESC
	`, userID)
}

func (s *ProfileStore) queryMembershipArticles(query string, userID uuid.UUID) ([]models.Article, error) {
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("list profile articles: %w", err)
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
			return nil, fmt.Errorf("scan profile article: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
