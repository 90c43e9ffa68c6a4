package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"healthline/internal/config"
	"healthline/internal/database"
	"healthline/internal/models"
)

// testDB connects to the configured PostgreSQL instance and applies
// migrations. Tests that need a database skip when it is unreachable, so
// the suite still runs in environments without one.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		t.Skipf("postgres unavailable, skipping: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// uniq appends a random suffix so tests never collide on unique columns.
func uniq(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func createTestCategory(t *testing.T, categories *CategoryStore) *models.Category {
	t.Helper()
	c, err := categories.Create(&models.Category{
		Name: uniq("Test Category"),
		Slug: uniq("test-category"),
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { categories.Delete(c.ID) })
	return c
}

func createTestArticle(t *testing.T, articles *ArticleStore, categoryID uuid.UUID) *models.Article {
	t.Helper()
	a, err := articles.Create(&models.Article{
		Title:      uniq("Test Article"),
		Slug:       uniq("test-article"),
		Excerpt:    "excerpt",
		Body:       "body",
		CategoryID: categoryID,
		Author:     "Tester",
		ReadTime:   5,
		Status:     models.ArticleStatusPublished,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	t.Cleanup(func() { articles.Delete(a.ID) })
	return a
}

func TestCategorySlugExists(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db)

	c := createTestCategory(t, categories)

	taken, err := categories.SlugExists(c.Slug, uuid.Nil)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !taken {
		t.Error("slug should be reported taken for a new row")
	}

	// The row itself is excluded when editing.
	taken, err = categories.SlugExists(c.Slug, c.ID)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if taken {
		t.Error("slug should not conflict with its own row")
	}
}

func TestCategoryGetOrCreateBySlug(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db)

	slug := uniq("fitness")
	c, created, err := categories.GetOrCreateBySlug(slug, "Fitness")
	if err != nil {
		t.Fatalf("GetOrCreateBySlug: %v", err)
	}
	t.Cleanup(func() { categories.Delete(c.ID) })
	if !created {
		t.Error("first call should create")
	}

	again, created, err := categories.GetOrCreateBySlug(slug, "Fitness")
	if err != nil {
		t.Fatalf("GetOrCreateBySlug: %v", err)
	}
	if created {
		t.Error("second call should find the existing row")
	}
	if again.ID != c.ID {
		t.Error("second call returned a different row")
	}
}

func TestArticleIncrementViews(t *testing.T) {
	db := testDB(t)
	articles := NewArticleStore(db)
	categories := NewCategoryStore(db)

	c := createTestCategory(t, categories)
	a := createTestArticle(t, articles, c.ID)

	views, err := articles.IncrementViews(a.ID)
	if err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if views != 1 {
		t.Errorf("views = %d, want 1", views)
	}

	views, err = articles.IncrementViews(a.ID)
	if err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if views != 2 {
		t.Errorf("views = %d, want 2", views)
	}
}

func TestArticleUpsertBySlug(t *testing.T) {
	db := testDB(t)
	articles := NewArticleStore(db)
	categories := NewCategoryStore(db)

	c := createTestCategory(t, categories)

	a := &models.Article{
		Title:      "Original Title",
		Slug:       uniq("upsert"),
		Body:       "body",
		CategoryID: c.ID,
		Author:     "Importer",
		ReadTime:   5,
		Status:     models.ArticleStatusPublished,
	}

	created, err := articles.UpsertBySlug(a)
	if err != nil {
		t.Fatalf("UpsertBySlug: %v", err)
	}
	t.Cleanup(func() {
		if found, _ := articles.FindBySlug(a.Slug); found != nil {
			articles.Delete(found.ID)
		}
	})
	if !created {
		t.Error("first upsert should report created")
	}

	a.Title = "Updated Title"
	created, err = articles.UpsertBySlug(a)
	if err != nil {
		t.Fatalf("UpsertBySlug: %v", err)
	}
	if created {
		t.Error("second upsert should report updated")
	}

	found, err := articles.FindBySlug(a.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.Title != "Updated Title" {
		t.Errorf("upsert did not update the row: %+v", found)
	}
}

func TestArticleSearchScope(t *testing.T) {
	db := testDB(t)
	articles := NewArticleStore(db)
	categories := NewCategoryStore(db)

	c := createTestCategory(t, categories)
	needle := uniq("xylophone")

	published := createTestArticle(t, articles, c.ID)
	published.Title = "About " + needle
	if err := articles.Update(published); err != nil {
		t.Fatalf("update: %v", err)
	}

	draft := createTestArticle(t, articles, c.ID)
	draft.Title = "Draft about " + needle
	draft.Status = models.ArticleStatusDraft
	if err := articles.Update(draft); err != nil {
		t.Fatalf("update: %v", err)
	}

	results, err := articles.Search(needle)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want only the published article", len(results))
	}
	if results[0].ID != published.ID {
		t.Error("search returned the wrong article")
	}
}

func TestNewsletterLifecycle(t *testing.T) {
	db := testDB(t)
	newsletters := NewNewsletterStore(db)

	email := uniq("reader") + "@example.com"
	n, err := newsletters.Create(email)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { newsletters.Delete(n.ID) })

	if !n.IsActive {
		t.Error("new subscription should be active")
	}

	found, err := newsletters.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil || found.ID != n.ID {
		t.Fatalf("FindByEmail = %+v", found)
	}

	active, err := newsletters.Toggle(n.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if active {
		t.Error("toggle should deactivate an active subscription")
	}

	if err := newsletters.SetActive(n.ID, true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	found, _ = newsletters.FindByEmail(email)
	if found == nil || !found.IsActive {
		t.Error("SetActive(true) did not reactivate")
	}
}

func TestUserPasswordAndStaffToggle(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u, err := users.Create(uniq("user"), uniq("u")+"@example.com", "hunter2secret", "Test", "User", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })

	if !users.CheckPassword(u, "hunter2secret") {
		t.Error("correct password rejected")
	}
	if users.CheckPassword(u, "wrong") {
		t.Error("wrong password accepted")
	}

	isStaff, err := users.ToggleStaff(u.ID)
	if err != nil {
		t.Fatalf("ToggleStaff: %v", err)
	}
	if !isStaff {
		t.Error("toggle should grant staff")
	}

	isStaff, err = users.ToggleStaff(u.ID)
	if err != nil {
		t.Fatalf("ToggleStaff: %v", err)
	}
	if isStaff {
		t.Error("second toggle should revoke staff")
	}
}

func TestProfileToggleLikeKeepsCounterInLockstep(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	profiles := NewProfileStore(db)
	articles := NewArticleStore(db)
	categories := NewCategoryStore(db)

	u, err := users.Create(uniq("liker"), uniq("l")+"@example.com", "hunter2secret", "", "", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })

	if _, err := profiles.GetOrCreate(u.ID); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	c := createTestCategory(t, categories)
	a := createTestArticle(t, articles, c.ID)

	liked, likes, err := profiles.ToggleLike(u.ID, a.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked || likes != 1 {
		t.Errorf("first toggle: liked=%v likes=%d, want true/1", liked, likes)
	}

	liked, likes, err = profiles.ToggleLike(u.ID, a.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if liked || likes != 0 {
		t.Errorf("second toggle: liked=%v likes=%d, want false/0", liked, likes)
	}

	isLiked, err := profiles.IsLiked(u.ID, a.ID)
	if err != nil {
		t.Fatalf("IsLiked: %v", err)
	}
	if isLiked {
		t.Error("membership row survived the unlike")
	}
}

func TestProfileToggleSaveAndList(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	profiles := NewProfileStore(db)
	articles := NewArticleStore(db)
	categories := NewCategoryStore(db)

	u, err := users.Create(uniq("saver"), uniq("s")+"@example.com", "hunter2secret", "", "", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })

	if _, err := profiles.GetOrCreate(u.ID); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	c := createTestCategory(t, categories)
	a := createTestArticle(t, articles, c.ID)

	saved, err := profiles.ToggleSave(u.ID, a.ID)
	if err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}
	if !saved {
		t.Error("first toggle should save")
	}

	list, err := profiles.ListSaved(u.ID)
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("ListSaved = %d rows", len(list))
	}

	if err := profiles.RemoveSaved(u.ID, a.ID); err != nil {
		t.Fatalf("RemoveSaved: %v", err)
	}
	list, err = profiles.ListSaved(u.ID)
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListSaved after remove = %d rows, want 0", len(list))
	}
}

func TestProfileGetOrCreateIdempotent(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	profiles := NewProfileStore(db)

	u, err := users.Create(uniq("prof"), uniq("p")+"@example.com", "hunter2secret", "", "", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })

	// No profile row exists until one is asked for.
	p, err := profiles.FindByUserID(u.ID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if p != nil {
		t.Fatal("profile should not exist before GetOrCreate")
	}

	first, err := profiles.GetOrCreate(u.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := profiles.GetOrCreate(u.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first.UserID != second.UserID {
		t.Error("GetOrCreate returned different rows")
	}
}

func TestCategoryDeleteBlockedWhileArticlesExist(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db)
	articles := NewArticleStore(db)

	c := createTestCategory(t, categories)
	createTestArticle(t, articles, c.ID)

	count, err := articles.CountByCategory(c.ID)
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if count != 1 {
		t.Fatalf("CountByCategory = %d, want 1", count)
	}

	// The foreign key restricts the delete; the row must survive.
	if err := categories.Delete(c.ID); err == nil {
		t.Fatal("delete succeeded while an article still references the category")
	}

	found, err := categories.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Error("category disappeared after a blocked delete")
	}
}
