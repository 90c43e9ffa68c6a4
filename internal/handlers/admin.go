package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"healthline/internal/flash"
	"healthline/internal/models"
	"healthline/internal/render"
	"healthline/internal/storage"
	"healthline/internal/store"
)

// adminPageSize is the number of rows per admin list page.
const adminPageSize = 20

// maxUploadSize caps admin image uploads at 10 MiB.
const maxUploadSize = 10 << 20

// Admin groups the staff panel handlers.
type Admin struct {
	renderer      *render.Renderer
	articles      *store.ArticleStore
	categories    *store.CategoryStore
	subcategories *store.SubCategoryStore
	newsletters   *store.NewsletterStore
	users         *store.UserStore
	storage       *storage.Client // nil when S3 is not configured
}

// NewAdmin creates a new Admin handler group. storageClient may be nil.
func NewAdmin(renderer *render.Renderer, articles *store.ArticleStore, categories *store.CategoryStore, subcategories *store.SubCategoryStore, newsletters *store.NewsletterStore, users *store.UserStore, storageClient *storage.Client) *Admin {
	return &Admin{
		renderer:      renderer,
		articles:      articles,
		categories:    categories,
		subcategories: subcategories,
		newsletters:   newsletters,
		users:         users,
		storage:       storageClient,
	}
}

// Dashboard shows entity counts and recent activity.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	articleCount, err := h.articles.Count()
	if err != nil {
		slog.Error("count articles failed", "error", err)
	}
	categoryCount, err := h.categories.Count()
	if err != nil {
		slog.Error("count categories failed", "error", err)
	}
	subscriberCount, err := h.newsletters.CountActive()
	if err != nil {
		slog.Error("count subscribers failed", "error", err)
	}
	userCount, err := h.users.Count()
	if err != nil {
		slog.Error("count users failed", "error", err)
	}

	recent, err := h.articles.ListRecent(5)
	if err != nil {
		slog.Error("list recent articles failed", "error", err)
	}
	subscriptions, err := h.newsletters.List(false, 5, 0)
	if err != nil {
		slog.Error("list recent subscriptions failed", "error", err)
	}

	h.renderer.Page(w, r, "admin/dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"ArticleCount":    articleCount,
			"CategoryCount":   categoryCount,
			"SubscriberCount": subscriberCount,
			"UserCount":       userCount,
			"RecentArticles":  recent,
			"RecentSubs":      subscriptions,
		},
	})
}

// pageParam parses the ?page= query parameter (1-based, min 1).
func pageParam(r *http.Request) int {
	page := intOrDefault(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	return page
}

// totalPages computes the page count for a total row count.
func totalPages(total int) int {
	pages := (total + adminPageSize - 1) / adminPageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// idParam parses the {id} URL parameter. Writes a 404 and returns false
// when the value is not a UUID.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// CategoryList renders the paginated category list with article counts.
func (h *Admin) CategoryList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	categories, err := h.categories.ListPaged(adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	total, err := h.categories.Count()
	if err != nil {
		slog.Error("count categories failed", "error", err)
	}

	h.renderer.Page(w, r, "admin/category_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data: map[string]any{
			"Categories": categories,
			"Page":       page,
			"TotalPages": totalPages(total),
		},
	})
}

// CategoryNew renders an empty category form.
func (h *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, "admin/category_form", &render.PageData{
		Title:   "New Category",
		Section: "categories",
		Data:    map[string]any{"UploadsEnabled": h.storage != nil},
	})
}

// CategoryCreate handles the new-category form post. A slug collision is
// rejected with a user-visible error and the existing row stays untouched.
func (h *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flash.Error(w, r, "Upload is too large (max 10 MB).")
		http.Redirect(w, r, "/admin/categories/new", http.StatusSeeOther)
		return
	}

	form := parseCategoryForm(r)
	if msg := form.validate(); msg != "" {
		h.renderCategoryForm(w, r, "New Category", nil, form, msg)
		return
	}

	taken, err := h.categories.SlugExists(form.Slug, uuid.Nil)
	if err != nil {
		slog.Error("category slug check failed", "error", err)
		h.renderCategoryForm(w, r, "New Category", nil, form, "An unexpected error occurred.")
		return
	}
	if taken {
		h.renderCategoryForm(w, r, "New Category", nil, form,
			fmt.Sprintf("A category with slug %q already exists.", form.Slug))
		return
	}

	category := form.toModel()
	if uploaded, ok := h.handleImageUpload(w, r, "categories"); ok {
		category.UploadedImage = uploaded
		if uploaded != nil {
			// A file upload overrides any URL string.
			category.ImageURL = ""
		}
	} else {
		return
	}

	if _, err := h.categories.Create(category); err != nil {
		slog.Error("create category failed", "error", err)
		h.renderCategoryForm(w, r, "New Category", nil, form, "An unexpected error occurred.")
		return
	}

	flash.Success(w, r, fmt.Sprintf("Category %q created.", category.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the edit form for an existing category.
func (h *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	h.renderer.Page(w, r, "admin/category_form", &render.PageData{
		Title:   "Edit Category",
		Section: "categories",
		Data: map[string]any{
			"Category":       category,
			"UploadsEnabled": h.storage != nil,
		},
	})
}

// CategoryUpdate handles the edit form post.
func (h *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil || category == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flash.Error(w, r, "Upload is too large (max 10 MB).")
		http.Redirect(w, r, "/admin/categories/"+id.String()+"/edit", http.StatusSeeOther)
		return
	}

	form := parseCategoryForm(r)
	if msg := form.validate(); msg != "" {
		h.renderCategoryForm(w, r, "Edit Category", category, form, msg)
		return
	}

	taken, err := h.categories.SlugExists(form.Slug, id)
	if err != nil {
		slog.Error("category slug check failed", "error", err)
		h.renderCategoryForm(w, r, "Edit Category", category, form, "An unexpected error occurred.")
		return
	}
	if taken {
		h.renderCategoryForm(w, r, "Edit Category", category, form,
			fmt.Sprintf("A category with slug %q already exists.", form.Slug))
		return
	}

	category.Name = form.Name
	category.Slug = form.Slug
	category.Description = form.Description
	category.ImageURL = form.ImageURL
	category.SortOrder = form.SortOrder

	if uploaded, ok := h.handleImageUpload(w, r, "categories"); ok {
		if uploaded != nil {
			category.UploadedImage = uploaded
			category.ImageURL = ""
		}
	} else {
		return
	}

	if err := h.categories.Update(category); err != nil {
		slog.Error("update category failed", "error", err)
		h.renderCategoryForm(w, r, "Edit Category", category, form, "An unexpected error occurred.")
		return
	}

	flash.Success(w, r, fmt.Sprintf("Category %q updated.", category.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category unless it still owns articles, in
// which case the blocking count is reported and nothing changes.
func (h *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil || category == nil {
		http.NotFound(w, r)
		return
	}

	count, err := h.articles.CountByCategory(id)
	if err != nil {
		slog.Error("count category articles failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}
	if count > 0 {
		flash.Error(w, r, fmt.Sprintf("Cannot delete %q: %d article(s) still use it.", category.Name, count))
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		slog.Error("delete category failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, fmt.Sprintf("Category %q deleted.", category.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, title string, existing *models.Category, form categoryForm, errMsg string) {
	h.renderer.Page(w, r, "admin/category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data: map[string]any{
			"Category":       existing,
			"Form":           form,
			"Error":          errMsg,
			"UploadsEnabled": h.storage != nil,
		},
	})
}

// handleImageUpload reads the optional "image" file field and stores it in
// S3. Returns (nil, true) when no file was sent, (url, true) on success,
// and (nil, false) after writing the error response itself.
func (h *Admin) handleImageUpload(w http.ResponseWriter, r *http.Request, folder string) (*string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, true // no file submitted
	}
	defer file.Close()

	if h.storage == nil {
		flash.Error(w, r, "File uploads are not available; use an image URL instead.")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return nil, false
	}

	url, err := uploadImage(r.Context(), h.storage, folder, file, header)
	if err != nil {
		slog.Error("image upload failed", "error", err)
		flash.Error(w, r, "Could not upload the image.")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return nil, false
	}

	return &url, true
}
