package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"healthline/internal/flash"
	"healthline/internal/middleware"
	"healthline/internal/render"
)

// NewsletterList renders the paginated subscription list. ?active=1 hides
// deactivated rows.
func (h *Admin) NewsletterList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	activeOnly := r.URL.Query().Get("active") == "1"

	subscriptions, err := h.newsletters.List(activeOnly, adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		slog.Error("list newsletters failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var total int
	if activeOnly {
		total, err = h.newsletters.CountActive()
	} else {
		total, err = h.newsletters.Count()
	}
	if err != nil {
		slog.Error("count newsletters failed", "error", err)
	}

	h.renderer.Page(w, r, "admin/newsletter_list", &render.PageData{
		Title:   "Newsletter",
		Section: "newsletters",
		Data: map[string]any{
			"Subscriptions": subscriptions,
			"ActiveOnly":    activeOnly,
			"Page":          page,
			"TotalPages":    totalPages(total),
		},
	})
}

// NewsletterToggle flips a subscription's active flag.
func (h *Admin) NewsletterToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	active, err := h.newsletters.Toggle(id)
	if err != nil {
		slog.Error("toggle newsletter failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/newsletters", http.StatusSeeOther)
		return
	}

	if active {
		flash.Success(w, r, "Subscription reactivated.")
	} else {
		flash.Success(w, r, "Subscription deactivated.")
	}
	http.Redirect(w, r, "/admin/newsletters", http.StatusSeeOther)
}

// NewsletterDelete removes a subscription row entirely.
func (h *Admin) NewsletterDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.newsletters.Delete(id); err != nil {
		slog.Error("delete newsletter failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/newsletters", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Subscription deleted.")
	http.Redirect(w, r, "/admin/newsletters", http.StatusSeeOther)
}

// UserList renders the paginated user account list.
func (h *Admin) UserList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	users, err := h.users.List(adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		slog.Error("list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	total, err := h.users.Count()
	if err != nil {
		slog.Error("count users failed", "error", err)
	}

	h.renderer.Page(w, r, "admin/user_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data: map[string]any{
			"Users":      users,
			"Page":       page,
			"TotalPages": totalPages(total),
		},
	})
}

// UserToggleStaff flips another user's staff flag. Toggling your own flag
// is rejected so an admin cannot lock themselves out mid-session.
func (h *Admin) UserToggleStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		flash.Error(w, r, "You cannot change your own staff status.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil || user == nil {
		http.NotFound(w, r)
		return
	}

	isStaff, err := h.users.ToggleStaff(id)
	if err != nil {
		slog.Error("toggle staff failed", "error", err)
		flash.Error(w, r, "An unexpected error occurred.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if isStaff {
		flash.Success(w, r, fmt.Sprintf("%s is now staff.", user.Username))
	} else {
		flash.Success(w, r, fmt.Sprintf("%s is no longer staff.", user.Username))
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// Subcategories returns the subcategories of a category as JSON. The
// article form uses it to repopulate its dropdown when the category changes.
func (h *Admin) Subcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(r.URL.Query().Get("category_id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid category.")
		return
	}

	subcategories, err := h.subcategories.ListByCategory(categoryID)
	if err != nil {
		slog.Error("list subcategories failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	type item struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
		Slug string    `json:"slug"`
	}
	items := make([]item, 0, len(subcategories))
	for _, sc := range subcategories {
		items = append(items, item{ID: sc.ID, Name: sc.Name, Slug: sc.Slug})
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "subcategories": items})
}

// Stats returns aggregate entity counts as a flat JSON object.
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.Count()
	if err != nil {
		slog.Error("count articles failed", "error", err)
	}
	categories, err := h.categories.Count()
	if err != nil {
		slog.Error("count categories failed", "error", err)
	}
	newsletters, err := h.newsletters.Count()
	if err != nil {
		slog.Error("count newsletters failed", "error", err)
	}
	users, err := h.users.Count()
	if err != nil {
		slog.Error("count users failed", "error", err)
	}
	staff, err := h.users.CountStaff()
	if err != nil {
		slog.Error("count staff failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles":    articles,
		"categories":  categories,
		"newsletters": newsletters,
		"users":       users,
		"staff":       staff,
	})
}
