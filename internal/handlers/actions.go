package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"healthline/internal/middleware"
	"healthline/internal/store"
)

// Actions groups the small JSON endpoints called from page scripts:
// newsletter subscription and the save/like toggles.
type Actions struct {
	articles    *store.ArticleStore
	profiles    *store.ProfileStore
	newsletters *store.NewsletterStore
}

// NewActions creates a new Actions handler group.
func NewActions(articles *store.ArticleStore, profiles *store.ProfileStore, newsletters *store.NewsletterStore) *Actions {
	return &Actions{
		articles:    articles,
		profiles:    profiles,
		newsletters: newsletters,
	}
}

// writeJSON encodes a response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode json response failed", "error", err)
	}
}

// jsonError writes a {"success": false, "error": ...} body.
func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// subscribeEmail reads the address from a JSON body, or from the form
// encoding for non-JS submissions. The body can only be read once, so the
// branch is on Content-Type rather than a decode-then-fallback.
func subscribeEmail(r *http.Request) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return ""
		}
		return req.Email
	}
	return r.FormValue("email")
}

// Subscribe handles newsletter sign-up. An active duplicate is rejected;
// a previously deactivated subscription is reactivated in place.
func (h *Actions) Subscribe(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(subscribeEmail(r)))

	if email == "" || !strings.Contains(email, "@") {
		jsonError(w, http.StatusBadRequest, "Please enter a valid email address.")
		return
	}

	existing, err := h.newsletters.FindByEmail(email)
	if err != nil {
		slog.Error("newsletter lookup failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if existing != nil {
		if existing.IsActive {
			jsonError(w, http.StatusConflict, "This email is already subscribed.")
			return
		}
		if err := h.newsletters.SetActive(existing.ID, true); err != nil {
			slog.Error("reactivate subscription failed", "error", err)
			jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Welcome back! Your subscription is active again."})
		return
	}

	if _, err := h.newsletters.Create(email); err != nil {
		slog.Error("create subscription failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Thanks for subscribing!"})
}

// requireUser resolves the session and article ID shared by the toggle
// endpoints. Writes the error response itself when something is off.
func (h *Actions) requireUser(w http.ResponseWriter, r *http.Request) (userID, articleID uuid.UUID, ok bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		jsonError(w, http.StatusUnauthorized, "Please sign in first.")
		return uuid.Nil, uuid.Nil, false
	}

	articleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid article.")
		return uuid.Nil, uuid.Nil, false
	}

	article, err := h.articles.FindByID(articleID)
	if err != nil {
		slog.Error("article lookup failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return uuid.Nil, uuid.Nil, false
	}
	if article == nil {
		jsonError(w, http.StatusNotFound, "Article not found.")
		return uuid.Nil, uuid.Nil, false
	}

	// The profile row backs the saved/liked sets; create it lazily.
	if _, err := h.profiles.GetOrCreate(sess.UserID); err != nil {
		slog.Error("profile create failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return uuid.Nil, uuid.Nil, false
	}

	return sess.UserID, articleID, true
}

// ToggleSave flips the article's membership in the user's saved set.
// The response's saved flag alternates across successive calls.
func (h *Actions) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	saved, err := h.profiles.ToggleSave(userID, articleID)
	if err != nil {
		slog.Error("toggle save failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "saved": saved})
}

// ToggleLike flips the like association and moves the article's like
// counter in the same transaction.
func (h *Actions) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	liked, likes, err := h.profiles.ToggleLike(userID, articleID)
	if err != nil {
		slog.Error("toggle like failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "liked": liked, "likes": likes})
}

// Unsave removes the article from the saved set regardless of current
// state. The profile page's remove button wants removal, not a toggle.
func (h *Actions) Unsave(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.profiles.RemoveSaved(userID, articleID); err != nil {
		slog.Error("remove saved failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "saved": false})
}
