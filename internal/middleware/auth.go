package middleware

import (
	"context"
	"net/http"
	"strings"

	"healthline/internal/flash"
	"healthline/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	// NextCookieName remembers the admin path a visitor asked for before
	// being sent to the staff login, so login can return them there.
	NextCookieName = "hl_next"
)

// LoadSession retrieves the session from Valkey and stores it in the
// request context. It never blocks a request: a missing or failed session
// lookup just means the visitor browses as anonymous.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser redirects anonymous visitors to the reader sign-in page.
// Must be applied after LoadSession.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireStaff gates the admin panel. Anonymous visitors get the requested
// path remembered in a short-lived cookie and are sent to the staff login.
// Signed-in readers without staff rights are turned back to the home page
// with an error flash, never to the login form. Staff who have signed in
// but not yet entered their TOTP code go to the code entry page. Must be
// applied after LoadSession.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())

		if sess == nil {
			RememberNext(w, r.URL.Path)
			flash.Info(w, r, "Please sign in to access the admin panel.")
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		if !sess.IsStaff {
			flash.Error(w, r, "You do not have permission to access the admin panel.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if !sess.StaffVerified {
			RememberNext(w, r.URL.Path)
			http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RememberNext stores an admin path for the post-login redirect. Only
// in-site admin paths are accepted so the cookie can never send a user
// off-site.
func RememberNext(w http.ResponseWriter, path string) {
	if !strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "//") {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     NextCookieName,
		Value:    path,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}

// PopNext returns the remembered admin path and clears the cookie.
// Falls back to the admin dashboard when nothing was remembered or the
// stored value is not an admin path.
func PopNext(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(NextCookieName)
	if err != nil || cookie.Value == "" {
		return "/admin/dashboard"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     NextCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if !strings.HasPrefix(cookie.Value, "/admin") || strings.HasPrefix(cookie.Value, "//") {
		return "/admin/dashboard"
	}
	return cookie.Value
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
