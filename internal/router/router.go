// Package router sets up all HTTP routes and middleware chains for the
// HealthLine server. Routes are organized into public, account, action,
// and admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthline/internal/handlers"
	"healthline/internal/middleware"
	"healthline/internal/render"
	"healthline/internal/session"
)

// New creates the configured chi router with all middleware and route
// groups wired up. The returned rate limiter must be stopped on shutdown.
func New(sessionStore *session.Store, public *handlers.Public, account *handlers.Account, actions *handlers.Actions, admin *handlers.Admin, adminAuth *handlers.AdminAuth) (chi.Router, *middleware.RateLimiter) {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Login endpoints share one per-IP limiter.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check.
	r.Get("/health", healthHandler)

	// Embedded static assets (placeholder images and the like).
	r.Handle("/static/*", render.Static())

	// Public reader site.
	r.Get("/", public.Home)
	r.Get("/category/{slug}", public.Category)
	r.Get("/article/{slug}", public.Article)
	r.Get("/search", public.Search)
	r.Post("/newsletter/subscribe", actions.Subscribe)

	// Account pages.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/signin", account.SigninPage)
		r.With(loginLimiter.Middleware).Post("/signin", account.SigninSubmit)
		r.Get("/signup", account.SignupPage)
		r.Post("/signup", account.SignupSubmit)
		r.Post("/signout", account.Signout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/profile", account.ProfilePage)
			r.Post("/profile", account.ProfileUpdate)
		})
	})

	// Personalization actions (JSON, signed-in readers).
	r.Route("/articles/{id}", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Post("/save", actions.ToggleSave)
		r.Post("/like", actions.ToggleLike)
		r.Post("/unsave", actions.Unsave)
	})

	// Admin panel.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/login", adminAuth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", adminAuth.LoginSubmit)
		r.Post("/logout", adminAuth.Logout)
		r.Get("/2fa/verify", adminAuth.TwoFAVerifyPage)
		r.Post("/2fa/verify", adminAuth.TwoFAVerifySubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff)

			r.Get("/", admin.Dashboard)
			r.Get("/dashboard", admin.Dashboard)

			r.Get("/2fa/setup", adminAuth.TwoFASetupPage)
			r.Post("/2fa/setup", adminAuth.TwoFASetupSubmit)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoryList)
				r.Get("/new", admin.CategoryNew)
				r.Post("/", admin.CategoryCreate)
				r.Get("/{id}/edit", admin.CategoryEdit)
				r.Post("/{id}", admin.CategoryUpdate)
				r.Post("/{id}/delete", admin.CategoryDelete)
			})

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", admin.ArticleList)
				r.Get("/new", admin.ArticleNew)
				r.Post("/", admin.ArticleCreate)
				r.Get("/{id}/edit", admin.ArticleEdit)
				r.Post("/{id}", admin.ArticleUpdate)
				r.Post("/{id}/delete", admin.ArticleDelete)
			})

			r.Route("/newsletters", func(r chi.Router) {
				r.Get("/", admin.NewsletterList)
				r.Post("/{id}/toggle", admin.NewsletterToggle)
				r.Post("/{id}/delete", admin.NewsletterDelete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", admin.UserList)
				r.Post("/{id}/toggle-staff", admin.UserToggleStaff)
			})

			r.Get("/api/subcategories", admin.Subcategories)
			r.Get("/api/stats", admin.Stats)
		})
	})

	return r, loginLimiter
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
