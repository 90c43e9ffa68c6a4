package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"healthline/internal/flash"
	"healthline/internal/middleware"
	"healthline/internal/render"
	"healthline/internal/session"
	"healthline/internal/store"
)

// totpIssuer names the service in authenticator apps.
const totpIssuer = "HealthLine"

// AdminAuth groups the staff login, logout, and TOTP enrollment handlers.
type AdminAuth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
}

// NewAdminAuth creates a new AdminAuth handler group.
func NewAdminAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore) *AdminAuth {
	return &AdminAuth{
		renderer: renderer,
		sessions: sessions,
		users:    users,
	}
}

// LoginPage renders the staff login form.
func (a *AdminAuth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.IsStaff && sess.StaffVerified {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "admin/login", &render.PageData{Title: "Staff Sign In"})
}

// LoginSubmit checks staff credentials. Users with TOTP enrolled go to the
// code entry page before the session counts as staff-verified; everyone
// else lands on the remembered admin path or the dashboard.
func (a *AdminAuth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := a.users.FindByUsername(username)
	if err != nil {
		slog.Error("admin login lookup failed", "error", err)
		a.renderLoginError(w, r, username, "An unexpected error occurred.")
		return
	}

	if user == nil || !a.users.CheckPassword(user, password) {
		a.renderLoginError(w, r, username, "Invalid username or password.")
		return
	}

	if !user.IsStaff {
		a.renderLoginError(w, r, username, "This account does not have staff access.")
		return
	}

	needsCode := user.TOTPEnabled && user.TOTPSecret != nil

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:        user.ID,
		Username:      user.Username,
		FullName:      user.FullName(),
		IsStaff:       true,
		StaffVerified: !needsCode,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if needsCode {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, middleware.PopNext(w, r), http.StatusSeeOther)
}

func (a *AdminAuth) renderLoginError(w http.ResponseWriter, r *http.Request, username, msg string) {
	a.renderer.Page(w, r, "admin/login", &render.PageData{
		Title: "Staff Sign In",
		Data:  map[string]any{"Error": msg, "Username": username},
	})
}

// TwoFAVerifyPage renders the code entry form for enrolled staff.
func (a *AdminAuth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || !sess.IsStaff {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "admin/2fa_verify", &render.PageData{Title: "Two-Factor Authentication"})
}

// TwoFAVerifySubmit validates the TOTP code and completes the staff login.
func (a *AdminAuth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || !sess.IsStaff {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("2fa user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, middleware.PopNext(w, r), http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.renderer.Page(w, r, "admin/2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	sess.StaffVerified = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, middleware.PopNext(w, r), http.StatusSeeOther)
}

// TwoFASetupPage generates a provisional TOTP secret for the signed-in
// staff user and shows the QR code. Enrollment is optional; the secret only
// becomes active after a successful code check.
func (a *AdminAuth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin/2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
		},
	})
}

// TwoFASetupSubmit confirms enrollment by validating the first code.
func (a *AdminAuth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		qrPNG, _ := qrcode.Encode(
			"otpauth://totp/"+totpIssuer+":"+user.Username+"?secret="+*user.TOTPSecret+"&issuer="+totpIssuer,
			qrcode.Medium, 256,
		)
		a.renderer.Page(w, r, "admin/2fa_setup", &render.PageData{
			Title: "Set Up Two-Factor Authentication",
			Data: map[string]any{
				"Error":  "Invalid code. Please try again.",
				"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
				"Secret": *user.TOTPSecret,
			},
		})
		return
	}

	if err := a.users.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	flash.Success(w, r, "Two-factor authentication is now enabled.")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout destroys the session and returns to the staff login form.
func (a *AdminAuth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
