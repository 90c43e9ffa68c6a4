package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"healthline/internal/flash"
	"healthline/internal/middleware"
	"healthline/internal/render"
	"healthline/internal/session"
	"healthline/internal/storage"
	"healthline/internal/store"
)

// maxPhotoSize caps profile photo uploads at 5 MiB.
const maxPhotoSize = 5 << 20

// avatarChoices are the built-in avatars a reader can pick instead of
// uploading a photo. An uploaded photo takes precedence over the avatar.
var avatarChoices = []string{
	"/static/images/avatars/mint.svg",
	"/static/images/avatars/sky.svg",
	"/static/images/avatars/sand.svg",
}

// Account groups the reader-facing auth and profile handlers.
type Account struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	profiles *store.ProfileStore
	storage  *storage.Client // nil when S3 is not configured
}

// NewAccount creates a new Account handler group. storageClient may be nil.
func NewAccount(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, profiles *store.ProfileStore, storageClient *storage.Client) *Account {
	return &Account{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		profiles: profiles,
		storage:  storageClient,
	}
}

// SigninPage renders the reader sign-in form.
func (a *Account) SigninPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "site/signin", &render.PageData{Title: "Sign In"})
}

// SigninSubmit checks credentials and opens a reader session.
func (a *Account) SigninSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := a.users.FindByUsername(username)
	if err != nil {
		slog.Error("signin lookup failed", "error", err)
		a.renderer.Page(w, r, "site/signin", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": "An unexpected error occurred.", "Username": username},
		})
		return
	}

	if user == nil || !a.users.CheckPassword(user, password) {
		a.renderer.Page(w, r, "site/signin", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": "Invalid username or password.", "Username": username},
		})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		IsStaff:  user.IsStaff,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	flash.Success(w, r, fmt.Sprintf("Welcome back, %s!", user.Username))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupPage renders the registration form.
func (a *Account) SignupPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "site/signup", &render.PageData{Title: "Sign Up"})
}

// SignupSubmit registers a reader account, creates its empty profile, and
// signs the new user in.
func (a *Account) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	form := parseSignupForm(r)
	if msg := form.validate(); msg != "" {
		a.renderSignupError(w, r, form, msg)
		return
	}

	existing, err := a.users.FindByUsername(form.Username)
	if err != nil {
		slog.Error("signup lookup failed", "error", err)
		a.renderSignupError(w, r, form, "An unexpected error occurred.")
		return
	}
	if existing != nil {
		a.renderSignupError(w, r, form, "That username is already taken.")
		return
	}

	byEmail, err := a.users.FindByEmail(form.Email)
	if err != nil {
		slog.Error("signup email lookup failed", "error", err)
		a.renderSignupError(w, r, form, "An unexpected error occurred.")
		return
	}
	if byEmail != nil {
		a.renderSignupError(w, r, form, "An account with that email already exists.")
		return
	}

	user, err := a.users.Create(form.Username, form.Email, form.Password, form.FirstName, form.LastName, false)
	if err != nil {
		slog.Error("create user failed", "error", err)
		a.renderSignupError(w, r, form, "An unexpected error occurred.")
		return
	}

	if _, err := a.profiles.GetOrCreate(user.ID); err != nil {
		slog.Error("create profile failed", "error", err, "user", user.Username)
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		IsStaff:  user.IsStaff,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Your account has been created.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Account) renderSignupError(w http.ResponseWriter, r *http.Request, form signupForm, msg string) {
	a.renderer.Page(w, r, "site/signup", &render.PageData{
		Title: "Sign Up",
		Data: map[string]any{
			"Error":     msg,
			"Username":  form.Username,
			"Email":     form.Email,
			"FirstName": form.FirstName,
			"LastName":  form.LastName,
		},
	})
}

// Signout destroys the session and returns to the home page.
func (a *Account) Signout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ProfilePage renders the profile with the user's saved and liked articles.
func (a *Account) ProfilePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("profile user lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	profile, err := a.profiles.GetOrCreate(sess.UserID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	saved, err := a.profiles.ListSaved(sess.UserID)
	if err != nil {
		slog.Error("list saved articles failed", "error", err)
	}
	liked, err := a.profiles.ListLiked(sess.UserID)
	if err != nil {
		slog.Error("list liked articles failed", "error", err)
	}

	a.renderer.Page(w, r, "site/profile", &render.PageData{
		Title:   "My Profile",
		Section: "profile",
		Data: map[string]any{
			"User":           user,
			"Profile":        profile,
			"Saved":          saved,
			"Liked":          liked,
			"AvatarChoices":  avatarChoices,
			"UploadsEnabled": a.storage != nil,
		},
	})
}

// ProfileUpdate applies the name/email form, an optional photo upload, or a
// photo removal, depending on which submit action arrived.
func (a *Account) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		flash.Error(w, r, "Upload is too large (max 5 MB).")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	switch r.FormValue("action") {
	case "remove_photo":
		a.removePhoto(w, r, sess.UserID)
	case "upload_photo":
		a.uploadPhoto(w, r, sess.UserID)
	case "set_avatar":
		a.setAvatar(w, r, sess.UserID)
	default:
		a.updateInfo(w, r, sess.UserID)
	}
}

// setAvatar stores one of the built-in avatar choices on the profile.
func (a *Account) setAvatar(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	avatar := r.FormValue("avatar")
	if !slices.Contains(avatarChoices, avatar) {
		flash.Error(w, r, "Please pick one of the available avatars.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if err := a.profiles.SetAvatar(userID, avatar); err != nil {
		slog.Error("set avatar failed", "error", err)
		flash.Error(w, r, "Could not save the avatar.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Avatar updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *Account) updateInfo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	form := parseProfileForm(r)
	if msg := form.validate(); msg != "" {
		flash.Error(w, r, msg)
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if err := a.users.UpdateInfo(userID, form.Email, form.FirstName, form.LastName); err != nil {
		slog.Error("update user info failed", "error", err)
		flash.Error(w, r, "Could not update your details.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Profile updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *Account) uploadPhoto(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	if a.storage == nil {
		flash.Error(w, r, "Photo uploads are not available.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		flash.Error(w, r, "Please choose a photo to upload.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	defer file.Close()

	url, err := uploadImage(r.Context(), a.storage, "profiles", file, header)
	if err != nil {
		slog.Error("photo upload failed", "error", err)
		flash.Error(w, r, "Could not upload the photo.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if err := a.profiles.SetPhoto(userID, &url); err != nil {
		slog.Error("set photo failed", "error", err)
		flash.Error(w, r, "Could not save the photo.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Photo updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *Account) removePhoto(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	profile, err := a.profiles.FindByUserID(userID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err)
	}

	if profile != nil && profile.PhotoURL != nil && a.storage != nil {
		if key, ok := a.storage.ExtractKey(*profile.PhotoURL); ok {
			if err := a.storage.Delete(r.Context(), key); err != nil {
				slog.Warn("delete photo object failed", "error", err, "key", key)
			}
		}
	}

	if err := a.profiles.SetPhoto(userID, nil); err != nil {
		slog.Error("remove photo failed", "error", err)
		flash.Error(w, r, "Could not remove the photo.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	flash.Success(w, r, "Photo removed.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// allowedImageTypes are the content types accepted for image uploads.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// uploadImage stores an uploaded image under a random key in the given
// folder and returns its public URL. The extension comes from the declared
// content type, never from the client-supplied filename.
func uploadImage(ctx context.Context, client *storage.Client, folder string, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	key := folder + "/" + uuid.NewString() + ext
	return client.Upload(ctx, key, contentType, file, header.Size)
}
