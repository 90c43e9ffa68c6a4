package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Staff users can access the admin panel;
// any staff user may optionally enroll a TOTP second factor.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA enrollment
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the user's display name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Initials returns a single uppercase letter used as an avatar fallback.
func (u *User) Initials() string {
	name := u.FullName()
	if name == "" {
		return "U"
	}
	return strings.ToUpper(name[:1])
}

// Profile extends a user account with personalization data. Each user has
// at most one profile, created lazily the first time it is needed.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Avatar    string    `json:"avatar"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvatarURL returns the image URL for the profile, or "" when the profile
// has neither an uploaded photo nor a URL-shaped avatar value (the caller
// falls back to initials).
func (p *Profile) AvatarURL() string {
	if p.PhotoURL != nil && *p.PhotoURL != "" {
		return *p.PhotoURL
	}
	if strings.HasPrefix(p.Avatar, "http://") || strings.HasPrefix(p.Avatar, "https://") ||
		strings.HasPrefix(p.Avatar, "/") {
		return p.Avatar
	}
	return ""
}
