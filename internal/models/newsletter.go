package models

import (
	"time"

	"github.com/google/uuid"
)

// Newsletter is a single email subscription. Emails are unique; an
// unsubscribed address keeps its row with IsActive false so a later
// subscribe reactivates it instead of creating a duplicate.
type Newsletter struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
