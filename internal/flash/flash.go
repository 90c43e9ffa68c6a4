// Package flash implements one-time notification messages carried across a
// redirect in a short-lived cookie. A message added before a redirect is
// read and cleared by the next page render.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// cookieName holds the pending flash messages as base64-encoded JSON.
const cookieName = "hl_flash"

// Message is a single user-facing notification.
type Message struct {
	Type string `json:"type"` // "success", "error", "info"
	Text string `json:"text"`
}

// Success queues a success message on the response.
func Success(w http.ResponseWriter, r *http.Request, text string) {
	add(w, r, Message{Type: "success", Text: text})
}

// Error queues an error message on the response.
func Error(w http.ResponseWriter, r *http.Request, text string) {
	add(w, r, Message{Type: "error", Text: text})
}

// Info queues an informational message on the response.
func Info(w http.ResponseWriter, r *http.Request, text string) {
	add(w, r, Message{Type: "info", Text: text})
}

// add appends a message to any already queued on this request/response pair.
// Messages set earlier on the same response win over the request cookie, so
// queueing twice before a redirect keeps both.
func add(w http.ResponseWriter, r *http.Request, m Message) {
	msgs := append(queued(w, r), m)
	payload, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // flashes that are never rendered expire on their own
	})
}

// Pop returns the queued messages and clears the cookie so they render
// exactly once.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := peek(r)
	if len(msgs) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
	return msgs
}

// queued returns the messages pending on this exchange. A flash cookie
// already written to the response is the current state; only when none was
// written does the request cookie count.
func queued(w http.ResponseWriter, r *http.Request) []Message {
	lines := w.Header().Values("Set-Cookie")
	for i := len(lines) - 1; i >= 0; i-- {
		c, err := http.ParseSetCookie(lines[i])
		if err != nil || c.Name != cookieName {
			continue
		}
		return decode(c.Value)
	}
	return peek(r)
}

// peek decodes the flash cookie from the request without clearing it.
func peek(r *http.Request) []Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	return decode(cookie.Value)
}

// decode parses a cookie value. Malformed values are treated as empty.
func decode(value string) []Message {
	if value == "" {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(payload, &msgs); err != nil {
		return nil
	}
	return msgs
}
