package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mcoot/clashoffists/internal/web/templates/layout"
)

const flashCookieName = "flash"

type flashKey struct{}

// Flash categories, matching the alert styles in app.css
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Redirect sends the browser to url with a message to show on the next page
func Redirect(w http.ResponseWriter, r *http.Request, url, category, message string) {
	raw, _ := json.Marshal(layout.FlashMessage{Type: category, Message: message})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// GetFlash returns the message carried into this request, if any
func GetFlash(ctx context.Context) *layout.FlashMessage {
	msg, _ := ctx.Value(flashKey{}).(*layout.FlashMessage)
	return msg
}

// Flash moves a pending message from its cookie into the request context.
// The cookie is cleared so the message renders exactly once.
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(flashCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ClearCookie(w, flashCookieName)
			ctx := context.WithValue(r.Context(), flashKey{}, decodeFlash(cookie.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClearCookie tells the browser to drop the named cookie
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// decodeFlash returns nil for anything that is not a message we wrote
func decodeFlash(value string) *layout.FlashMessage {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msg layout.FlashMessage
	if json.Unmarshal(raw, &msg) != nil || msg.Message == "" {
		return nil
	}
	if msg.Type == "" {
		msg.Type = FlashInfo
	}
	return &msg
}
