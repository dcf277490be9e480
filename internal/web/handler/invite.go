package handler

import (
	"log/slog"
	"net/http"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// InviteHandler serves a QR code pointing at the signup page
type InviteHandler struct {
	baseURL string
	logger  *slog.Logger
}

// NewInviteHandler creates a new InviteHandler. An empty baseURL means the
// link is derived from the request host.
func NewInviteHandler(baseURL string, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "web-invite")),
	}
}

// QR writes a PNG encoding the signup URL
func (h *InviteHandler) QR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.signupURL(r), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr encode failed", slog.String("error", err.Error()))
		http.Error(w, "failed to generate QR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *InviteHandler) signupURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + "/signup"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/signup"
}
