package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/web/middleware"
	"github.com/mcoot/clashoffists/internal/web/templates/pages"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.With(slog.String("component", "web-auth")),
	}
}

// Index sends visitors to the mode page or the login page
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/mode", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SignupPage renders the signup form
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	data := pages.SignupData{PageData: pageData(r, "Sign up")}
	render(w, r, h.logger, pages.Signup(data))
}

// Signup handles signup form submission
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, "/signup", middleware.FlashDanger, "Invalid form data")
		return
	}

	_, err := h.authService.Signup(r.Context(),
		r.FormValue("email"),
		r.FormValue("username"),
		r.FormValue("password"),
	)
	switch {
	case err == nil:
		middleware.Redirect(w, r, "/login", middleware.FlashSuccess, "Account created! Please log in.")
	case errors.Is(err, auth.ErrUserExists):
		middleware.Redirect(w, r, "/signup", middleware.FlashDanger, "Email or username already exists")
	case errors.Is(err, auth.ErrMissingFields):
		middleware.Redirect(w, r, "/signup", middleware.FlashDanger, "Email, username and password are required")
	default:
		h.logger.Error("signup failed", slog.String("error", err.Error()))
		middleware.Redirect(w, r, "/signup", middleware.FlashDanger, "Could not create account, please try again")
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Next:     middleware.SafeNext(r.URL.Query().Get("next"), ""),
	}
	render(w, r, h.logger, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, "/login", middleware.FlashDanger, "Invalid form data")
		return
	}

	session, err := h.authService.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		middleware.Redirect(w, r, "/login", middleware.FlashDanger, "Invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, middleware.SafeNext(r.FormValue("next"), "/mode"), http.StatusSeeOther)
}

// Logout ends the session and returns to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		h.logger.Warn("logout failed", slog.String("error", err.Error()))
	}

	middleware.ClearCookie(w, middleware.SessionCookieName)
	middleware.Redirect(w, r, "/login", middleware.FlashInfo, "Logged out successfully")
}
