package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// Cookie names
const (
	TokenCookie       = "access_token"
	ViewSessionCookie = "view_session"
)

// AuthHandler stores and clears the externally minted access token
type AuthHandler struct {
	sessions *viewstate.Manager
	render   *Renderer
	secure   bool
	now      func() time.Time
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *viewstate.Manager, render *Renderer, secureCookies bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		render:   render,
		secure:   secureCookies,
		now:      time.Now,
		logger:   log,
	}
}

type loginPage struct {
	basePage
	Error string
}

// Root sends visitors to the dashboard or the login page
// GET /
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginPage renders the token form
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, http.StatusOK, "login", loginPage{basePage: basePage{Title: "Sign in"}})
}

// Login stores the submitted access token in a cookie
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PostFormValue("token"))
	s := auth.FromToken(token)

	var msg string
	switch {
	case s == nil:
		msg = "Access token is required"
	case s.Expired(h.now()):
		msg = "Access token has expired"
	}
	if msg != "" {
		h.render.Page(w, http.StatusUnprocessableEntity, "login", loginPage{
			basePage: basePage{Title: "Sign in"},
			Error:    msg,
		})
		return
	}

	cookie := &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		cookie.Expires = s.ExpiresAt
	}
	http.SetCookie(w, cookie)

	h.logger.WithField("user_id", s.UserID).Info("User signed in")
	seeOther(w, r, "/dashboard")
}

// Logout clears the token and drops the view session
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(ViewSessionCookie); err == nil {
		h.sessions.Remove(c.Value)
	}

	for _, name := range []string{TokenCookie, ViewSessionCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	seeOther(w, r, "/login")
}
