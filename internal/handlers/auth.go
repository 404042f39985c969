package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/middleware"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{base{d}}
}

// LoginForm renders the login page, or sends an already signed-in user to their home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.Gate.ResolveSession(r); ok {
		http.Redirect(w, r, access.HomeFor(s.Role), http.StatusFound)
		return
	}
	h.render(w, r, "login.html", map[string]interface{}{
		"Title": "Iniciar sesión",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	data := map[string]interface{}{
		"Title": "Iniciar sesión",
		"Email": email,
	}
	if email == "" || password == "" {
		data["Error"] = "Ingresa tu correo y contraseña"
		h.renderStatus(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	s, err := h.Actions.Authenticate(r.Context(), email, password)
	switch {
	case errors.Is(err, actions.ErrInvalidCredentials):
		data["Error"] = actions.MsgInvalidCredentials
		h.renderStatus(w, r, http.StatusUnauthorized, "login.html", data)
		return
	case errors.Is(err, actions.ErrBanned):
		data["Error"] = actions.MsgBanned
		h.renderStatus(w, r, http.StatusForbidden, "login.html", data)
		return
	case errors.Is(err, actions.ErrUnknownRole):
		data["Error"] = actions.MsgUnknownRole
		h.renderStatus(w, r, http.StatusForbidden, "login.html", data)
		return
	case err != nil:
		h.serverError(w, r, "login failed", err)
		return
	}

	h.Logger.Info("user signed in", zap.String("user_id", s.UserID), zap.String("role", string(s.Role)))
	http.SetCookie(w, h.Gate.Issue(*s, h.Config.SecureCookies))
	http.Redirect(w, r, access.HomeFor(s.Role), http.StatusFound)
}

// Logout clears the session cookie and redirects to login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, middleware.ClearSessionCookie(h.Config.SecureCookies))
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Home sends the user to the landing page of their role.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Gate.ResolveSession(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, access.HomeFor(s.Role), http.StatusFound)
}
