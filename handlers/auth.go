// fixit/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AB-App-Dev/FixIt/auth"
	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin checks admin credentials and sets the session cookie.
func HandleLogin(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleLogin")

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgLoginRequired, app)
		return
	}
	username := strings.TrimSpace(req.Email)
	if username == "" {
		username = strings.TrimSpace(req.Username)
	}

	cookie, err := app.Auth().Login(r.Context(), username, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		respondError(w, http.StatusBadRequest, msgLoginRequired, app)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.Warn("Failed login attempt", "username", username)
		respondError(w, http.StatusUnauthorized, msgInvalidLogin, app)
		return
	case err != nil:
		logger.Error("Login failed", "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal, app)
		return
	}

	http.SetCookie(w, cookie)
	logger.Info("Admin logged in", "username", username)
	respondSuccess(w, app)
}

// HandleLogout clears the session cookie.
func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	http.SetCookie(w, app.Auth().LogoutCookie())
	respondSuccess(w, app)
}

// HandleSession reports whether the request carries a valid admin session.
// A cookie that no longer resolves to an admin is cleared.
func HandleSession(w http.ResponseWriter, r *http.Request, app App) {
	cookie, err := r.Cookie(config.SessionCookieName)
	if err != nil || cookie.Value == "" {
		respondJSON(w, http.StatusOK, models.SessionState{LoggedIn: false}, app)
		return
	}

	admin, err := app.Auth().Session(r.Context(), cookie.Value)
	if err != nil {
		app.Logger().Error("Failed to resolve session", "handler", "HandleSession", "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal, app)
		return
	}
	if admin == nil {
		http.SetCookie(w, app.Auth().LogoutCookie())
		respondJSON(w, http.StatusOK, models.SessionState{LoggedIn: false}, app)
		return
	}
	respondJSON(w, http.StatusOK, models.SessionState{LoggedIn: true}, app)
}

// HandleResetRequest issues a password reset link. The response does not
// reveal whether the email belongs to an admin.
func HandleResetRequest(w http.ResponseWriter, r *http.Request, app App) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgEmailRequired, app)
		return
	}

	err := app.Auth().RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, auth.ErrMissingFields) {
		respondError(w, http.StatusBadRequest, msgEmailRequired, app)
		return
	}
	if err != nil {
		app.Logger().Error("Password reset request failed", "handler", "HandleResetRequest", "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal, app)
		return
	}
	respondSuccess(w, app)
}

// HandleResetPassword sets a new password using a reset token.
func HandleResetPassword(w http.ResponseWriter, r *http.Request, app App) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgResetRequired, app)
		return
	}

	err := app.Auth().ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		respondError(w, http.StatusBadRequest, msgResetRequired, app)
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, msgPasswordTooShort, app)
	case errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusBadRequest, msgInvalidToken, app)
	case err != nil:
		app.Logger().Error("Password reset failed", "handler", "HandleResetPassword", "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal, app)
	default:
		respondSuccess(w, app)
	}
}
