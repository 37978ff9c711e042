// fixit/handlers/contact.go
package handlers

import (
	"net/http"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HandleContact stores a message from the public contact form.
func HandleContact(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleContact")

	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("Invalid contact request body", "error", err)
		respondError(w, http.StatusBadRequest, msgInvalidRequest, app)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, msgContactRequired, app)
		return
	}
	if !emailPattern.MatchString(req.Email) {
		respondError(w, http.StatusBadRequest, msgInvalidEmail, app)
		return
	}

	msg, err := app.DB().CreateContactMessage(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		logger.Error("Failed to store contact message", "error", err)
		respondError(w, http.StatusInternalServerError, msgDatabaseError, app)
		return
	}
	logger.Info("Contact message received", "message_id", msg.ID)
	respondJSON(w, http.StatusCreated, msg, app)
}
