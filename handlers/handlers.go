// fixit/handlers/handlers.go

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/AB-App-Dev/FixIt/auth"
	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/stats"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	DB() *database.DatabaseService
	Auth() *auth.Manager
	Stats() *stats.Aggregator
	// Verifier returns nil when bot detection is disabled.
	Verifier() models.Verifier
	RateLimiter() *models.RateLimiter
	Storage() models.StorageService
	Logger() *slog.Logger
	Settings() *config.Settings
}

// Error messages shown to users.
const (
	msgInvalidRequest   = "Ungültige Anfrage."
	msgInternal         = "Interner Serverfehler."
	msgRateLimited      = "Zu viele Anfragen. Bitte warten Sie einen Moment."
	msgLoginRequired    = "E-Mail und Passwort sind erforderlich."
	msgInvalidLogin     = "Ungültige Anmeldedaten."
	msgNotLoggedIn      = "Nicht angemeldet."
	msgEmailRequired    = "E-Mail ist erforderlich."
	msgResetRequired    = "Token und Passwort sind erforderlich."
	msgPasswordTooShort = "Das Passwort muss mindestens 8 Zeichen lang sein."
	msgInvalidToken     = "Ungültiger oder abgelaufener Token."
	msgContactRequired  = "Alle Felder sind erforderlich."
	msgInvalidEmail     = "Bitte geben Sie eine gültige E-Mail-Adresse ein."
	msgRecaptchaMissing = "reCAPTCHA-Token fehlt."
	msgRecaptchaFailed  = "reCAPTCHA-Überprüfung fehlgeschlagen. Bitte versuchen Sie es erneut."
	msgIncidentRequired = "Alle Pflichtfelder müssen ausgefüllt sein."
	msgTitleTooLong     = "Der Titel darf maximal 200 Zeichen lang sein."
	msgImageTooLarge    = "Das Bild ist zu groß."
	msgImageSaveFailed  = "Das Bild konnte nicht gespeichert werden."
	msgMissingID        = "ID fehlt."
	msgIncidentNotFound = "Vorfall nicht gefunden."
	msgStatsUnavailable = "Statistiken konnten nicht geladen werden."
	msgDatabaseError    = "Datenbankfehler."
)

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// respondError sends {"error": msg}.
func respondError(w http.ResponseWriter, status int, msg string, app App) {
	respondJSON(w, status, map[string]string{"error": msg}, app)
}

func respondSuccess(w http.ResponseWriter, app App) {
	respondJSON(w, http.StatusOK, map[string]bool{"success": true}, app)
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// MakeHandler adapts a handler taking the App into an http.HandlerFunc.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}
