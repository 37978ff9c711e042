// fixit/handlers/incidents.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// upload is the image attached to an incident submission.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HandleListIncidents lists incidents by status, OPEN unless ?status=closed.
func HandleListIncidents(w http.ResponseWriter, r *http.Request, app App) {
	status := models.ParseStatus(r.URL.Query().Get("status"))
	incidents, err := app.DB().ListIncidents(r.Context(), status)
	if err != nil {
		app.Logger().Error("Failed to list incidents", "handler", "HandleListIncidents", "status", status, "error", err)
		respondError(w, http.StatusInternalServerError, msgDatabaseError, app)
		return
	}
	respondJSON(w, http.StatusOK, incidents, app)
}

// HandleCreateIncident is the handler for citizen incident reports.
func HandleCreateIncident(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleCreateIncident")

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(config.MaxFileSize + 1024); err != nil {
		logger.Warn("Form parsing error", "error", err)
		respondError(w, http.StatusBadRequest, msgInvalidRequest, app)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Error("Failed to remove multipart temp files", "error", err)
		}
	}()

	img, err := readUpload(r, logger)
	if err != nil {
		logger.Warn("Image upload could not be read", "error", err)
		respondError(w, http.StatusBadRequest, msgInvalidRequest, app)
		return
	}

	if verifier := app.Verifier(); verifier != nil {
		token := r.PostFormValue("recaptchaToken")
		if token == "" {
			respondError(w, http.StatusBadRequest, msgRecaptchaMissing, app)
			return
		}
		if !verifier.Verify(r.Context(), token) {
			logger.Warn("Bot detection rejected submission", "ip", utils.GetIPAddress(r))
			respondError(w, http.StatusBadRequest, msgRecaptchaFailed, app)
			return
		}
	}

	input := models.IncidentInput{
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		Location:     r.PostFormValue("location"),
		WantsContact: r.PostFormValue("wantsContact") == "true",
		PhoneNumber:  r.PostFormValue("phoneNumber"),
	}
	if input.Title == "" || input.Description == "" || input.Location == "" || img == nil {
		respondError(w, http.StatusBadRequest, msgIncidentRequired, app)
		return
	}
	if utf8.RuneCountInString(input.Title) > config.MaxTitleLen {
		respondError(w, http.StatusBadRequest, msgTitleTooLong, app)
		return
	}

	imageURL, err := storeImage(r.Context(), app, img)
	if err != nil {
		if errors.Is(err, utils.ErrImageTooLarge) {
			respondError(w, http.StatusBadRequest, msgImageTooLarge, app)
			return
		}
		logger.Error("Failed to store image", "error", err)
		respondError(w, http.StatusInternalServerError, msgImageSaveFailed, app)
		return
	}

	incident, err := app.DB().CreateIncident(r.Context(), input, imageURL)
	if err != nil {
		if derr := app.Storage().DeleteFile(context.WithoutCancel(r.Context()), imageURL); derr != nil {
			logger.Error("Failed to remove image of failed incident", "image_url", imageURL, "error", derr)
		}
		if errors.Is(err, database.ErrTitleTooLong) {
			respondError(w, http.StatusBadRequest, msgTitleTooLong, app)
			return
		}
		logger.Error("Failed to insert incident", "error", err)
		respondError(w, http.StatusInternalServerError, msgDatabaseError, app)
		return
	}

	logger.Info("New incident created", "incident_id", incident.ID)
	respondJSON(w, http.StatusCreated, incident, app)
}

// HandleCloseIncident marks an incident as closed.
func HandleCloseIncident(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleCloseIncident")
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, msgMissingID, app)
		return
	}

	incident, err := app.DB().CloseIncident(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, msgIncidentNotFound, app)
			return
		}
		logger.Error("Failed to close incident", "incident_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, msgDatabaseError, app)
		return
	}

	if admin := AdminFromContext(r.Context()); admin != nil {
		logger.Info("Incident closed", "incident_id", id, "admin_id", admin.ID)
	} else {
		logger.Info("Incident closed", "incident_id", id)
	}
	respondJSON(w, http.StatusOK, incident, app)
}

// --- Internal Helper Functions ---

// readUpload returns the "image" part of the form, or nil if there is none.
func readUpload(r *http.Request, logger *slog.Logger) (*upload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get form file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Failed to close upload file", "error", err)
		}
	}()

	limitedReader := &io.LimitedReader{R: file, N: config.MaxFileSize + 1}
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("could not read file data: %w", err)
	}
	if limitedReader.N == 0 {
		return nil, fmt.Errorf("file is larger than the %dMB limit", config.MaxFileSize/1024/1024)
	}
	if len(data) == 0 {
		return nil, nil
	}

	up := &upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if up.Filename == "" {
		up.Filename = config.DefaultImageName
	}
	if up.ContentType == "" {
		up.ContentType = config.DefaultImageType
	}
	return up, nil
}

// storeImage sanitises the upload and saves it under a fresh UUID name.
func storeImage(ctx context.Context, app App, img *upload) (string, error) {
	data, err := utils.SanitizeImage(img.Data, config.MaxWidth, config.MaxHeight)
	if err != nil {
		return "", err
	}
	filename := uuid.New().String() + "." + utils.ImageExtension(img.Filename, config.DefaultImageExt)
	url, err := app.Storage().SaveFile(ctx, filename, data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", filename, err)
	}
	return url, nil
}
