// fixit/handlers/router.go
package handlers

import (
	"net/http"
	"time"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRouter(app App) *chi.Mux {
	settings := app.Settings()
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   settings.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var imageOrigin string
	if s3Store, ok := app.Storage().(*utils.S3Storage); ok {
		imageOrigin = s3Store.PublicURL
	}
	mux.Use(NewSecurityHeadersMiddleware(imageOrigin))

	// Static file server for locally stored uploads
	if local, ok := app.Storage().(*utils.LocalStorage); ok {
		mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.UploadDir))))
	}

	mux.Get("/healthz", MakeHandler(app, HandleHealth))

	mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", MakeHandler(app, HandleSession))
			r.Post("/logout", MakeHandler(app, HandleLogout))

			r.Group(func(r chi.Router) {
				perMinute := settings.Auth.RatePerMinute
				if perMinute <= 0 {
					perMinute = config.DefaultAuthPerMinute
				}
				r.Use(httprate.LimitByIP(perMinute, time.Minute))
				r.Post("/login", MakeHandler(app, HandleLogin))
				r.Post("/reset-request", MakeHandler(app, HandleResetRequest))
				r.Post("/reset-password", MakeHandler(app, HandleResetPassword))
			})
		})

		r.Get("/incidents", MakeHandler(app, HandleListIncidents))
		r.With(RateLimitSubmissions(app)).Post("/incidents", MakeHandler(app, HandleCreateIncident))
		if settings.Security.RequireAdminClose {
			r.With(RequireAdmin(app)).Patch("/incidents/{id}", MakeHandler(app, HandleCloseIncident))
		} else {
			r.Patch("/incidents/{id}", MakeHandler(app, HandleCloseIncident))
		}

		r.With(RateLimitSubmissions(app)).Post("/contact", MakeHandler(app, HandleContact))
		r.Get("/stats", MakeHandler(app, HandleStats))
	})

	return mux
}
