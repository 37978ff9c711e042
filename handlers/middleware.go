// fixit/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
	"github.com/go-chi/chi/v5/middleware"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const AdminKey ContextKey = "admin"

// NewStructuredLogger logs one line per request, at a level chosen by the
// response status.
func NewStructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// NewSecurityHeadersMiddleware sets browser hardening headers. imageOrigin is
// an extra origin allowed to serve images (the S3 public URL), or empty.
func NewSecurityHeadersMiddleware(imageOrigin string) func(http.Handler) http.Handler {
	imgSrc := "'self'"
	if imageOrigin != "" {
		imgSrc += " " + strings.TrimSuffix(imageOrigin, "/")
	}
	csp := "default-src 'none'; img-src " + imgSrc + "; frame-ancestors 'none'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests without a valid admin session cookie and
// stores the admin in the request context.
func RequireAdmin(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(config.SessionCookieName)
			if err != nil {
				respondError(w, http.StatusUnauthorized, msgNotLoggedIn, app)
				return
			}
			admin, err := app.Auth().Session(r.Context(), cookie.Value)
			if err != nil {
				app.Logger().Error("Failed to resolve admin session", "error", err)
				respondError(w, http.StatusInternalServerError, msgInternal, app)
				return
			}
			if admin == nil {
				respondError(w, http.StatusUnauthorized, msgNotLoggedIn, app)
				return
			}
			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the admin stored by RequireAdmin, if any.
func AdminFromContext(ctx context.Context) *models.Admin {
	admin, _ := ctx.Value(AdminKey).(*models.Admin)
	return admin
}

// RateLimitSubmissions applies the per-IP submission limiter.
func RateLimitSubmissions(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.GetIPAddress(r)
			if !app.RateLimiter().Allow(ip) {
				app.Logger().Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				respondError(w, http.StatusTooManyRequests, msgRateLimited, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
