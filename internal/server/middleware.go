package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/go-chi/chi/v5/middleware"
)

// Credential headers sent by dashboard clients.
const (
	HeaderToken     = "X-Plex-Token"
	HeaderServerURL = "X-Plex-Server-URL"
)

type credentialsKey struct{}

// DefaultMiddleware returns the stack every proxy route runs behind: request ids, real
// client addresses, panic recovery, and request logging.
func DefaultMiddleware(logger *log.Logger) []Middleware {
	return []Middleware{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		RequestLogger(logger),
	}
}

// RequestLogger logs each request with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
			)
		})
	}
}

// RequireCredentials rejects requests missing the token or server address headers with a
// 401 before any upstream call is made. Accepted credentials are stored on the context.
func RequireCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(HeaderToken))
		serverURL := strings.TrimSpace(r.Header.Get(HeaderServerURL))

		if token == "" || serverURL == "" {
			WriteError(w, http.StatusUnauthorized, "Unauthorized - Missing credentials", nil)
			return
		}

		creds := models.Credentials{Token: token, ServerAddress: serverURL}
		next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
	})
}

// WithCredentials returns a context carrying creds.
func WithCredentials(ctx context.Context, creds models.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials stored by [RequireCredentials].
func CredentialsFrom(ctx context.Context) (models.Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(models.Credentials)
	return creds, ok
}
