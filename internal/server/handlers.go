package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/desertthunder/mediastats/internal/tasks"
)

// MediaClient is the media server surface the proxy handlers call.
type MediaClient interface {
	tasks.MediaServer
	Thumbnail(ctx context.Context, path string) (*services.Image, error)
}

// MediaClientFactory builds a client for the server at serverURL using token.
type MediaClientFactory func(serverURL, token string) MediaClient

// PlexClientFactory returns a factory producing [services.PlexService] clients with opts.
func PlexClientFactory(opts services.PlexOptions) MediaClientFactory {
	return func(serverURL, token string) MediaClient {
		return services.NewPlexService(serverURL, token, opts)
	}
}

// ProxyHandler serves the reshaped media server endpoints.
//
// It keeps no state between requests; every call is made with the credentials the caller sent.
type ProxyHandler struct {
	newClient MediaClientFactory
	logger    *log.Logger
}

// NewProxyHandler creates a [ProxyHandler].
func NewProxyHandler(factory MediaClientFactory, logger *log.Logger) *ProxyHandler {
	return &ProxyHandler{newClient: factory, logger: logger}
}

// Sessions serves GET /sessions.
func (h *ProxyHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)

	items, err := client.Sessions(r.Context())
	if err != nil {
		h.upstreamError(w, "Failed to fetch sessions", err)
		return
	}
	WriteJSON(w, http.StatusOK, tasks.BuildSessions(items))
}

// Stats serves GET /stats.
func (h *ProxyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := tasks.CollectLibraryStats(r.Context(), h.client(r))
	if err != nil {
		h.upstreamError(w, "Failed to fetch stats", err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Resources serves GET /resources.
func (h *ProxyHandler) Resources(w http.ResponseWriter, r *http.Request) {
	usage, err := tasks.CollectResourceUsage(r.Context(), h.client(r))
	if err != nil {
		h.upstreamError(w, "Failed to fetch resource data", err)
		return
	}
	WriteJSON(w, http.StatusOK, usage)
}

// Thumbnail serves GET /thumbnail?path&token&serverAddress, relaying image bytes unchanged.
func (h *ProxyHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	token := q.Get("token")
	serverURL := q.Get("serverAddress")
	if serverURL == "" {
		serverURL = q.Get("serverUrl")
	}

	if strings.TrimSpace(path) == "" {
		WriteError(w, http.StatusBadRequest, "Missing required parameters", nil)
		return
	}
	if token == "" || serverURL == "" {
		WriteError(w, http.StatusUnauthorized, "Unauthorized - Missing credentials", nil)
		return
	}

	img, err := h.newClient(serverURL, token).Thumbnail(r.Context(), path)
	if err != nil {
		h.upstreamError(w, "Failed to fetch thumbnail", err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// Health serves GET /health.
func (h *ProxyHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ProxyHandler) client(r *http.Request) MediaClient {
	creds, _ := CredentialsFrom(r.Context())
	return h.newClient(creds.ServerAddress, creds.Token)
}

func (h *ProxyHandler) upstreamError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "details", shared.ErrorDetails(err))
	WriteError(w, http.StatusInternalServerError, message, shared.ErrorDetails(err))
}
