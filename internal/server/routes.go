package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

// NewProxyRouter registers every proxy route behind [DefaultMiddleware].
//
// pins may be nil, in which case /auth/initiate is not served.
func NewProxyRouter(proxy *ProxyHandler, pins *PinHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(DefaultMiddleware(logger)...)

	router.Handle(http.MethodGet, "/sessions", RequireCredentials(http.HandlerFunc(proxy.Sessions)))
	router.Handle(http.MethodGet, "/stats", RequireCredentials(http.HandlerFunc(proxy.Stats)))
	router.Handle(http.MethodGet, "/resources", RequireCredentials(http.HandlerFunc(proxy.Resources)))
	router.Handle(http.MethodGet, "/thumbnail", http.HandlerFunc(proxy.Thumbnail))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(proxy.Health))

	if pins != nil {
		router.Handler(pins)
	}
	return router
}
