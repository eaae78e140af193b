// Package server provides the HTTP proxy the dashboard polls.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and answers wrong methods
// with a JSON 405. [DefaultMiddleware] adds chi's request id, real IP, and panic recovery
// middleware plus request logging.
//
// # Proxy Endpoints
//
// [ProxyHandler] serves GET /sessions, /stats, and /resources. Callers send the token and
// server address as the X-Plex-Token and X-Plex-Server-URL headers; [RequireCredentials]
// answers 401 when either is missing, before any upstream call. GET /thumbnail takes the
// same values as query parameters and relays the image bytes with a one year cache header.
//
// Upstream failures become a 500 with an {error, details} body where details is the
// provider payload when one was returned.
//
// # Pairing
//
// [PinHandler] serves POST /auth/initiate, returning {pinId, code, clientId} for clients
// that pair through the proxy.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
