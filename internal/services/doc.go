// Package services holds the HTTP clients the application talks to.
//
// # plex.tv
//
// [PlexTVService] issues pairing PINs, reports whether a PIN has been approved, and lists
// the resources visible to an account. Approved PINs are returned as an [oauth2.Token]
// with [TokenType] so the rest of the module can carry the token through token sources.
//
// # Media server
//
// [PlexService] calls a single media server. The account token is attached by a transport
// fed from an [oauth2.TokenSource]; requests are optionally paced by a [rate.Limiter] so a
// stats fan-out cannot flood the server.
//
// # Proxy
//
// [APIService] is the client of this application's own proxy endpoints, used by the
// dashboard and the one-shot CLI commands. It sends the stored token and server address
// as the X-Plex-Token and X-Plex-Server-URL headers.
//
// # Errors
//
// Every non-2xx response and transport failure is returned as a [shared.UpstreamError]
// whose Details hold the provider payload (or the transport message), so callers can relay
// it verbatim in an {error, details} body.
package services
