package models

import (
	"fmt"
	"strings"
)

// Credentials is the stored result of a completed pairing.
//
// All three fields are present or the value is treated as absent.
type Credentials struct {
	ClientIdentifier string `json:"clientIdentifier"`
	Token            string `json:"token"`
	ServerAddress    string `json:"serverAddress"`
}

// Complete reports whether every field is set.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.ClientIdentifier) != "" &&
		strings.TrimSpace(c.Token) != "" &&
		strings.TrimSpace(c.ServerAddress) != ""
}

// Pin is a pairing request issued by plex.tv. It lives only for the duration of one pairing attempt.
type Pin struct {
	ID       int64  `json:"pinId"`
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

// Connection is one address a media server advertises as reachable.
type Connection struct {
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	URI      string `json:"uri,omitempty"`
	Local    bool   `json:"local"`
	Relay    bool   `json:"relay"`
}

// URL renders the connection as scheme://host:port.
func (c Connection) URL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Address, c.Port)
}

// Kind describes the connection for display.
func (c Connection) Kind() string {
	switch {
	case c.Local:
		return "Local Connection"
	case c.Relay:
		return "Relay Connection"
	default:
		return "Remote Connection"
	}
}

// ServerCandidate is one resource returned by plex.tv resource discovery.
type ServerCandidate struct {
	Name             string       `json:"name"`
	ClientIdentifier string       `json:"clientIdentifier"`
	Provides         string       `json:"provides"`
	Presence         bool         `json:"presence"`
	Connections      []Connection `json:"connections"`
}

// IsServer reports whether the resource advertises server capability.
func (s ServerCandidate) IsServer() bool {
	for _, p := range strings.Split(s.Provides, ",") {
		if strings.TrimSpace(p) == "server" {
			return true
		}
	}
	return false
}

// ServerChoice pairs a server with the connection picked for it.
type ServerChoice struct {
	Name       string     `json:"name"`
	Connection Connection `json:"connection"`
}

// Transcoding summarises whether and how a session is being re-encoded.
type Transcoding struct {
	IsTranscoding bool   `json:"isTranscoding"`
	VideoDecision string `json:"videoDecision,omitempty"`
	AudioDecision string `json:"audioDecision,omitempty"`
	Container     string `json:"container,omitempty"`
}

// Session is the dashboard view of one active playback.
type Session struct {
	ID              string      `json:"id"`
	User            string      `json:"user"`
	Title           string      `json:"title"`
	Type            string      `json:"type"`
	ProgressMinutes int         `json:"progressMinutes"`
	DurationMinutes int         `json:"durationMinutes"`
	Thumbnail       string      `json:"thumbnail,omitempty"`
	IsLive          bool        `json:"isLive"`
	Episode         string      `json:"episode,omitempty"`
	Transcoding     Transcoding `json:"transcoding"`
}

// Percent returns playback progress in [0, 100].
func (s Session) Percent() float64 {
	if s.DurationMinutes <= 0 {
		return 0
	}
	p := float64(s.ProgressMinutes) / float64(s.DurationMinutes) * 100
	if p > 100 {
		return 100
	}
	return p
}

// LibraryStats holds item counts per library bucket. Music is counted by album.
type LibraryStats struct {
	Movies int `json:"movies"`
	Shows  int `json:"shows"`
	Music  int `json:"music"`
}

// Bandwidth is a bandwidth total split by network location, in the units the server reports.
type Bandwidth struct {
	Total int64 `json:"total"`
	LAN   int64 `json:"lan"`
	WAN   int64 `json:"wan"`
}

// SessionResources is the per-poll aggregate over active sessions.
type SessionResources struct {
	Transcodes int       `json:"transcodes"`
	Streams    int       `json:"streams"`
	Bandwidth  Bandwidth `json:"bandwidth"`
}

// ResourceUsage is the response body of the resources endpoint.
type ResourceUsage struct {
	Sessions SessionResources `json:"sessions"`
}

// Theme is the dashboard color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns the theme named by s, defaulting to [ThemeLight].
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
