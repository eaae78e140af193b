// Package models defines the data carried between the pairing flow, the proxy endpoints, and the dashboard.
//
// The package contains three groups of types:
//
//  1. Persisted state: [Credentials] and [Theme], the only values written to the local store.
//  2. Pairing data: [Pin], [ServerCandidate], [Connection], and [ServerChoice], produced by plex.tv
//     and consumed once while selecting a server address.
//  3. View models: [Session], [Transcoding], [LibraryStats], and [ResourceUsage], recomputed on every poll.
package models
