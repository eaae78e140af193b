// Package repositories implements SQLite persistence for application state.
//
// State is small and flat, so it lives in a single key-value table:
//   - [SettingsRepository] : string values under well-known keys, with upsert and idempotent delete
//
// Callers encode structured values themselves. See the credentials package for the keys in use.
package repositories
