// Package ui implements the terminal dashboard and server chooser using bubbletea's Elm architecture.
//
// The package provides two models:
//  1. [Dashboard] : polls a [DataSource] and renders library stats, session resources, and active sessions
//  2. [Chooser] : presents the servers discovered during pairing as a list
//
// The dashboard runs two independent tea.Tick loops. Sessions and resources share the short interval and stats
// use the long one. A failed resources fetch is retried a fixed number of times before the error is shown.
// The header chrome hides after a few seconds of inactivity and returns on any key or mouse event.
//
// Without stored credentials the dashboard renders an unauthenticated view and schedules nothing.
package ui
