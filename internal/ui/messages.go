package ui

import (
	"github.com/desertthunder/mediastats/internal/models"
)

type sessionsFetchedMsg struct {
	sessions []models.Session
	err      error
}

type statsFetchedMsg struct {
	stats *models.LibraryStats
	err   error
}

// resourcesFetchedMsg carries the attempt number so failures can be retried.
type resourcesFetchedMsg struct {
	usage   *models.ResourceUsage
	err     error
	attempt int
}

type sessionsTickMsg struct{}

type statsTickMsg struct{}

type resourcesRetryMsg struct {
	attempt int
}

// hideChromeMsg hides the header when seq still matches the latest interaction.
type hideChromeMsg struct {
	seq int
}
