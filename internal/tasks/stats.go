package tasks

import (
	"context"

	"github.com/desertthunder/mediastats/internal/models"
)

// Section types that contribute to library stats, mapped to the listing that is counted.
var sectionViews = map[string]string{
	"movie":  "all",
	"show":   "all",
	"artist": "albums",
}

// CollectLibraryStats counts movies, shows, and music albums across every library section.
//
// The first failing request aborts the collection.
func CollectLibraryStats(ctx context.Context, server MediaServer) (*models.LibraryStats, error) {
	sections, err := server.Sections(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.LibraryStats{}
	for _, section := range sections {
		view, counted := sectionViews[section.Type]
		if !counted {
			continue
		}

		size, err := server.SectionSize(ctx, section.Key, view)
		if err != nil {
			return nil, err
		}

		switch section.Type {
		case "movie":
			stats.Movies += size
		case "show":
			stats.Shows += size
		case "artist":
			stats.Music += size
		}
	}
	return stats, nil
}
