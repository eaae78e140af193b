package tasks

import (
	"context"

	"github.com/desertthunder/mediastats/internal/services"
)

// MediaServer is the subset of [services.PlexService] the tasks read from.
type MediaServer interface {
	Sessions(ctx context.Context) ([]services.Metadata, error)
	Sections(ctx context.Context) ([]services.Directory, error)
	SectionSize(ctx context.Context, key, view string) (int, error)
}
