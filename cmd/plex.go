package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mediastats/internal/formatter"
	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/desertthunder/mediastats/internal/tasks"
	"github.com/urfave/cli/v3"
)

// export holds the renderings a fetch command can produce.
type export struct {
	data any
	text []byte
	csv  func() ([]byte, error)
}

// PlexSessions prints the active playback sessions.
func (r *Runner) PlexSessions(ctx context.Context, cmd *cli.Command) error {
	plex, err := r.mediaServer()
	if err != nil {
		return err
	}

	items, err := plex.Sessions(ctx)
	if err != nil {
		return err
	}
	sessions := tasks.BuildSessions(items)
	r.logger.Debug("fetched sessions", "count", len(sessions))

	return r.emit(cmd, export{
		data: sessions,
		text: formatter.SessionsToText(sessions),
		csv:  func() ([]byte, error) { return formatter.SessionsToCSV(sessions) },
	})
}

// PlexStats prints library item counts.
func (r *Runner) PlexStats(ctx context.Context, cmd *cli.Command) error {
	plex, err := r.mediaServer()
	if err != nil {
		return err
	}

	stats, err := tasks.CollectLibraryStats(ctx, plex)
	if err != nil {
		return err
	}

	return r.emit(cmd, export{data: stats, text: formatter.StatsToText(*stats)})
}

// PlexResources prints stream, transcode, and bandwidth totals.
func (r *Runner) PlexResources(ctx context.Context, cmd *cli.Command) error {
	plex, err := r.mediaServer()
	if err != nil {
		return err
	}

	usage, err := tasks.CollectResourceUsage(ctx, plex)
	if err != nil {
		return err
	}

	return r.emit(cmd, export{data: usage, text: formatter.ResourcesToText(*usage)})
}

// mediaServer builds a client for the stored server.
func (r *Runner) mediaServer() (*services.PlexService, error) {
	store, err := r.storedCredentials()
	if err != nil {
		return nil, err
	}
	creds, _ := store.Load()
	return services.NewPlexService(creds.ServerAddress, creds.Token, r.plexOptions()), nil
}

// emit writes e to --output in --format, or to stdout as JSON or text.
func (r *Runner) emit(cmd *cli.Command, e export) error {
	path := cmd.String("output")
	if path == "" {
		if cmd.Bool("json") {
			return r.writeJSON(e.data, cmd.Bool("pretty"))
		}
		_, err := r.output.Write(e.text)
		return err
	}

	var data []byte
	var err error

	switch format := cmd.String("format"); format {
	case "json":
		data, err = formatter.ToJSON(e.data)
	case "text":
		data = e.text
	case "csv":
		if e.csv == nil {
			return fmt.Errorf("%w: csv export is only available for sessions", shared.ErrInvalidArgument)
		}
		data, err = e.csv()
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	if err := formatter.WriteExport(path, data); err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "bytes", len(data))
	return r.writePlain("✓ Exported to %s\n", path)
}
