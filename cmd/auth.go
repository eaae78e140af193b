package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/pairing"
	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/desertthunder/mediastats/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the PIN pairing flow and stores the resulting credentials.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	clientID, err := store.ClientID()
	if err != nil {
		return fmt.Errorf("failed to load client identifier: %w", err)
	}

	logger := shared.WithLogger(r.logger, "component", "pairing")
	flow := pairing.NewFlow(pairing.Options{
		ClientID:     clientID,
		Product:      r.config.Plex.Product,
		AuthAppURL:   r.config.Plex.AuthAppURL,
		PollInterval: r.config.Pairing.PollInterval(),
		Timeout:      r.config.Pairing.Timeout(),
		Provider:     r.plexTV(),
		Opener:       r.approvalOpener(cmd.Bool("no-browser")),
		Chooser:      r.serverChooser(cmd.String("server"), store.Theme()),
		Saver:        store,
		Logger:       logger,
		OnTransition: func(from, to pairing.State) {
			logger.Debug("pairing state changed", "from", from, "to", to)
		},
	})

	result, err := flow.Run(ctx)
	switch {
	case errors.Is(err, shared.ErrPairingTimedOut):
		return err
	case err != nil:
		return fmt.Errorf("pairing failed: %w", err)
	}

	r.logger.Info("pairing complete", "server", result.Server.Name)
	r.writePlain("✓ Paired with %s\n", result.Server.Name)
	r.writePlain("Server: %s (%s)\n", result.Credentials.ServerAddress, result.Server.Connection.Kind())
	return nil
}

// approvalOpener prints the approval URL and opens it in a browser unless disabled.
func (r *Runner) approvalOpener(noBrowser bool) pairing.Opener {
	return func(url string) (func(), error) {
		r.writePlain("Approve this device at:\n  %s\n", url)
		r.writePlain("Waiting for approval...\n")

		closer := func() { r.logger.Debug("approval wait finished") }
		if noBrowser {
			return closer, nil
		}
		if err := r.openBrowser(url); err != nil {
			return nil, err
		}
		return closer, nil
	}
}

// serverChooser picks the server named name, or prompts when name is empty.
func (r *Runner) serverChooser(name string, theme models.Theme) pairing.Chooser {
	return pairing.ChooserFunc(func(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error) {
		if name == "" {
			return ui.ChooseServer(ctx, choices, theme, nil, nil)
		}
		for _, c := range choices {
			if strings.EqualFold(c.Name, name) {
				return c, nil
			}
		}
		return models.ServerChoice{}, fmt.Errorf("%w: no server named %q", shared.ErrNoServers, name)
	})
}

// AuthLogout removes the stored credentials.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.logger.Info("credentials cleared")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus prints the stored pairing state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	creds, ok := store.Load()
	if !ok {
		r.writePlain("✗ Not paired\n")
		return r.writePlain("Run 'mediastats auth login' to pair with Plex.\n")
	}

	r.writePlain("✓ Paired\n")
	r.writePlain("Server: %s\n", creds.ServerAddress)
	r.writePlain("Client: %s\n", creds.ClientIdentifier)
	r.writePlain("Theme: %s\n", store.Theme())

	if !cmd.Bool("check") {
		return nil
	}

	r.logger.Info("checking media server", "server", creds.ServerAddress)
	plex := services.NewPlexService(creds.ServerAddress, creds.Token, r.plexOptions())
	sections, err := plex.Sections(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return r.writePlain("Server reachable: ✓ (%d libraries)\n", len(sections))
}

// AuthReset replaces the client identifier, which also drops the stored credentials.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	id, err := store.ResetClientID()
	if err != nil {
		return fmt.Errorf("failed to reset client identifier: %w", err)
	}

	r.logger.Info("client identifier reset", "client", id)
	r.writePlain("✓ Client identifier reset\n")
	return r.writePlain("New identifier: %s\n", id)
}
