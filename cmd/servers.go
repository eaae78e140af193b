package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mediastats/internal/pairing"
	"github.com/urfave/cli/v3"
)

// Servers lists the account's available servers with the connection each would use.
func (r *Runner) Servers(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storedCredentials()
	if err != nil {
		return err
	}
	creds, _ := store.Load()

	candidates, err := r.plexTV().Resources(ctx, creds.Token, creds.ClientIdentifier)
	if err != nil {
		return err
	}

	choices := pairing.BuildChoices(pairing.FilterServers(candidates))
	r.logger.Debug("discovered servers", "resources", len(candidates), "servers", len(choices))

	if cmd.Bool("json") {
		return r.writeJSON(choices, true)
	}

	r.writePlainHeader(fmt.Sprintf("Servers (%d)", len(choices)))
	if len(choices) == 0 {
		return r.writePlain("No available servers\n")
	}
	for _, c := range choices {
		marker := " "
		if c.Connection.URL() == creds.ServerAddress {
			marker = "*"
		}
		r.writePlain("%s %s\n    %s (%s)\n", marker, c.Name, c.Connection.URL(), c.Connection.Kind())
	}
	return nil
}
