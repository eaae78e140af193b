package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the proxy with the stored credentials.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	proxyURL := cmd.String("proxy-url")
	if proxyURL == "" {
		proxyURL = r.config.Dashboard.ProxyURL
	}
	if proxyURL == "" {
		return fmt.Errorf("%w: set --proxy-url or [dashboard] proxy_url", shared.ErrMissingConfig)
	}

	store, err := r.storedCredentials()
	if err != nil {
		return err
	}
	creds, _ := store.Load()

	r.logger.Info("GET request", "path", path)

	resp, err := services.NewAPIService(proxyURL, creds, r.httpClient).Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
