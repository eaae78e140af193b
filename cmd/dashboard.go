package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/desertthunder/mediastats/internal/ui"
	"github.com/urfave/cli/v3"
)

// Dashboard launches the TUI against the configured proxy, starting one in-process when none is set.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	proxyURL, err := r.dashboardProxyURL(ctx, cmd.String("proxy-url"))
	if err != nil {
		return fmt.Errorf("failed to start proxy: %w", err)
	}
	r.logger.Info("dashboard starting", "proxy", proxyURL)

	cfg := r.config.Dashboard
	model := ui.NewDashboard(ctx, store, r.dataSource(proxyURL), ui.DashboardOptions{
		SessionsInterval: cfg.SessionsInterval(),
		StatsInterval:    cfg.StatsInterval(),
		RetryAttempts:    cfg.Retries(),
		RetryDelay:       cfg.RetryDelay(),
		ChromeHideAfter:  cfg.ChromeHideAfter(),
		RequestTimeout:   r.config.Plex.Timeout(),
		Logger:           r.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func (r *Runner) dashboardProxyURL(ctx context.Context, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if r.config.Dashboard.ProxyURL != "" {
		return r.config.Dashboard.ProxyURL, nil
	}
	return r.startLocalProxy(ctx)
}

// dataSource builds proxy clients that carry the stored credentials.
func (r *Runner) dataSource(proxyURL string) ui.SourceFactory {
	return func(creds models.Credentials) ui.DataSource {
		return services.NewAPIService(proxyURL, creds, r.httpClient)
	}
}
