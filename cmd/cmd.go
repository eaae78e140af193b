// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags are shared by the one-shot fetch commands.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Export format when writing to a file (json, csv, or text)",
			Value: "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the result to a file instead of stdout",
		},
	}
}

// setupCommand creates the config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing, initialize the database, and run migrations",
		Action: r.Setup,
	}
}

// authCommand handles pairing with a Plex account
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Plex pairing",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Pair with a Plex account using a PIN and pick a server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the approval URL instead of opening a browser",
					},
					&cli.StringFlag{
						Name:  "server",
						Usage: "Pick the server with this name instead of prompting",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored credentials",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored pairing and optionally check the server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Call the media server with the stored token",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "reset",
				Usage:  "Generate a new client identifier and remove the stored credentials",
				Action: r.AuthReset,
			},
		},
	}
}

// serversCommand lists the servers available to the paired account
func serversCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "servers",
		Usage: "List discovered servers and the connection that would be used",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Servers,
	}
}

// serveCommand runs the proxy endpoints
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the proxy server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to [server] host:port)",
			},
		},
		Action: r.Serve,
	}
}

// dashboardCommand returns the top-level TUI command.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "proxy-url",
				Usage: "Proxy base URL (defaults to [dashboard] proxy_url, or an in-process proxy)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the dashboard owns the terminal",
				Value: "./tmp/mediastats-tui.log",
			},
		},
		Action: r.Dashboard,
	}
}

// plexCommand handles one-shot reads from the paired media server
func plexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plex",
		Usage: "Fetch data from the paired media server",
		Commands: []*cli.Command{
			{
				Name:   "sessions",
				Usage:  "List active playback sessions",
				Flags:  outputFlags(),
				Action: r.PlexSessions,
			},
			{
				Name:   "stats",
				Usage:  "Show library item counts",
				Flags:  outputFlags(),
				Action: r.PlexStats,
			},
			{
				Name:   "resources",
				Usage:  "Show stream, transcode, and bandwidth totals",
				Flags:  outputFlags(),
				Action: r.PlexResources,
			},
		},
	}
}

// apiCommand handles direct (proxy) API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to a running proxy",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the proxy with stored credentials, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "proxy-url",
						Usage: "Proxy base URL (defaults to [dashboard] proxy_url)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
