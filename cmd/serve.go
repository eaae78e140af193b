package main

import (
	"context"
	"net"

	"github.com/desertthunder/mediastats/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the proxy endpoints until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	r.logger.Info("starting proxy", "addr", addr)
	return server.NewServer(addr, r.proxyRouter(), r.logger).Start(ctx)
}

// proxyRouter wires the proxy and PIN handlers to the configured Plex clients.
func (r *Runner) proxyRouter() *server.BasicRouter {
	proxy := server.NewProxyHandler(server.PlexClientFactory(r.plexOptions()), r.logger)
	pins := server.NewPinHandler(r.plexTV(), r.logger)
	return server.NewProxyRouter(proxy, pins, r.logger)
}

// startLocalProxy serves the proxy on a loopback port until ctx ends and returns its base URL.
func (r *Runner) startLocalProxy(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	srv := server.NewServer(ln.Addr().String(), r.proxyRouter(), r.logger)
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			r.logger.Error("in-process proxy stopped", "error", err)
		}
	}()
	return "http://" + ln.Addr().String(), nil
}
