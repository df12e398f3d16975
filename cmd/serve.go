package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rlacey/statify/internal/server"
	"github.com/rlacey/statify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the token relay until the context is cancelled.
//
// The relay is the only process that reads the client secret; a missing
// secret is logged here but each request still answers 500 so that a
// misconfigured deployment is visible from the client side too.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if envPath := cmd.String("env"); envPath != "" {
		if err := shared.LoadEnv(envPath); err != nil {
			return err
		}
		// Re-apply overrides picked up from the dotenv file.
		r.config = shared.DefaultConfig()
		if cfg, err := shared.LoadConfig("config.toml"); err == nil {
			r.config = cfg
		}
	}

	addr := r.config.Relay.Addr()
	if port := cmd.Int("port"); port != 0 {
		addr = fmt.Sprintf("%s:%d", r.config.Relay.Host, port)
	}

	if r.config.Credentials.ClientSecret == "" {
		r.logger.Warn("SPOTIFY_CLIENT_SECRET is not set; token requests will fail with a configuration error")
	}

	handler := server.NewRelayHandler(server.RelayOpts{
		ClientID:     r.config.Credentials.ClientID,
		ClientSecret: r.config.Credentials.ClientSecret,
		Logger:       r.logger,
	})
	router := server.NewRelayRouter(handler, r.logger)

	srv := &http.Server{Addr: addr, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("token relay listening", "addr", addr, "upstream", handler.Describe())
		if r.config.Relay.CertFile != "" && r.config.Relay.KeyFile != "" {
			errChan <- srv.ListenAndServeTLS(r.config.Relay.CertFile, r.config.Relay.KeyFile)
		} else {
			errChan <- srv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("relay server failed: %w", err)
	}
}
