package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rlacey/statify/internal/server"
	"github.com/rlacey/statify/internal/session"
	"github.com/rlacey/statify/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the CLI waits for the browser redirect.
const loginTimeout = 5 * time.Minute

// AuthLogin runs the full OAuth flow: it opens the provider's consent page in
// the browser, captures the authorization code on a local callback server and
// exchanges it for a credential pair through the relay.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	if r.config.Credentials.ClientID == "" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_ID is not set", shared.ErrMissingConfig)
	}

	authURL, state, err := r.session.Login()
	if err != nil {
		return err
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	srv := &http.Server{Addr: r.config.Callback.Addr(), Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Errorf("callback server failed: %v", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	r.writePlain("Opening your browser to authorize...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
		r.writePlain("Visit this URL to continue:\n%s\n", authURL)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if err := r.session.HandleCallback(ctx, result.Code); err != nil {
			return err
		}
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: no callback received", shared.ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Logged in\n")
}

// AuthLogout discards the stored credential pair.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the session state and, when authenticated, the profile it
// resolves to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}

	state := r.session.State()
	r.writePlain("Session: %s\n", state)

	if state != session.Authenticated {
		return nil
	}

	profile, err := r.spotify.Profile(ctx)
	if err != nil {
		r.writePlain("Stored credentials could not be verified: %v\n", err)
		return nil
	}

	name := profile.DisplayName
	if name == "" {
		name = profile.ID
	}
	return r.writePlain("Account: %s (%s)\n", name, profile.Product)
}
