package main

import (
	"context"

	"github.com/rlacey/statify/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a starter config.toml from the embedded defaults.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// SetupDatabase initializes the token store schema.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	r.logger.Info("token store ready", "path", r.config.Database.Path)
	return r.writePlain("✓ Token store initialized at %s\n", r.config.Database.Path)
}
