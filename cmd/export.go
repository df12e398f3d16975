package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Export writes the full dashboard snapshot as pretty JSON to a file or
// stdout.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	data, err := r.engine.ExportToFile(ctx, nil, tr, path)
	if err != nil {
		return err
	}

	if path == "" {
		if err := r.writeBytes(data); err != nil {
			return err
		}
		return r.writePlain("\n")
	}
	return r.writePlain("✓ Export written to %s\n", path)
}
