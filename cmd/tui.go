package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rlacey/statify/internal/session"
	"github.com/rlacey/statify/internal/shared"
	"github.com/rlacey/statify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	if r.session.State() != session.Authenticated {
		return fmt.Errorf("%w: run `statify auth login` first", shared.ErrNotAuthenticated)
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.engine, tr)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
