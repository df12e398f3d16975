package main

import (
	"context"
	"fmt"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/shared"
	"github.com/rlacey/statify/internal/stats"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate builds a playlist plan from the chosen ranking and creates it.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	var plan models.PlaylistPlan
	switch from := cmd.String("from"); from {
	case "tracks":
		tracks, err := r.spotify.TopTracks(ctx, tr, 50)
		if err != nil {
			return err
		}
		plan, err = stats.PlanFromTopTracks(tracks, tr)
		if err != nil {
			return err
		}
	case "artists":
		tracks, err := r.spotify.TopTracks(ctx, tr, 50)
		if err != nil {
			return err
		}
		artists, err := r.spotify.TopArtists(ctx, tr, 50)
		if err != nil {
			return err
		}
		plan, err = stats.PlanFromTopArtists(artists, tracks, tr)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: --from must be tracks or artists, got %q", shared.ErrInvalidFlag, from)
	}

	if name := cmd.String("name"); name != "" {
		plan.Name = name
	}
	plan.Public = cmd.Bool("public")

	created, err := r.engine.BuildPlaylist(ctx, nil, plan)
	if err != nil {
		return err
	}

	r.writePlain("✓ Created %s with %d tracks\n", created.Name, created.TrackCount)
	if created.URL != "" {
		r.writePlain("%s\n", created.URL)
	}
	return nil
}
