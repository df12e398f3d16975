package main

import (
	"context"
	"time"

	"github.com/rlacey/statify/internal/formatter"
	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/stats"
	"github.com/urfave/cli/v3"
)

func parseRange(cmd *cli.Command) (models.TimeRange, error) {
	return models.ParseTimeRange(cmd.String("range"))
}

// StatsGenres fetches top artists and renders their genre frequency ranking.
func (r *Runner) StatsGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	artists, err := r.spotify.TopArtists(ctx, tr, 50)
	if err != nil {
		return err
	}
	genres := stats.TopGenres(artists, stats.TopGenresLimit)

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.GenresToText(genres, tr))
}

// StatsListening summarizes the recently-played feed inside the active window.
func (r *Runner) StatsListening(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	items, err := r.spotify.RecentlyPlayed(ctx, 50)
	if err != nil {
		return err
	}
	summary := stats.SummarizeListening(items, tr, time.Now())

	if cmd.Bool("json") {
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.ListeningToText(summary))
}

// StatsFeatures averages audio features across the top tracks.
func (r *Runner) StatsFeatures(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	tracks, err := r.spotify.TopTracks(ctx, tr, 50)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}

	var avg models.FeatureAverages
	if len(ids) > 0 {
		features, err := r.spotify.AudioFeatures(ctx, ids)
		if err != nil {
			return err
		}
		avg = stats.AverageFeatures(features)
	}

	if cmd.Bool("json") {
		return r.writeJSON(avg, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FeaturesToText(avg))
}

// TopArtists renders the top-artists ranking.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	artists, err := r.spotify.TopArtists(ctx, tr, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.ArtistsToText(artists, tr))
}

// TopTracks renders the top-tracks ranking, optionally as CSV.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}
	tr, err := parseRange(cmd)
	if err != nil {
		return err
	}

	tracks, err := r.spotify.TopTracks(ctx, tr, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("csv"):
		data, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case cmd.Bool("json"):
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	default:
		return r.writeBytes(formatter.TracksToText(tracks, tr))
	}
}

// Profile renders the account card shown in the dashboard header.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}

	user, err := r.spotify.Profile(ctx)
	if err != nil {
		return err
	}
	followed, err := r.spotify.FollowedArtistCount(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"profile":          user,
			"followed_artists": followed,
		}, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.ProfileToText(user, followed))
}

// Recent renders the play-history feed.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(); err != nil {
		return err
	}

	items, err := r.spotify.RecentlyPlayed(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.RecentToText(items))
}
