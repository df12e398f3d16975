package tasks

import (
	"context"
	"fmt"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/shared"
)

// newPartialFailure tags an append failure with the playlist it orphaned.
func newPartialFailure(playlistID string, err error) error {
	return fmt.Errorf("%w: playlist %s created but tracks were not added: %v", shared.ErrPartialFailure, playlistID, err)
}

// BuildPlaylist creates the planned playlist for the current user and appends
// the plan's tracks in one batch.
//
// Creation and append are two provider calls that cannot be made atomic: when
// the append fails after a successful create, the error wraps
// shared.ErrPartialFailure and names the orphaned playlist ID so the caller
// can surface or clean it up.
func (e *DashboardEngine) BuildPlaylist(ctx context.Context, progress chan<- ProgressUpdate, plan models.PlaylistPlan) (*models.CreatedPlaylist, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	profile, err := e.provider.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 2, plan.Name))
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	playlist, err := e.provider.CreatePlaylist(ctx, profile.ID, plan)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	if err := e.provider.AddTracks(ctx, playlist.ID, plan.TrackURIs); err != nil {
		return nil, newPartialFailure(playlist.ID, err)
	}

	e.sendProgress(progress, playlistCreatedUpdate(2, 2, playlist.Name, playlist.ID))
	e.logger.Info("playlist created", "id", playlist.ID, "tracks", len(plan.TrackURIs))

	return &models.CreatedPlaylist{
		ID:         playlist.ID,
		Name:       playlist.Name,
		URL:        playlist.ExternalURLs.Spotify,
		TrackCount: len(plan.TrackURIs),
	}, nil
}
