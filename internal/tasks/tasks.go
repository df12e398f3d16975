// package tasks orchestrates dashboard loads, playlist creation and exports.
//
// The core abstraction is DashboardEngine, which fans out the provider fetches
// a dashboard needs, derives statistics from the results, and emits progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/shared"
	"github.com/rlacey/statify/internal/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// fetchLimit is the page size used for every dashboard collection.
const fetchLimit = 50

// Provider is the aggregator surface the engine consumes.
// *services.SpotifyService is the only implementation outside of tests.
type Provider interface {
	Profile(ctx context.Context) (*services.SpotifyUser, error)
	TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]services.SpotifyArtist, error)
	TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]services.SpotifyTrack, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]services.SpotifyPlayHistoryItem, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]*services.SpotifyAudioFeatures, error)
	FollowedArtistCount(ctx context.Context) (int, error)
	CreatePlaylist(ctx context.Context, userID string, plan models.PlaylistPlan) (*services.SpotifyPlaylist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

var _ Provider = (*services.SpotifyService)(nil)

// DerivedStats holds everything the statistics pipeline computes from one
// load.
type DerivedStats struct {
	Genres    []models.GenreCount     `json:"top_genres"`
	Listening models.ListeningSummary `json:"listening"`
	Features  models.FeatureAverages  `json:"feature_averages"`
}

// Dashboard is an immutable snapshot of one complete load. A failed load
// never produces a partial snapshot; callers keep their previous one.
type Dashboard struct {
	Range           models.TimeRange
	Profile         *services.SpotifyUser
	TopArtists      []services.SpotifyArtist
	TopTracks       []services.SpotifyTrack
	Recent          []services.SpotifyPlayHistoryItem
	Features        []*services.SpotifyAudioFeatures
	FollowedArtists int
	Derived         DerivedStats
	LoadedAt        time.Time
}

// EngineOpts contains configuration for creating a DashboardEngine.
type EngineOpts struct {
	Provider  Provider
	RateLimit float64 // outbound requests per second (default: 5)
	Logger    *log.Logger
}

// DashboardEngine loads dashboard snapshots from the provider, pacing
// outbound calls with a shared rate limiter.
type DashboardEngine struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewDashboardEngine creates an engine for the given provider.
func NewDashboardEngine(opts EngineOpts) (*DashboardEngine, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: provider is required", shared.ErrInvalidArgument)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &DashboardEngine{
		provider: opts.Provider,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:   opts.Logger,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DashboardEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// wait paces one outbound call against the shared limiter.
func (e *DashboardEngine) wait(ctx context.Context) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	return nil
}

// Load fetches every collection the dashboard shows for the given TimeRange
// and derives its statistics.
//
// The profile, top artists, top tracks, recently played and followed-artist
// fetches run concurrently; audio features follow once the top-track IDs are
// known. Any failure aborts the load and returns no snapshot.
func (e *DashboardEngine) Load(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange) (*Dashboard, error) {
	dashboard := &Dashboard{Range: tr}

	g, gctx := errgroup.WithContext(ctx)

	e.sendProgress(progress, fetchUpdate(FetchProfile, 1, 6, "profile"))
	g.Go(func() error {
		if err := e.wait(gctx); err != nil {
			return err
		}
		profile, err := e.provider.Profile(gctx)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		dashboard.Profile = profile
		return nil
	})

	e.sendProgress(progress, fetchUpdate(FetchTopArtists, 2, 6, "top artists"))
	g.Go(func() error {
		if err := e.wait(gctx); err != nil {
			return err
		}
		artists, err := e.provider.TopArtists(gctx, tr, fetchLimit)
		if err != nil {
			return fmt.Errorf("top artists: %w", err)
		}
		dashboard.TopArtists = artists
		return nil
	})

	e.sendProgress(progress, fetchUpdate(FetchTopTracks, 3, 6, "top tracks"))
	g.Go(func() error {
		if err := e.wait(gctx); err != nil {
			return err
		}
		tracks, err := e.provider.TopTracks(gctx, tr, fetchLimit)
		if err != nil {
			return fmt.Errorf("top tracks: %w", err)
		}
		dashboard.TopTracks = tracks
		return nil
	})

	e.sendProgress(progress, fetchUpdate(FetchRecent, 4, 6, "recently played"))
	g.Go(func() error {
		if err := e.wait(gctx); err != nil {
			return err
		}
		recent, err := e.provider.RecentlyPlayed(gctx, fetchLimit)
		if err != nil {
			return fmt.Errorf("recently played: %w", err)
		}
		dashboard.Recent = recent
		return nil
	})

	g.Go(func() error {
		if err := e.wait(gctx); err != nil {
			return err
		}
		count, err := e.provider.FollowedArtistCount(gctx)
		if err != nil {
			return fmt.Errorf("followed artists: %w", err)
		}
		dashboard.FollowedArtists = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchUpdate(FetchFeatures, 5, 6, "audio features"))
	if len(dashboard.TopTracks) > 0 {
		if err := e.wait(ctx); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(dashboard.TopTracks))
		for _, track := range dashboard.TopTracks {
			ids = append(ids, track.ID)
		}
		features, err := e.provider.AudioFeatures(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("audio features: %w", err)
		}
		dashboard.Features = features
	}

	e.sendProgress(progress, deriveUpdate(6, 6))
	now := time.Now()
	dashboard.Derived = DerivedStats{
		Genres:    stats.TopGenres(dashboard.TopArtists, stats.TopGenresLimit),
		Listening: stats.SummarizeListening(dashboard.Recent, tr, now),
		Features:  stats.AverageFeatures(dashboard.Features),
	}
	dashboard.LoadedAt = now

	e.logger.Debug("dashboard loaded",
		"range", tr,
		"artists", len(dashboard.TopArtists),
		"tracks", len(dashboard.TopTracks),
		"recent", len(dashboard.Recent))

	return dashboard, nil
}
