package tasks

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/shared"
	tu "github.com/rlacey/statify/internal/testing"
)

// fakeProvider is a scriptable Provider with per-call error injection.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int

	profile      *services.SpotifyUser
	artists      []services.SpotifyArtist
	tracks       []services.SpotifyTrack
	recent       []services.SpotifyPlayHistoryItem
	features     []*services.SpotifyAudioFeatures
	followed     int
	playlist     *services.SpotifyPlaylist
	profileErr   error
	artistsErr   error
	tracksErr    error
	featuresErr  error
	createErr    error
	addTracksErr error
}

func (p *fakeProvider) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[name]++
}

func (p *fakeProvider) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *fakeProvider) Profile(ctx context.Context) (*services.SpotifyUser, error) {
	p.record("profile")
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	if p.profile == nil {
		return &services.SpotifyUser{ID: "user1", DisplayName: "Test User"}, nil
	}
	return p.profile, nil
}

func (p *fakeProvider) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]services.SpotifyArtist, error) {
	p.record("artists")
	return p.artists, p.artistsErr
}

func (p *fakeProvider) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]services.SpotifyTrack, error) {
	p.record("tracks")
	return p.tracks, p.tracksErr
}

func (p *fakeProvider) RecentlyPlayed(ctx context.Context, limit int) ([]services.SpotifyPlayHistoryItem, error) {
	p.record("recent")
	return p.recent, nil
}

func (p *fakeProvider) AudioFeatures(ctx context.Context, trackIDs []string) ([]*services.SpotifyAudioFeatures, error) {
	p.record("features")
	return p.features, p.featuresErr
}

func (p *fakeProvider) FollowedArtistCount(ctx context.Context) (int, error) {
	p.record("followed")
	return p.followed, nil
}

func (p *fakeProvider) CreatePlaylist(ctx context.Context, userID string, plan models.PlaylistPlan) (*services.SpotifyPlaylist, error) {
	p.record("create")
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.playlist == nil {
		return &services.SpotifyPlaylist{ID: "pl1", Name: plan.Name}, nil
	}
	return p.playlist, nil
}

func (p *fakeProvider) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	p.record("add")
	return p.addTracksErr
}

func newTestEngine(t *testing.T, provider *fakeProvider) *DashboardEngine {
	t.Helper()
	engine, err := NewDashboardEngine(EngineOpts{
		Provider:  provider,
		RateLimit: 1000, // keep tests fast
		Logger:    shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func TestDashboardEngineLoad(t *testing.T) {
	t.Run("Full load derives stats", func(t *testing.T) {
		provider := &fakeProvider{
			artists: []services.SpotifyArtist{
				{ID: "a1", Name: "A1", Genres: []string{"jazz", "soul"}},
				{ID: "a2", Name: "A2", Genres: []string{"jazz"}},
			},
			tracks: []services.SpotifyTrack{
				{ID: "t1", Name: "T1", URI: "spotify:track:t1"},
			},
			recent: []services.SpotifyPlayHistoryItem{
				{
					Track:    services.SpotifyTrack{Name: "T1", DurationMS: 180000, Artists: []services.SpotifyArtist{{Name: "A1"}}},
					PlayedAt: time.Now().Add(-time.Hour),
				},
			},
			features: []*services.SpotifyAudioFeatures{{ID: "t1", Energy: 0.9}},
			followed: 12,
		}
		engine := newTestEngine(t, provider)

		progress := make(chan ProgressUpdate, 32)
		dashboard, err := engine.Load(context.Background(), progress, models.ShortTerm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if dashboard.Profile == nil || dashboard.Profile.ID != "user1" {
			t.Errorf("unexpected profile: %+v", dashboard.Profile)
		}
		if dashboard.FollowedArtists != 12 {
			t.Errorf("expected 12 followed artists, got %d", dashboard.FollowedArtists)
		}
		if len(dashboard.Derived.Genres) == 0 || dashboard.Derived.Genres[0].Genre != "jazz" {
			t.Errorf("unexpected genre ranking: %+v", dashboard.Derived.Genres)
		}
		if dashboard.Derived.Listening.TrackPlays != 1 {
			t.Errorf("unexpected listening summary: %+v", dashboard.Derived.Listening)
		}
		if dashboard.Derived.Features.Count != 1 || dashboard.Derived.Features.Energy != 0.9 {
			t.Errorf("unexpected feature averages: %+v", dashboard.Derived.Features)
		}
		if dashboard.LoadedAt.IsZero() {
			t.Error("expected a load timestamp")
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("Fetch failure yields no snapshot", func(t *testing.T) {
		provider := &fakeProvider{artistsErr: errors.New("boom")}
		engine := newTestEngine(t, provider)

		dashboard, err := engine.Load(context.Background(), nil, models.ShortTerm)
		if err == nil {
			t.Fatal("expected error")
		}
		if dashboard != nil {
			t.Errorf("expected nil dashboard, got %+v", dashboard)
		}
	})

	t.Run("No top tracks skips the features fetch", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := newTestEngine(t, provider)

		dashboard, err := engine.Load(context.Background(), nil, models.LongTerm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if provider.count("features") != 0 {
			t.Errorf("expected no features fetch, got %d", provider.count("features"))
		}
		if dashboard.Derived.Features.Count != 0 {
			t.Errorf("expected zero feature averages, got %+v", dashboard.Derived.Features)
		}
	})

	t.Run("Nil progress channel is fine", func(t *testing.T) {
		engine := newTestEngine(t, &fakeProvider{})
		if _, err := engine.Load(context.Background(), nil, models.MediumTerm); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestBuildPlaylist(t *testing.T) {
	plan := models.PlaylistPlan{
		Name:      "Mix",
		TrackURIs: []string{"spotify:track:t1", "spotify:track:t2"},
	}

	t.Run("Creates then appends", func(t *testing.T) {
		provider := &fakeProvider{
			playlist: &services.SpotifyPlaylist{ID: "pl9", Name: "Mix"},
		}
		engine := newTestEngine(t, provider)

		created, err := engine.BuildPlaylist(context.Background(), nil, plan)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID != "pl9" || created.TrackCount != 2 {
			t.Errorf("unexpected result: %+v", created)
		}
		if provider.count("create") != 1 || provider.count("add") != 1 {
			t.Errorf("unexpected call counts: %v", provider.calls)
		}
	})

	t.Run("Append failure reports the orphaned playlist", func(t *testing.T) {
		provider := &fakeProvider{
			playlist:     &services.SpotifyPlaylist{ID: "pl9", Name: "Mix"},
			addTracksErr: errors.New("batch rejected"),
		}
		engine := newTestEngine(t, provider)

		_, err := engine.BuildPlaylist(context.Background(), nil, plan)
		if !errors.Is(err, shared.ErrPartialFailure) {
			t.Fatalf("expected ErrPartialFailure, got %v", err)
		}
		if !strings.Contains(err.Error(), "pl9") {
			t.Errorf("expected orphaned playlist ID in error, got %v", err)
		}
	})

	t.Run("Create failure is plain", func(t *testing.T) {
		provider := &fakeProvider{createErr: errors.New("forbidden")}
		engine := newTestEngine(t, provider)

		_, err := engine.BuildPlaylist(context.Background(), nil, plan)
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, shared.ErrPartialFailure) {
			t.Error("create failure should not be a partial failure")
		}
		if provider.count("add") != 0 {
			t.Errorf("expected no append, got %d", provider.count("add"))
		}
	})
}

func TestExport(t *testing.T) {
	provider := &fakeProvider{
		tracks:   []services.SpotifyTrack{{ID: "t1", Name: "T1"}},
		features: []*services.SpotifyAudioFeatures{{ID: "t1"}},
	}

	t.Run("Builds a tagged document", func(t *testing.T) {
		engine := newTestEngine(t, provider)

		doc, err := engine.Export(context.Background(), nil, models.MediumTerm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.ID == "" {
			t.Error("expected a document ID")
		}
		if doc.Range != models.MediumTerm {
			t.Errorf("expected medium_term, got %s", doc.Range)
		}
		if doc.ExportedAt.IsZero() {
			t.Error("expected an export timestamp")
		}
	})

	t.Run("Writes pretty JSON to disk", func(t *testing.T) {
		engine := newTestEngine(t, provider)
		path := filepath.Join(t.TempDir(), "export.json")

		data, err := engine.ExportToFile(context.Background(), nil, models.ShortTerm, path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := shared.ValidateJSON(data); err != nil {
			t.Errorf("expected valid JSON: %v", err)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Error("expected indented output")
		}

		tu.AssertFileExists(t, path)
		if tu.MustReadFile(t, path) != string(data) {
			t.Error("file contents should match returned bytes")
		}
	})

	t.Run("Empty path skips the write", func(t *testing.T) {
		engine := newTestEngine(t, provider)
		data, err := engine.ExportToFile(context.Background(), nil, models.ShortTerm, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(data) == 0 {
			t.Error("expected document bytes")
		}
	})
}
