package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/shared"
)

func artist(name string, genres ...string) services.SpotifyArtist {
	return services.SpotifyArtist{ID: name, Name: name, Genres: genres}
}

func TestTopGenres(t *testing.T) {
	t.Run("Counts across artists", func(t *testing.T) {
		artists := []services.SpotifyArtist{
			artist("a", "jazz", "soul"),
			artist("b", "jazz", "funk"),
			artist("c", "jazz"),
		}

		ranking := TopGenres(artists, 0)
		if len(ranking) != 3 {
			t.Fatalf("expected 3 genres, got %d", len(ranking))
		}
		if ranking[0].Genre != "jazz" || ranking[0].Count != 3 {
			t.Errorf("expected jazz x3 first, got %+v", ranking[0])
		}
	})

	t.Run("Ties break by first-encountered order", func(t *testing.T) {
		artists := []services.SpotifyArtist{
			artist("a", "soul"),
			artist("b", "funk"),
			artist("c", "soul"),
			artist("d", "funk"),
		}

		ranking := TopGenres(artists, 0)
		if ranking[0].Genre != "soul" || ranking[1].Genre != "funk" {
			t.Errorf("expected soul before funk, got %+v", ranking)
		}
	})

	t.Run("Limit truncates the ranking", func(t *testing.T) {
		artists := []services.SpotifyArtist{
			artist("a", "g1", "g2", "g3", "g4"),
		}
		ranking := TopGenres(artists, 2)
		if len(ranking) != 2 {
			t.Errorf("expected 2 entries, got %d", len(ranking))
		}
	})

	t.Run("Handles artists without genres", func(t *testing.T) {
		artists := []services.SpotifyArtist{artist("a"), artist("b", "")}
		if ranking := TopGenres(artists, TopGenresLimit); len(ranking) != 0 {
			t.Errorf("expected empty ranking, got %+v", ranking)
		}
	})
}

func TestSummarizeListening(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	play := func(name, artistName string, durationMS int, playedAt time.Time) services.SpotifyPlayHistoryItem {
		return services.SpotifyPlayHistoryItem{
			Track: services.SpotifyTrack{
				Name:       name,
				DurationMS: durationMS,
				Artists:    []services.SpotifyArtist{{Name: artistName}},
			},
			PlayedAt: playedAt,
		}
	}

	t.Run("Short term excludes plays older than 4 weeks", func(t *testing.T) {
		items := []services.SpotifyPlayHistoryItem{
			play("recent", "A", 180000, now.Add(-24*time.Hour)),
			play("stale", "B", 180000, now.Add(-5*7*24*time.Hour)),
		}

		summary := SummarizeListening(items, models.ShortTerm, now)
		if summary.TrackPlays != 1 {
			t.Errorf("expected 1 play, got %d", summary.TrackPlays)
		}
		if summary.UniqueArtists != 1 || summary.UniqueTracks != 1 {
			t.Errorf("unexpected uniques: %+v", summary)
		}
	})

	t.Run("Medium term includes the same play", func(t *testing.T) {
		items := []services.SpotifyPlayHistoryItem{
			play("stale", "B", 180000, now.Add(-5*7*24*time.Hour)),
		}
		summary := SummarizeListening(items, models.MediumTerm, now)
		if summary.TrackPlays != 1 {
			t.Errorf("expected 1 play, got %d", summary.TrackPlays)
		}
	})

	t.Run("Long term is unbounded", func(t *testing.T) {
		items := []services.SpotifyPlayHistoryItem{
			play("ancient", "C", 240000, now.Add(-10*365*24*time.Hour)),
		}
		summary := SummarizeListening(items, models.LongTerm, now)
		if summary.TrackPlays != 1 {
			t.Errorf("expected 1 play, got %d", summary.TrackPlays)
		}
	})

	t.Run("Durations and averages", func(t *testing.T) {
		items := []services.SpotifyPlayHistoryItem{
			play("one", "A", 120000, now),
			play("two", "A", 240000, now),
		}

		summary := SummarizeListening(items, models.ShortTerm, now)
		if summary.TotalDuration != 6*time.Minute {
			t.Errorf("expected 6m total, got %s", summary.TotalDuration)
		}
		if summary.AverageDuration != 3*time.Minute {
			t.Errorf("expected 3m average, got %s", summary.AverageDuration)
		}
		if summary.UniqueArtists != 1 || summary.UniqueTracks != 2 {
			t.Errorf("unexpected uniques: %+v", summary)
		}
	})

	t.Run("Empty window yields zero values", func(t *testing.T) {
		summary := SummarizeListening(nil, models.ShortTerm, now)
		if summary.TrackPlays != 0 || summary.AverageDuration != 0 {
			t.Errorf("expected zero summary, got %+v", summary)
		}
	})
}

func TestAverageFeatures(t *testing.T) {
	t.Run("Means across non-nil vectors", func(t *testing.T) {
		features := []*services.SpotifyAudioFeatures{
			{Danceability: 0.2, Energy: 0.4, Valence: 0.6, Tempo: 100},
			{Danceability: 0.4, Energy: 0.6, Valence: 0.8, Tempo: 140},
		}

		avg := AverageFeatures(features)
		if avg.Count != 2 {
			t.Fatalf("expected count 2, got %d", avg.Count)
		}
		if avg.Danceability != 0.3 {
			t.Errorf("expected danceability 0.3, got %v", avg.Danceability)
		}
		if avg.Tempo != 120 {
			t.Errorf("expected tempo 120, got %v", avg.Tempo)
		}
	})

	t.Run("Nil vectors are discarded not zeroed", func(t *testing.T) {
		features := []*services.SpotifyAudioFeatures{
			nil,
			{Energy: 0.8},
			nil,
		}

		avg := AverageFeatures(features)
		if avg.Count != 1 {
			t.Fatalf("expected count 1, got %d", avg.Count)
		}
		if avg.Energy != 0.8 {
			t.Errorf("expected energy 0.8, got %v", avg.Energy)
		}
	})

	t.Run("Empty set yields zero value", func(t *testing.T) {
		avg := AverageFeatures(nil)
		if avg.Count != 0 || avg.Energy != 0 {
			t.Errorf("expected zero averages, got %+v", avg)
		}
	})
}

func TestBuildPlaylistPlan(t *testing.T) {
	t.Run("Dedupes preserving order", func(t *testing.T) {
		uris := []string{"t1", "t2", "t1", "t3", "t2"}
		plan, err := BuildPlaylistPlan("Mix", "", false, uris)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"t1", "t2", "t3"}
		if len(plan.TrackURIs) != len(want) {
			t.Fatalf("expected %d URIs, got %d", len(want), len(plan.TrackURIs))
		}
		for i, uri := range want {
			if plan.TrackURIs[i] != uri {
				t.Errorf("position %d: expected %s, got %s", i, uri, plan.TrackURIs[i])
			}
		}
	})

	t.Run("Caps at MaxPlaylistTracks", func(t *testing.T) {
		uris := make([]string, 0, 50)
		for i := range 50 {
			uris = append(uris, string(rune('a'+i%26))+string(rune('0'+i/26)))
		}
		plan, err := BuildPlaylistPlan("Mix", "", false, uris)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(plan.TrackURIs) != MaxPlaylistTracks {
			t.Errorf("expected %d URIs, got %d", MaxPlaylistTracks, len(plan.TrackURIs))
		}
	})

	t.Run("Rejects empty URI set", func(t *testing.T) {
		_, err := BuildPlaylistPlan("Mix", "", false, []string{"", ""})
		if !errors.Is(err, shared.ErrEmptyPlaylist) {
			t.Errorf("expected ErrEmptyPlaylist, got %v", err)
		}
	})

	t.Run("Rejects missing name", func(t *testing.T) {
		_, err := BuildPlaylistPlan("", "", false, []string{"t1"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPlanFromTopArtists(t *testing.T) {
	track := func(uri string, artists ...services.SpotifyArtist) services.SpotifyTrack {
		return services.SpotifyTrack{URI: uri, Artists: artists}
	}

	artists := []services.SpotifyArtist{artist("a1"), artist("a2")}
	tracks := []services.SpotifyTrack{
		track("spotify:track:t1", artist("a1")),
		track("spotify:track:t2", artist("a1")), // a1 already represented
		track("spotify:track:t3", artist("a2")),
		track("spotify:track:t4", artist("a3")), // not a top artist
	}

	plan, err := PlanFromTopArtists(artists, tracks, models.ShortTerm)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"spotify:track:t1", "spotify:track:t3"}
	if len(plan.TrackURIs) != len(want) {
		t.Fatalf("expected %d URIs, got %v", len(want), plan.TrackURIs)
	}
	for i, uri := range want {
		if plan.TrackURIs[i] != uri {
			t.Errorf("position %d: expected %s, got %s", i, uri, plan.TrackURIs[i])
		}
	}
	if plan.Public {
		t.Error("expected a private playlist")
	}
}

func TestNewExportDocument(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	doc := NewExportDocument("profile", "artists", "tracks", "recent", "features", models.MediumTerm, now)

	if doc.ID == "" {
		t.Error("expected a document ID")
	}
	if !doc.ExportedAt.Equal(now) {
		t.Errorf("expected export time %s, got %s", now, doc.ExportedAt)
	}
	if doc.Range != models.MediumTerm {
		t.Errorf("expected medium_term, got %s", doc.Range)
	}
	if doc.Profile != "profile" || doc.Features != "features" {
		t.Errorf("unexpected payloads: %+v", doc)
	}
}
