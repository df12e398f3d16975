package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
)

func TestGenresToText(t *testing.T) {
	t.Run("Numbered ranking", func(t *testing.T) {
		genres := []models.GenreCount{
			{Genre: "jazz", Count: 12},
			{Genre: "soul", Count: 7},
		}

		out := string(GenresToText(genres, models.ShortTerm))
		if !strings.Contains(out, "last 4 weeks") {
			t.Error("expected range label")
		}
		if !strings.Contains(out, "1. jazz (12)") {
			t.Errorf("expected first entry, got:\n%s", out)
		}
		if !strings.Contains(out, "2. soul (7)") {
			t.Errorf("expected second entry, got:\n%s", out)
		}
	})

	t.Run("Empty ranking", func(t *testing.T) {
		out := string(GenresToText(nil, models.LongTerm))
		if !strings.Contains(out, "No genre data") {
			t.Errorf("expected placeholder, got:\n%s", out)
		}
	})
}

func TestListeningToText(t *testing.T) {
	summary := models.ListeningSummary{
		Range:           models.MediumTerm,
		TrackPlays:      40,
		UniqueTracks:    25,
		UniqueArtists:   18,
		TotalDuration:   2 * time.Hour,
		AverageDuration: 3 * time.Minute,
	}

	out := string(ListeningToText(summary))
	for _, want := range []string{"last 6 months", "40", "25", "18", "2:00:00", "3:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFeaturesToText(t *testing.T) {
	t.Run("Formatted means", func(t *testing.T) {
		avg := models.FeatureAverages{Count: 50, Danceability: 0.61, Energy: 0.72, Tempo: 121.4}
		out := string(FeaturesToText(avg))
		if !strings.Contains(out, "50 tracks") {
			t.Error("expected track count")
		}
		if !strings.Contains(out, "0.61") || !strings.Contains(out, "121 BPM") {
			t.Errorf("expected formatted values, got:\n%s", out)
		}
	})

	t.Run("Empty set", func(t *testing.T) {
		out := string(FeaturesToText(models.FeatureAverages{}))
		if !strings.Contains(out, "No audio feature data") {
			t.Errorf("expected placeholder, got:\n%s", out)
		}
	})
}

func TestTracksToText(t *testing.T) {
	tracks := []services.SpotifyTrack{
		{
			Name:       "So What",
			DurationMS: 9 * 60 * 1000,
			Artists:    []services.SpotifyArtist{{Name: "Miles Davis"}},
			Album:      services.SpotifyAlbum{Name: "Kind of Blue"},
		},
	}

	out := string(TracksToText(tracks, models.LongTerm))
	if !strings.Contains(out, "Miles Davis - So What (Kind of Blue) [9:00]") {
		t.Errorf("unexpected rendering:\n%s", out)
	}
}

func TestRecentToText(t *testing.T) {
	items := []services.SpotifyPlayHistoryItem{
		{
			Track: services.SpotifyTrack{
				Name:    "Luv(sic)",
				Artists: []services.SpotifyArtist{{Name: "Nujabes"}, {Name: "Shing02"}},
			},
			PlayedAt: time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	out := string(RecentToText(items))
	if !strings.Contains(out, "Nujabes, Shing02 - Luv(sic)") {
		t.Errorf("unexpected rendering:\n%s", out)
	}
}

func TestTracksToCSV(t *testing.T) {
	tracks := []services.SpotifyTrack{
		{
			ID:         "t1",
			Name:       "Track, with comma",
			DurationMS: 200000,
			Popularity: 80,
			Artists:    []services.SpotifyArtist{{Name: "A"}},
			Album:      services.SpotifyAlbum{Name: "Album"},
		},
	}

	data, err := TracksToCSV(tracks)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
	if lines[0] != "ID,Title,Artists,Album,Duration,Popularity" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"Track, with comma"`) {
		t.Errorf("expected quoted field, got: %s", lines[1])
	}
	if !strings.Contains(lines[1], "3:20") {
		t.Errorf("expected formatted duration, got: %s", lines[1])
	}
}

func TestProfileToText(t *testing.T) {
	user := &services.SpotifyUser{
		ID:          "user1",
		DisplayName: "Test User",
		Email:       "user@example.com",
		Product:     "premium",
	}
	user.Followers.Total = 4

	out := string(ProfileToText(user, 31))
	for _, want := range []string{"Test User", "user@example.com", "premium", "Followers: 4", "31 artists"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                             "0:00",
		45 * time.Second:              "0:45",
		3*time.Minute + 5*time.Second: "3:05",
		61 * time.Minute:              "1:01:00",
	}
	for d, want := range cases {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%s) = %q, want %q", d, got, want)
		}
	}
}
