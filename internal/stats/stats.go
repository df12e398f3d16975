// Package stats implements the statistics pipeline: pure functions that
// derive rankings, summaries and feature averages from fetched collections.
// Nothing here performs I/O.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/shared"
)

// TopGenresLimit is the number of entries the dashboard ranking shows.
const TopGenresLimit = 10

// MaxPlaylistTracks caps every generated playlist.
const MaxPlaylistTracks = 20

// TopGenres flattens the artists' genre lists into a frequency ranking.
//
// Ties are broken by first-encountered order, so equal genre multisets
// produce the same ranking regardless of how later artists are ordered.
// At most n entries are returned; n <= 0 means no limit.
func TopGenres(artists []services.SpotifyArtist, n int) []models.GenreCount {
	counts := make(map[string]int)
	var order []string

	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if genre == "" {
				continue
			}
			if _, seen := counts[genre]; !seen {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	ranking := make([]models.GenreCount, 0, len(order))
	for _, genre := range order {
		ranking = append(ranking, models.GenreCount{Genre: genre, Count: counts[genre]})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if n > 0 && len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// SummarizeListening aggregates play-history entries inside the window the
// TimeRange implies, relative to now. Items outside the window are ignored.
// An empty window yields the zero-valued summary, never NaN averages.
func SummarizeListening(items []services.SpotifyPlayHistoryItem, tr models.TimeRange, now time.Time) models.ListeningSummary {
	cutoff := tr.Window(now)

	summary := models.ListeningSummary{Range: tr}
	artists := make(map[string]struct{})
	tracks := make(map[string]struct{})

	for _, item := range items {
		if !cutoff.IsZero() && item.PlayedAt.Before(cutoff) {
			continue
		}

		summary.TrackPlays++
		summary.TotalDuration += time.Duration(item.Track.DurationMS) * time.Millisecond
		tracks[item.Track.Name] = struct{}{}
		for _, artist := range item.Track.Artists {
			artists[artist.Name] = struct{}{}
		}
	}

	summary.UniqueArtists = len(artists)
	summary.UniqueTracks = len(tracks)
	if summary.TrackPlays > 0 {
		summary.AverageDuration = summary.TotalDuration / time.Duration(summary.TrackPlays)
	}
	return summary
}

// AverageFeatures computes the arithmetic mean of each audio feature across
// the non-nil vectors. The batch endpoint reports unknown IDs as nulls, so
// nil entries are discarded rather than counted as zeros. An empty input
// yields the zero value with Count 0.
func AverageFeatures(features []*services.SpotifyAudioFeatures) models.FeatureAverages {
	var avg models.FeatureAverages

	for _, f := range features {
		if f == nil {
			continue
		}
		avg.Count++
		avg.Danceability += f.Danceability
		avg.Energy += f.Energy
		avg.Valence += f.Valence
		avg.Acousticness += f.Acousticness
		avg.Instrumentalness += f.Instrumentalness
		avg.Tempo += f.Tempo
	}

	if avg.Count == 0 {
		return avg
	}

	n := float64(avg.Count)
	avg.Danceability /= n
	avg.Energy /= n
	avg.Valence /= n
	avg.Acousticness /= n
	avg.Instrumentalness /= n
	avg.Tempo /= n
	return avg
}

// BuildPlaylistPlan validates and normalizes a playlist request: duplicate
// URIs are dropped preserving first-encountered order and the result is
// capped at MaxPlaylistTracks. An empty URI set is rejected.
func BuildPlaylistPlan(name, description string, public bool, uris []string) (models.PlaylistPlan, error) {
	if name == "" {
		return models.PlaylistPlan{}, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidArgument)
	}

	seen := make(map[string]struct{}, len(uris))
	deduped := make([]string, 0, len(uris))
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}
		deduped = append(deduped, uri)
	}

	if len(deduped) == 0 {
		return models.PlaylistPlan{}, shared.ErrEmptyPlaylist
	}
	if len(deduped) > MaxPlaylistTracks {
		deduped = deduped[:MaxPlaylistTracks]
	}

	return models.PlaylistPlan{
		Name:        name,
		Description: description,
		Public:      public,
		TrackURIs:   deduped,
	}, nil
}

// PlanFromTopTracks builds a private playlist plan from a top-tracks ranking.
func PlanFromTopTracks(tracks []services.SpotifyTrack, tr models.TimeRange) (models.PlaylistPlan, error) {
	uris := make([]string, 0, len(tracks))
	for _, track := range tracks {
		uris = append(uris, track.URI)
	}

	name := fmt.Sprintf("Top Tracks (%s)", tr.Label())
	description := fmt.Sprintf("Your most played tracks, %s.", tr.Label())
	return BuildPlaylistPlan(name, description, false, uris)
}

// PlanFromTopArtists builds a plan holding one top track per top artist,
// walking the top-tracks ranking in order.
func PlanFromTopArtists(artists []services.SpotifyArtist, tracks []services.SpotifyTrack, tr models.TimeRange) (models.PlaylistPlan, error) {
	wanted := make(map[string]bool, len(artists))
	for _, artist := range artists {
		wanted[artist.ID] = false
	}

	var uris []string
	for _, track := range tracks {
		for _, artist := range track.Artists {
			taken, ok := wanted[artist.ID]
			if !ok || taken {
				continue
			}
			wanted[artist.ID] = true
			uris = append(uris, track.URI)
			break
		}
	}

	name := fmt.Sprintf("Artist Sampler (%s)", tr.Label())
	description := fmt.Sprintf("One favorite track per top artist, %s.", tr.Label())
	return BuildPlaylistPlan(name, description, false, uris)
}

// NewExportDocument assembles the downloadable snapshot of everything the
// dashboard fetched, tagged with a fresh ID and the active TimeRange.
func NewExportDocument(profile, artists, tracks, recent, features any, tr models.TimeRange, now time.Time) models.ExportDocument {
	return models.ExportDocument{
		ID:         shared.GenerateID(),
		ExportedAt: now.UTC(),
		Range:      tr,
		Profile:    profile,
		TopArtists: artists,
		TopTracks:  tracks,
		Recent:     recent,
		Features:   features,
	}
}
