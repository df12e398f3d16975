package models

import (
	"fmt"
	"time"
)

// TimeRange selects the aggregation window for top-artist and top-track queries.
//
// Exactly one value is active at a time; changing it invalidates every cached
// aggregate and triggers a reload.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // roughly the last 4 weeks
	MediumTerm TimeRange = "medium_term" // roughly the last 6 months
	LongTerm   TimeRange = "long_term"   // all time
)

// ParseTimeRange converts a string to a TimeRange, defaulting to ShortTerm
// for the empty string.
func ParseTimeRange(s string) (TimeRange, error) {
	switch s {
	case "":
		return ShortTerm, nil
	case string(ShortTerm), string(MediumTerm), string(LongTerm):
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("invalid time range %q (want short_term, medium_term or long_term)", s)
	}
}

func (t TimeRange) String() string { return string(t) }

// Window returns the start of the aggregation window relative to now.
//
// The short-term cutoff is exactly 4 weeks and the medium-term cutoff 6
// months (182 days). LongTerm returns the zero time, meaning unbounded.
func (t TimeRange) Window(now time.Time) time.Time {
	switch t {
	case ShortTerm:
		return now.Add(-4 * 7 * 24 * time.Hour)
	case MediumTerm:
		return now.Add(-182 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Label returns a human-readable description of the window.
func (t TimeRange) Label() string {
	switch t {
	case ShortTerm:
		return "last 4 weeks"
	case MediumTerm:
		return "last 6 months"
	default:
		return "all time"
	}
}

// GenreCount is one entry of a genre-frequency ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// ListeningSummary aggregates a time-filtered set of play-history entries.
type ListeningSummary struct {
	Range           TimeRange     `json:"time_range"`
	TrackPlays      int           `json:"track_plays"`
	TotalDuration   time.Duration `json:"total_duration_ns"`
	UniqueArtists   int           `json:"unique_artists"`
	UniqueTracks    int           `json:"unique_tracks"`
	AverageDuration time.Duration `json:"average_duration_ns"`
}

// FeatureAverages holds the arithmetic mean of provider audio features
// across a set of tracks. Count is the number of non-null feature vectors
// that contributed; all means are zero when Count is zero.
type FeatureAverages struct {
	Count            int     `json:"count"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
}

// PlaylistPlan is the transient command object for a create-playlist
// operation: it exists only for the duration of the call.
type PlaylistPlan struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Public      bool     `json:"public"`
	TrackURIs   []string `json:"track_uris"`
}

// CreatedPlaylist describes the outcome of a playlist-creation operation.
type CreatedPlaylist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	TrackCount int    `json:"track_count"`
}

// ExportDocument is the downloadable union of everything the dashboard
// fetched, tagged with an export timestamp and the active TimeRange.
type ExportDocument struct {
	ID         string    `json:"id"`
	ExportedAt time.Time `json:"exported_at"`
	Range      TimeRange `json:"time_range"`
	Profile    any       `json:"profile"`
	TopArtists any       `json:"top_artists"`
	TopTracks  any       `json:"top_tracks"`
	Recent     any       `json:"recently_played"`
	Features   any       `json:"audio_features"`
}
