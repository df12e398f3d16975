// package formatter renders derived listening statistics to display formats
// (plain text, CSV, JSON) for the CLI layer
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/services"
)

// formatDuration renders a duration as m:ss, or h:mm:ss past the hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// artistNames joins track artists for display.
func artistNames(artists []services.SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// GenresToText renders a genre ranking as a numbered list.
func GenresToText(genres []models.GenreCount, tr models.TimeRange) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top genres (%s)\n\n", tr.Label()))
	if len(genres) == 0 {
		buf.WriteString("No genre data available.\n")
		return buf.Bytes()
	}

	for i, genre := range genres {
		buf.WriteString(fmt.Sprintf("%2d. %s (%d)\n", i+1, genre.Genre, genre.Count))
	}
	return buf.Bytes()
}

// ListeningToText renders a listening summary.
func ListeningToText(summary models.ListeningSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Listening summary (%s)\n\n", summary.Range.Label()))
	buf.WriteString(fmt.Sprintf("Track plays:    %d\n", summary.TrackPlays))
	buf.WriteString(fmt.Sprintf("Unique tracks:  %d\n", summary.UniqueTracks))
	buf.WriteString(fmt.Sprintf("Unique artists: %d\n", summary.UniqueArtists))
	buf.WriteString(fmt.Sprintf("Total time:     %s\n", formatDuration(summary.TotalDuration)))
	buf.WriteString(fmt.Sprintf("Average track:  %s\n", formatDuration(summary.AverageDuration)))
	return buf.Bytes()
}

// FeaturesToText renders audio feature averages.
func FeaturesToText(avg models.FeatureAverages) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Audio feature averages (%d tracks)\n\n", avg.Count))
	if avg.Count == 0 {
		buf.WriteString("No audio feature data available.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Danceability:     %.2f\n", avg.Danceability))
	buf.WriteString(fmt.Sprintf("Energy:           %.2f\n", avg.Energy))
	buf.WriteString(fmt.Sprintf("Valence:          %.2f\n", avg.Valence))
	buf.WriteString(fmt.Sprintf("Acousticness:     %.2f\n", avg.Acousticness))
	buf.WriteString(fmt.Sprintf("Instrumentalness: %.2f\n", avg.Instrumentalness))
	buf.WriteString(fmt.Sprintf("Tempo:            %.0f BPM\n", avg.Tempo))
	return buf.Bytes()
}

// ArtistsToText renders a top-artists ranking.
func ArtistsToText(artists []services.SpotifyArtist, tr models.TimeRange) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top artists (%s)\n\n", tr.Label()))
	for i, artist := range artists {
		genrePart := ""
		if len(artist.Genres) > 0 {
			genrePart = fmt.Sprintf(" [%s]", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString(fmt.Sprintf("%2d. %s%s\n", i+1, artist.Name, genrePart))
	}
	return buf.Bytes()
}

// TracksToText renders a top-tracks ranking.
func TracksToText(tracks []services.SpotifyTrack, tr models.TimeRange) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top tracks (%s)\n\n", tr.Label()))
	for i, track := range tracks {
		duration := formatDuration(time.Duration(track.DurationMS) * time.Millisecond)
		buf.WriteString(fmt.Sprintf("%2d. %s - %s (%s) [%s]\n",
			i+1, artistNames(track.Artists), track.Name, track.Album.Name, duration))
	}
	return buf.Bytes()
}

// RecentToText renders the recently-played feed, most recent first.
func RecentToText(items []services.SpotifyPlayHistoryItem) []byte {
	var buf bytes.Buffer

	buf.WriteString("Recently played\n\n")
	for _, item := range items {
		buf.WriteString(fmt.Sprintf("%s  %s - %s\n",
			item.PlayedAt.Local().Format("2006-01-02 15:04"),
			artistNames(item.Track.Artists),
			item.Track.Name))
	}
	return buf.Bytes()
}

// TracksToCSV converts tracks to CSV with columns: ID, Title, Artists, Album, Duration, Popularity
func TracksToCSV(tracks []services.SpotifyTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "Duration", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Name,
			artistNames(track.Artists),
			track.Album.Name,
			formatDuration(time.Duration(track.DurationMS) * time.Millisecond),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ProfileToText renders a user profile card.
func ProfileToText(user *services.SpotifyUser, followedArtists int) []byte {
	var buf bytes.Buffer

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	buf.WriteString(fmt.Sprintf("Profile: %s\n", name))
	if user.Email != "" {
		buf.WriteString(fmt.Sprintf("Email: %s\n", user.Email))
	}
	if user.Product != "" {
		buf.WriteString(fmt.Sprintf("Plan: %s\n", user.Product))
	}
	buf.WriteString(fmt.Sprintf("Followers: %d\n", user.Followers.Total))
	buf.WriteString(fmt.Sprintf("Following: %d artists\n", followedArtists))
	return buf.Bytes()
}
