package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/rlacey/statify/internal/services"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = trackItem{}
	_ list.Item = recentItem{}
)

// artistItem wraps [services.SpotifyArtist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist services.SpotifyArtist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.artist.Name) }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genre data"
	}
	return strings.Join(i.artist.Genres, " • ")
}

// trackItem wraps [services.SpotifyTrack] to implement [list.Item].
type trackItem struct {
	rank  int
	track services.SpotifyTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.track.Name) }
func (i trackItem) Description() string {
	desc := joinArtists(i.track.Artists)
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return desc
}

// recentItem wraps [services.SpotifyPlayHistoryItem] to implement [list.Item].
type recentItem struct {
	item services.SpotifyPlayHistoryItem
}

func (i recentItem) FilterValue() string { return i.item.Track.Name }
func (i recentItem) Title() string       { return i.item.Track.Name }
func (i recentItem) Description() string {
	return fmt.Sprintf("%s • %s", joinArtists(i.item.Track.Artists), i.item.PlayedAt.Local().Format(time.Kitchen))
}

func joinArtists(artists []services.SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}
