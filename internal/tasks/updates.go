package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchTopArtists
	FetchTopTracks
	FetchRecent
	FetchFeatures
	DeriveStats
	CreatePlaylist
	ExportDocument
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchRecent:
		return "fetch_recent"
	case FetchFeatures:
		return "fetch_features"
	case DeriveStats:
		return "derive_stats"
	case CreatePlaylist:
		return "create_playlist"
	case ExportDocument:
		return "export_document"
	default:
		return ""
	}
}

func fetchUpdate(phase Phase, step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", what),
	}
}

func deriveUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeriveStats,
		Step:    step,
		Total:   total,
		Message: "Computing listening statistics...",
	}
}

func createPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating playlist (%s)...", name),
	}
}

func playlistCreatedUpdate(step, total int, name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
	}
}

func exportUpdate(step, total int, path string) ProgressUpdate {
	if path == "" {
		return ProgressUpdate{
			Phase:   ExportDocument,
			Step:    step,
			Total:   total,
			Message: "Building export document...",
		}
	}
	return ProgressUpdate{
		Phase:   ExportDocument,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing export to %s...", path),
	}
}
