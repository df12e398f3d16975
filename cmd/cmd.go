// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func rangeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short_term, medium_term or long_term",
		Value:   "short_term",
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// serveCommand runs the token relay service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the OAuth token relay (holds the client secret)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to dotenv file with SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET",
				Value: ".env",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles configuration and token store initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"o"},
						Usage:   "Destination path",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the token store",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the OAuth session lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2 via the relay",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Discard stored credentials",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// statsCommand renders derived listening statistics.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Derived listening statistics",
		Commands: []*cli.Command{
			{
				Name:   "genres",
				Usage:  "Genre frequency ranking from your top artists",
				Flags:  append([]cli.Flag{rangeFlag()}, outputFlags()...),
				Action: r.StatsGenres,
			},
			{
				Name:   "listening",
				Usage:  "Listening summary for the recently-played window",
				Flags:  append([]cli.Flag{rangeFlag()}, outputFlags()...),
				Action: r.StatsListening,
			},
			{
				Name:   "features",
				Usage:  "Audio feature averages across your top tracks",
				Flags:  append([]cli.Flag{rangeFlag()}, outputFlags()...),
				Action: r.StatsFeatures,
			},
		},
	}
}

// topCommand renders top-artist and top-track rankings.
func topCommand(r *Runner) *cli.Command {
	limit := &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum entries to fetch",
		Value:   20,
	}

	return &cli.Command{
		Name:  "top",
		Usage: "Top artists and tracks",
		Commands: []*cli.Command{
			{
				Name:   "artists",
				Usage:  "Your top artists for a time range",
				Flags:  append([]cli.Flag{rangeFlag(), limit}, outputFlags()...),
				Action: r.TopArtists,
			},
			{
				Name:  "tracks",
				Usage: "Your top tracks for a time range",
				Flags: append([]cli.Flag{
					rangeFlag(),
					limit,
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV instead of text",
					},
				}, outputFlags()...),
				Action: r.TopTracks,
			},
		},
	}
}

// profileCommand renders the account card.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show the authenticated account and followed-artist count",
		Flags:  outputFlags(),
		Action: r.Profile,
	}
}

// recentCommand renders the play-history feed.
func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Recently played tracks",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum entries to fetch",
				Value:   50,
			},
		}, outputFlags()...),
		Action: r.Recent,
	}
}

// playlistCommand builds playlists from rankings.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist from your top tracks",
				Flags: []cli.Flag{
					rangeFlag(),
					&cli.StringFlag{
						Name:  "from",
						Usage: "Source ranking: tracks or artists (one top track per artist)",
						Value: "tracks",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name (default derived from the time range)",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistCreate,
			},
		},
	}
}

// exportCommand writes the full dashboard snapshot as JSON.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export everything the dashboard fetches as a JSON document",
		Flags: []cli.Flag{
			rangeFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (stdout when omitted)",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags:   []cli.Flag{rangeFlag()},
		Action:  r.TUI,
	}
}
