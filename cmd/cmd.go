// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles catalog authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage catalog authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with the catalog using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// statusCommand queries the player once and prints what is playing.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show what the player is currently playing",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "resolve",
				Usage: "Also resolve the track against the catalog",
			},
		},
		Action: r.Status,
	}
}

// watchCommand runs the reconciliation engine headless.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the player and log track transitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "serve",
				Usage: "Serve the now-playing state over HTTP at this address (e.g. 127.0.0.1:7865)",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record plays to the local database",
			},
		},
		Action: r.Watch,
	}
}

// favCommand handles favorite mutations
func favCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fav",
		Usage: "Favorite or unfavorite songs in the catalog",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Favorite the current song, or a song by catalog ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Catalog ID to favorite instead of the current song",
					},
				},
				Action: r.FavAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Unfavorite the current song, or a song by catalog ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Catalog ID to unfavorite instead of the current song",
					},
				},
				Action: r.FavRemove,
			},
		},
	}
}

// historyCommand handles play history operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect and export recorded plays",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent plays",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of plays to return",
						Value: 25,
					},
					&cli.BoolFlag{
						Name:  "favorited",
						Usage: "Only show favorited plays",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, json, csv, or markdown",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write output to a file instead of stdout",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "purge",
				Usage: "Delete plays older than a number of days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Usage:    "Delete plays older than this many days",
						Required: true,
					},
				},
				Action: r.HistoryPurge,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive use.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive now-playing TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.TUI,
	}
}
