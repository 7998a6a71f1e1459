// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// alarmCommand schedules and fires the playback alarm
func alarmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "alarm",
		Usage: "Schedule playback at a wall-clock time",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Wait for the alarm time, then resume playback",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "time",
						Aliases: []string{"t"},
						Usage:   "Alarm time as HH:MM (24-hour), overrides config",
					},
					&cli.StringFlag{
						Name:  "device-id",
						Usage: "Target device ID, overrides config",
					},
					&cli.StringFlag{
						Name:  "device-name",
						Usage: "Target device display name, overrides config",
					},
					&cli.BoolFlag{
						Name:  "repeat",
						Usage: "Schedule the next cycle after a successful one",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Pick ambiguous devices with the interactive list UI",
					},
				},
				Action: r.AlarmRun,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check the cached token and the authorized account",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the cached token",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
		},
	}
}

// devicesCommand lists and picks playback devices
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "devices",
		Aliases: []string{"dev"},
		Usage:   "Playback device operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List currently available playback devices",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.DevicesList,
			},
			{
				Name:  "pick",
				Usage: "Pick a device interactively and save it to the config",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist the chosen device to the config file",
						Value: true,
					},
				},
				Action: r.DevicesPick,
			},
		},
	}
}

// historyCommand inspects recorded alarm cycles
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded alarm cycles",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent alarm firings",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a starter config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
