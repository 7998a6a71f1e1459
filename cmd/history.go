package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/reveille/internal/history"
	"github.com/desertthunder/reveille/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent alarm firings from the history database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	path := r.config.Database.Path
	if path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	entries, err := history.NewStore(db).Recent(ctx, limit)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("No alarm history yet.\n")
		return nil
	}

	r.writePlain("Recent alarm cycles:\n\n")
	for _, e := range entries {
		marker := "✓"
		if e.Outcome != "ok" {
			marker = "✗"
		}
		r.writePlain("%s %s  target %s  %s (%s)  attempts: %d\n",
			marker, e.FiredAt.Local().Format(time.RFC1123), e.Target, e.DeviceName, e.DeviceID, e.Attempts)
		if e.Error != "" {
			r.writePlain("  error: %s\n", e.Error)
		}
	}

	return nil
}
