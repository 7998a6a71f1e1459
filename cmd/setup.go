package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reveille/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig creates a starter config file from the embedded example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config created at %s\n\n", configPath)
	r.writePlain("Fill in [credentials.spotify], then run: reveille auth login\n")
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := r.loadConfig(configPath)
	if err != nil {
		return err
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrInvalidConfig)
	}

	r.logger.Infof("initializing database at %v", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return nil
}
