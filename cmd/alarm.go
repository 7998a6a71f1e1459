package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/reveille/internal/alarm"
	"github.com/desertthunder/reveille/internal/history"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
	"github.com/urfave/cli/v3"
)

// AlarmRun executes the alarm run loop: load config, resolve a token,
// wait for the target time, select a device, resume playback.
//
// An interrupt signal exits cleanly at any point, including mid-wait.
func (r *Runner) AlarmRun(ctx context.Context, cmd *cli.Command) error {
	if r.player == nil || r.tokens == nil {
		return fmt.Errorf("%w: Spotify credentials not configured, run 'reveille setup config' and fill in config.toml", shared.ErrMissingCredentials)
	}

	configPath := cmd.String("config")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	record, closeDB, err := r.historyRecorder(r.historyConfig(configPath))
	if err != nil {
		// Recording is optional; a broken database never blocks the alarm.
		r.logger.Warn("alarm history disabled", "error", err)
	}
	if closeDB != nil {
		defer closeDB()
	}

	var repeat *bool
	if cmd.IsSet("repeat") {
		v := cmd.Bool("repeat")
		repeat = &v
	}

	loop := &alarm.Loop{
		Reload: func() (*shared.Config, error) {
			return shared.LoadConfig(configPath)
		},
		Tokens:     r.tokens,
		Player:     r.player,
		Record:     record,
		In:         r.input,
		Out:        r.output,
		Logger:     r.logger,
		Time:       cmd.String("time"),
		DeviceID:   cmd.String("device-id"),
		DeviceName: cmd.String("device-name"),
		Repeat:     repeat,
	}

	if cmd.Bool("tui") {
		loop.Picker = r.pickDeviceTUI
	}

	return loop.Run(ctx)
}

// historyConfig returns the [database] settings for the run, taken
// from the config file the loop will reload rather than the startup
// config: a --config override carries its own database path.
func (r *Runner) historyConfig(path string) shared.DatabaseConfig {
	if cfg, err := shared.LoadConfig(path); err == nil {
		return cfg.Database
	}
	return r.config.Database
}

// historyRecorder opens the history database and returns a record
// function plus a close func. An empty path disables recording.
func (r *Runner) historyRecorder(cfg shared.DatabaseConfig) (alarm.RecordFunc, func(), error) {
	if cfg.Path == "" {
		return nil, nil, nil
	}

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	store := history.NewStore(db)

	record := func(ctx context.Context, rec alarm.CycleRecord) error {
		return store.Record(ctx, history.Entry{
			FiredAt:    rec.FiredAt,
			Target:     rec.Target,
			DeviceID:   rec.DeviceID,
			DeviceName: rec.DeviceName,
			Attempts:   rec.Attempts,
			Outcome:    rec.Outcome,
			Error:      rec.Error,
		})
	}

	return record, func() { db.Close() }, nil
}

// pickDeviceTUI resolves an ambiguous device list with the bubbletea picker.
func (r *Runner) pickDeviceTUI(devices []services.Device) (services.Device, error) {
	return runDevicePicker(r, devices)
}
