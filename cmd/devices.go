package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
	"github.com/desertthunder/reveille/internal/ui"
	"github.com/urfave/cli/v3"
)

// DevicesList lists currently available playback devices.
func (r *Runner) DevicesList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	devices, err := r.fetchDevices(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(devices, pretty)
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		r.writePlain("%d. %s\n", i+1, d.Name)
		r.writePlain("   ID: %s\n", d.ID)
		r.writePlain("   Type: %s\n", d.Type)
		if d.IsActive {
			r.writePlain("   Active: yes\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// DevicesPick selects a device with the interactive list UI and
// optionally persists the choice to the config file.
func (r *Runner) DevicesPick(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	save := cmd.Bool("save")

	devices, err := r.fetchDevices(ctx)
	if err != nil {
		return err
	}

	device, err := runDevicePicker(r, devices)
	if err != nil {
		return err
	}

	r.writePlain("✓ Selected: %s (ID: %s)\n", device.Name, device.ID)

	if !save {
		return nil
	}

	config, err := r.loadConfig(configPath)
	if err != nil {
		return err
	}

	config.Alarm.DeviceID = device.ID
	config.Alarm.DeviceName = device.Name
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlain("✓ Device saved to %s\n", configPath)
	return nil
}

// fetchDevices resolves a token and lists devices, failing with
// [shared.ErrNoDevices] on an empty list.
func (r *Runner) fetchDevices(ctx context.Context) ([]services.Device, error) {
	if r.player == nil || r.tokens == nil {
		return nil, fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingCredentials)
	}

	tok, err := r.tokens.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	r.player.SetToken(tok)

	devices, err := r.player.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, shared.ErrNoDevices
	}

	return devices, nil
}

// tuiLogPath returns where logs go while the TUI owns the terminal.
// The temp dir is always writable regardless of the working directory.
func tuiLogPath() string {
	return filepath.Join(os.TempDir(), "reveille-tui.log")
}

// runDevicePicker runs the bubbletea picker over the device list.
//
// Logs are redirected to a file while the TUI owns the terminal.
func runDevicePicker(r *Runner, devices []services.Device) (services.Device, error) {
	if fileLogger, err := shared.NewFileLogger(tuiLogPath()); err == nil {
		prev := r.logger
		r.SetLogger(fileLogger)
		defer r.SetLogger(prev)
	}

	model := ui.NewModel(devices)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return services.Device{}, fmt.Errorf("error running device picker: %w", err)
	}

	m, ok := final.(ui.Model)
	if !ok || m.Choice() == nil {
		return services.Device{}, fmt.Errorf("%w: no device selected", shared.ErrMissingArgument)
	}

	return *m.Choice(), nil
}
