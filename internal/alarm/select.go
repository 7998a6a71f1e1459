package alarm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
)

// Selector resolves which playback device a cycle should target.
//
// Resolution order: a singleton device wins outright, then an exact
// match on the configured ID, then an exact match on the configured
// display name, then an interactive numbered prompt.
type Selector struct {
	DeviceID   string
	DeviceName string

	// FallbackFirst preserves the historical behavior of silently
	// using the first device when the configured ID or name matches
	// nothing. Off by default; the modern behavior is a
	// [shared.ErrDeviceNotFound] failure.
	FallbackFirst bool

	In     io.Reader
	Out    io.Writer
	Logger *log.Logger

	// Pick replaces the numbered prompt when set (the --tui picker).
	Pick func(devices []services.Device) (services.Device, error)
}

// Select picks a device from the fetched list.
//
// An empty list fails with [shared.ErrNoDevices].
func (s *Selector) Select(devices []services.Device) (services.Device, error) {
	if len(devices) == 0 {
		return services.Device{}, shared.ErrNoDevices
	}

	if len(devices) == 1 {
		return devices[0], nil
	}

	if s.DeviceID != "" {
		for _, d := range devices {
			if d.ID == s.DeviceID {
				return d, nil
			}
		}
	}

	if s.DeviceName != "" {
		for _, d := range devices {
			if d.Name == s.DeviceName {
				return d, nil
			}
		}
	}

	if s.DeviceID != "" || s.DeviceName != "" {
		if s.FallbackFirst {
			if s.Logger != nil {
				s.Logger.Warn("configured device not found, falling back to first device",
					"device_id", s.DeviceID, "device_name", s.DeviceName, "fallback", devices[0].Name)
			}
			return devices[0], nil
		}
		configured := s.DeviceID
		if configured == "" {
			configured = s.DeviceName
		}
		return services.Device{}, fmt.Errorf("%w: %q", shared.ErrDeviceNotFound, configured)
	}

	if s.Pick != nil {
		return s.Pick(devices)
	}

	return s.prompt(devices)
}

// prompt displays a 1-based numbered list and reads an integer choice,
// re-prompting on out-of-range or non-numeric input until valid.
func (s *Selector) prompt(devices []services.Device) (services.Device, error) {
	fmt.Fprintf(s.Out, "Multiple devices found:\n")
	for i, d := range devices {
		fmt.Fprintf(s.Out, "%d. %s (ID: %s)\n", i+1, d.Name, d.ID)
	}

	scanner := bufio.NewScanner(s.In)
	for {
		fmt.Fprintf(s.Out, "Enter the device number: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return services.Device{}, fmt.Errorf("failed to read selection: %w", err)
			}
			return services.Device{}, fmt.Errorf("%w: device selection aborted, input closed", shared.ErrMissingArgument)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(s.Out, "Please enter a valid number.\n")
			continue
		}

		if choice < 1 || choice > len(devices) {
			fmt.Fprintf(s.Out, "Invalid selection. Try again.\n")
			continue
		}

		return devices[choice-1], nil
	}
}
