package alarm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
	"golang.org/x/oauth2"
)

// State identifies a phase of the alarm run loop.
type State int

const (
	StateLoadConfig State = iota
	StateAuthenticate
	StateAwaitTime
	StateSelectDevice
	StateInvoke
	StateDone
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateLoadConfig:
		return "load_config"
	case StateAuthenticate:
		return "authenticate"
	case StateAwaitTime:
		return "await_time"
	case StateSelectDevice:
		return "select_device"
	case StateInvoke:
		return "invoke"
	case StateDone:
		return "done"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// TokenResolver yields a usable access token; see [tokens.Manager].
type TokenResolver interface {
	Resolve(ctx context.Context) (*oauth2.Token, error)
}

// CycleRecord captures the outcome of one fired alarm cycle.
type CycleRecord struct {
	FiredAt    time.Time
	Target     string
	DeviceID   string
	DeviceName string
	Attempts   int
	Outcome    string
	Error      string
}

// RecordFunc persists a cycle record; a nil func disables recording.
type RecordFunc func(ctx context.Context, rec CycleRecord) error

// Loop drives one alarm cycle per pass: load config, authenticate,
// wait for the target time, select a device, invoke playback.
//
// Each failure kind is a visible branch in the state machine, so retry
// vs. abort vs. terminate decisions live here rather than in an
// implicit error propagation path.
type Loop struct {
	Reload func() (*shared.Config, error)
	Tokens TokenResolver
	Player services.Player
	Record RecordFunc

	In     io.Reader
	Out    io.Writer
	Logger *log.Logger

	// Now and Wait are swappable for tests.
	Now  func() time.Time
	Wait func(ctx context.Context, t time.Time) error

	// Picker replaces the numbered device prompt when set.
	Picker func(devices []services.Device) (services.Device, error)

	// CLI overrides, applied on top of each reloaded config.
	Time       string
	DeviceID   string
	DeviceName string
	Repeat     *bool
}

// Run executes alarm cycles until completion, a fatal error, or
// cancellation. A user-initiated cancellation is a clean exit, not a
// fatal error.
func (l *Loop) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	var in io.Reader = os.Stdin
	if l.In != nil {
		in = l.In
	}
	// One buffered reader shared by the time prompt and the device
	// prompt, so line input is consumed in order.
	reader := bufio.NewReader(in)

	state := StateLoadConfig
	clog := logger

	var (
		cfg    *shared.Config
		clock  Clock
		target time.Time
		device services.Device
		fatal  error
	)

	for {
		if ctx.Err() != nil {
			clog.Info("stopped by user")
			return nil
		}

		switch state {
		case StateLoadConfig:
			c, err := l.Reload()
			if err == nil {
				err = c.Credentials.Spotify.Validate()
			}
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			cfg = c
			clog = shared.WithLogger(logger, "cycle", shared.GenerateID())
			state = StateAuthenticate

		case StateAuthenticate:
			tok, err := l.Tokens.Resolve(ctx)
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			l.Player.SetToken(tok)
			state = StateAwaitTime

		case StateAwaitTime:
			spec := l.Time
			if spec == "" {
				spec = cfg.Alarm.Time
			}
			if spec == "" {
				s, err := promptLine(reader, out, "Enter alarm time (HH:MM, 24-hour): ")
				if err != nil {
					fatal = err
					state = StateFatal
					continue
				}
				spec = s
			}

			c, err := ParseClock(spec)
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			clock = c
			target = clock.NextOccurrence(l.now())

			clog.Info("waiting for alarm", "target", target.Format(time.RFC3339), "in", time.Until(target).Round(time.Second))
			if err := l.wait(ctx, target); err != nil {
				if errors.Is(err, context.Canceled) {
					clog.Info("stopped by user")
					return nil
				}
				fatal = err
				state = StateFatal
				continue
			}

			// The wait may have outlived the access token; resolve
			// again so playback never runs with a stale one.
			tok, err := l.Tokens.Resolve(ctx)
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			l.Player.SetToken(tok)
			state = StateSelectDevice

		case StateSelectDevice:
			devices, err := l.Player.Devices(ctx)
			if err != nil {
				fatal = fmt.Errorf("failed to fetch devices: %w", err)
				state = StateFatal
				continue
			}

			sel := &Selector{
				DeviceID:      firstNonEmpty(l.DeviceID, cfg.Alarm.DeviceID),
				DeviceName:    firstNonEmpty(l.DeviceName, cfg.Alarm.DeviceName),
				FallbackFirst: cfg.Alarm.FallbackFirst,
				In:            reader,
				Out:           out,
				Logger:        clog,
				Pick:          l.Picker,
			}
			device, err = sel.Select(devices)
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			clog.Info("device selected", "name", device.Name, "id", device.ID)
			state = StateInvoke

		case StateInvoke:
			inv := &Invoker{
				Player:      l.Player,
				MaxAttempts: cfg.Alarm.MaxAttempts,
				Backoff:     time.Duration(cfg.Alarm.BackoffSeconds) * time.Second,
				Logger:      clog,
			}

			attempts, err := inv.Start(ctx, device.ID)
			l.record(ctx, clog, CycleRecord{
				FiredAt:    l.now(),
				Target:     clock.String(),
				DeviceID:   device.ID,
				DeviceName: device.Name,
				Attempts:   attempts,
				Outcome:    outcome(err),
				Error:      errText(err),
			})
			if err != nil {
				fatal = err
				state = StateFatal
				continue
			}
			state = StateDone

		case StateDone:
			if l.repeat(cfg) {
				clog.Info("cycle complete, rescheduling")
				state = StateLoadConfig
				continue
			}
			clog.Info("cycle complete")
			return nil

		case StateFatal:
			if errors.Is(fatal, context.Canceled) {
				clog.Info("stopped by user")
				return nil
			}
			clog.Error("alarm cycle failed", "state", state.String(), "error", fatal)
			return fatal
		}
	}
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) wait(ctx context.Context, t time.Time) error {
	if l.Wait != nil {
		return l.Wait(ctx, t)
	}
	return WaitUntil(ctx, t)
}

func (l *Loop) repeat(cfg *shared.Config) bool {
	if l.Repeat != nil {
		return *l.Repeat
	}
	return cfg.Alarm.Repeat
}

func (l *Loop) record(ctx context.Context, logger *log.Logger, rec CycleRecord) {
	if l.Record == nil {
		return
	}
	// History is best-effort; a recording failure never aborts a cycle.
	if err := l.Record(ctx, rec); err != nil {
		logger.Warn("failed to record alarm history", "error", err)
	}
}

func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: no alarm time provided, input closed", shared.ErrMissingArgument)
	}
	return strings.TrimSpace(line), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "failed"
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
