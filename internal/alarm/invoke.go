package alarm

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 5 * time.Second
)

// Invoker issues the remote "resume playback" command with bounded
// retry and a fixed backoff between attempts.
type Invoker struct {
	Player      services.Player
	MaxAttempts int
	Backoff     time.Duration
	Logger      *log.Logger

	// Sleep overrides the backoff wait, for tests.
	Sleep func(d time.Duration)
}

// Start resumes playback on the device, retrying on remote failure.
//
// Returns the number of attempts made. After MaxAttempts consecutive
// failures the result is [shared.ErrPlaybackFailed] wrapping the last
// underlying error. No backoff follows the final attempt.
func (inv *Invoker) Start(ctx context.Context, deviceID string) (int, error) {
	maxAttempts := inv.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := inv.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := inv.Player.StartPlayback(ctx, deviceID)
		if err == nil {
			if inv.Logger != nil {
				inv.Logger.Info("playback started", "device_id", deviceID, "attempt", attempt)
			}
			return attempt, nil
		}

		lastErr = err
		if inv.Logger != nil {
			inv.Logger.Warn("playback attempt failed", "attempt", attempt, "max_attempts", maxAttempts, "error", err)
		}

		if attempt < maxAttempts {
			if err := inv.wait(ctx, backoff); err != nil {
				return attempt, err
			}
		}
	}

	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", shared.ErrPlaybackFailed, maxAttempts, lastErr)
}

func (inv *Invoker) wait(ctx context.Context, d time.Duration) error {
	if inv.Sleep != nil {
		inv.Sleep(d)
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
