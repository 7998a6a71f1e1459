package alarm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/reveille/internal/shared"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses strict 24-hour "HH:MM" text.
//
// Exactly one colon, both parts numeric, hour in [0,24), minute in
// [0,60). Anything else fails with [shared.ErrInvalidTimeFormat]
// naming the offending input.
func ParseClock(s string) (Clock, error) {
	fail := func() (Clock, error) {
		return Clock{}, fmt.Errorf("%w: %q, expected HH:MM (24-hour)", shared.ErrInvalidTimeFormat, s)
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fail()
	}

	nums := make([]int, 2)
	for i, part := range parts {
		if part == "" || len(part) > 2 {
			return fail()
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return fail()
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fail()
		}
		nums[i] = n
	}

	if nums[0] >= 24 || nums[1] >= 60 {
		return fail()
	}

	return Clock{Hour: nums[0], Minute: nums[1]}, nil
}

// String renders the clock back as zero-padded "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// NextOccurrence returns the soonest instant after now whose
// time-of-day equals the clock: today if still ahead, else tomorrow.
func (c Clock) NextOccurrence(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// WaitUntil blocks until the instant arrives or the context is
// cancelled. A zero or negative remaining duration is a no-op.
//
// The wait can span ~24 hours, so it runs on a timer selected against
// ctx.Done() rather than a bare sleep; an interrupt cuts it short
// immediately.
func WaitUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
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
