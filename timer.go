package tablefsm

import (
	"context"
	"time"
)

// PollWhile calls poll every interval for as long as active reports true,
// on the caller's goroutine. A zero interval polls back to back. It returns
// the number of polls made, and ctx.Err() if ctx ends first.
func PollWhile(ctx context.Context, interval time.Duration, active func() bool, poll func()) (int, error) {
	polls := 0
	if interval <= 0 {
		for active() {
			if err := ctx.Err(); err != nil {
				return polls, err
			}
			poll()
			polls++
		}
		return polls, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for active() {
		select {
		case <-ctx.Done():
			return polls, ctx.Err()
		case <-ticker.C:
			poll()
			polls++
		}
	}
	return polls, nil
}
