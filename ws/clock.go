package ws

import (
	"context"
	"time"
)

// DefaultClockInterval is how often the clock tick is pushed.
const DefaultClockInterval = 10 * time.Second

// RunClock broadcasts a time tick at the given interval until ctx is
// canceled. The tick is the scheduler's plumbing; richer periodic
// payloads are gathered by the dashboard's collaborators and broadcast
// through the same hub.
func RunClock(ctx context.Context, hub *Hub, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultClockInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if hub.ClientCount() > 0 {
				hub.Broadcast(MessageTypeTime, nil)
			}
		}
	}
}
