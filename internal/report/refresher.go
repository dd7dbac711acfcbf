package report

import (
	"context"
	"log"
	"time"
)

// Refresher recomputes the default dashboard on a fixed interval, keeping
// the cache warm between user-triggered refreshes. It owns the schedule;
// the engine stays stateless.
type Refresher struct {
	engine   *Engine
	interval time.Duration
}

func NewRefresher(engine *Engine, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{engine: engine, interval: interval}
}

// Run blocks until ctx is canceled, refreshing the dashboard once per
// interval. Refresh failures are logged and the next tick retries.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.engine.Dashboard(ctx, 0, 0); err != nil {
				log.Printf("[refresher] dashboard refresh failed: %v", err)
			}
		}
	}
}
