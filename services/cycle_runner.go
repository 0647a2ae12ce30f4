// file: services/cycle_runner.go
package services

import (
	"context"
	"errors"
	"time"

	"gamepad-websocket/logger"
)

// Runner calls Tick on a fixed period from a single goroutine, so ticks never
// overlap.
type Runner struct {
	Period time.Duration
	Tick   func() error
	// OnError is called with every error returned by Tick. Optional.
	OnError func(error)
}

// Run ticks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if r.Period <= 0 || r.Tick == nil {
		return errors.New("runner needs a positive period and a tick function")
	}
	ticker := time.NewTicker(r.Period)
	defer ticker.Stop()
	logger.Info.Printf("[Runner.Run] cycle period=%v", r.Period)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				logger.Error.Printf("[Runner.Run] tick failed: %v", err)
				if r.OnError != nil {
					r.OnError(err)
				}
			}
		}
	}
}
