package server

import (
	"time"
)

// PeriodicService runs a function on a fixed interval until stopped. It
// satisfies Service so recurring work, such as database health probes, can
// share the lifecycle of the long-running services.
type PeriodicService struct {
	interval time.Duration
	tick     func()
	done     chan struct{}
}

// NewPeriodicService creates a PeriodicService that invokes tick every
// interval once started.
//
// Precondition: interval must be > 0; tick must be non-nil.
func NewPeriodicService(interval time.Duration, tick func()) *PeriodicService {
	return &PeriodicService{
		interval: interval,
		tick:     tick,
		done:     make(chan struct{}),
	}
}

// Start runs the tick loop. It blocks until Stop is called, then returns nil.
//
// Postcondition: No tick fires after Start returns.
func (p *PeriodicService) Start() error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-p.done:
			return nil
		}
	}
}

// Stop ends the tick loop and unblocks Start. Must be called at most once.
func (p *PeriodicService) Stop() {
	close(p.done)
}
