package session

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler drives every session of a registry from one ticker
type Scheduler struct {
	registry *Registry
	interval time.Duration
}

// NewScheduler creates a scheduler. A non-positive interval means one second.
func NewScheduler(registry *Registry, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{registry: registry, interval: interval}
}

// Start begins ticking and returns a stop function
func (s *Scheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Infof("Session scheduler started (interval %s)", s.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Session scheduler shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Session scheduler shutting down (stop requested)...")
				return
			case <-ticker.C:
				s.registry.tickAll()
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// TickAll advances every session synchronously
func (s *Scheduler) TickAll() {
	s.registry.TickAll()
}
