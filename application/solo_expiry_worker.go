package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// SoloExpiryInterval is how often idle solo games are swept
const SoloExpiryInterval = 30 * time.Second

// IdleGameSweeper refunds and removes games nobody touched for a while
type IdleGameSweeper interface {
	ExpireIdle(ctx context.Context, now time.Time) (int, error)
}

// SoloExpiryWorker periodically sweeps idle solo games
type SoloExpiryWorker struct {
	games    IdleGameSweeper
	interval time.Duration
}

// NewSoloExpiryWorker creates a solo expiry worker
func NewSoloExpiryWorker(games IdleGameSweeper) *SoloExpiryWorker {
	return &SoloExpiryWorker{games: games, interval: SoloExpiryInterval}
}

// Start begins the solo expiry worker
func (w *SoloExpiryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Solo game expiry worker started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Solo game expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Solo game expiry worker shutting down (stop requested)...")
				return
			case now := <-ticker.C:
				expired, err := w.games.ExpireIdle(ctx, now)
				if err != nil {
					log.Errorf("Error expiring solo games: %v", err)
				}
				if expired > 0 {
					log.WithField("expired", expired).Info("Expired idle solo games")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
