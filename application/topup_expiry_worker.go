package application

import (
	"context"
	"fmt"
	"time"

	"dicehall/domain/services"

	log "github.com/sirupsen/logrus"
)

// TopupExpiryInterval is how often stale topup codes are swept
const TopupExpiryInterval = time.Minute

// TopupExpiryWorker marks unpaid topups past their deadline as expired
type TopupExpiryWorker struct {
	uowFactory UnitOfWorkFactory
	interval   time.Duration
	now        func() time.Time
}

// NewTopupExpiryWorker creates a topup expiry worker
func NewTopupExpiryWorker(uowFactory UnitOfWorkFactory) *TopupExpiryWorker {
	return &TopupExpiryWorker{
		uowFactory: uowFactory,
		interval:   TopupExpiryInterval,
		now:        time.Now,
	}
}

// Start begins the topup expiry worker
func (w *TopupExpiryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Topup expiry worker started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Topup expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Topup expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				if _, err := w.RunOnce(ctx); err != nil {
					log.Errorf("Error expiring topups: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce expires every overdue topup across all guilds
func (w *TopupExpiryWorker) RunOnce(ctx context.Context) (int64, error) {
	uow := w.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	topupService := services.NewTopupService(
		uow.TopupRepository(),
		uow.BankTransactionRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		nil,
	)

	expired, err := topupService.ExpireOld(ctx, w.now())
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if expired > 0 {
		log.WithField("expired", expired).Info("Expired stale topups")
	}
	return expired, nil
}
