package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"

	log "github.com/sirupsen/logrus"
)

// PaymentHandler reconciles transactions from the bank feed with pending topups
type PaymentHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(uowFactory UnitOfWorkFactory) *PaymentHandler {
	return &PaymentHandler{uowFactory: uowFactory}
}

// HandleMessage decodes one feed message and handles the transaction in it
func (h *PaymentHandler) HandleMessage(ctx context.Context, data []byte) error {
	var tx entities.BankTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		// A malformed message can never succeed, so it is dropped rather than redelivered
		log.WithError(err).Warn("Discarding malformed bank transaction")
		return nil
	}
	return h.HandleTransaction(ctx, &tx)
}

// HandleTransaction stores the transaction and credits the matching topup.
// A transaction ID seen before is ignored unless it is still unclaimed and its
// topup is still pending, which happens when an earlier delivery failed after
// the transaction was stored. A transfer without a matching pending topup stays
// unclaimed so the user can confirm it later.
func (h *PaymentHandler) HandleTransaction(ctx context.Context, tx *entities.BankTransaction) error {
	tx.TransactionID = strings.TrimSpace(tx.TransactionID)
	if tx.TransactionID == "" {
		log.Warn("Discarding bank transaction without an ID")
		return nil
	}
	if tx.Amount <= 0 {
		log.WithField("transactionID", tx.TransactionID).Warn("Discarding bank transaction with a non-positive amount")
		return nil
	}

	topup, fresh, err := h.record(ctx, tx)
	if err != nil {
		return err
	}
	if topup == nil {
		if !fresh {
			log.WithField("transactionID", tx.TransactionID).Debug("Bank transaction already processed")
			return nil
		}
		log.WithFields(log.Fields{
			"transactionID": tx.TransactionID,
			"amount":        tx.Amount,
		}).Info("Bank transaction does not match a pending topup")
		return nil
	}
	if !fresh {
		log.WithFields(log.Fields{
			"transactionID": tx.TransactionID,
			"code":          topup.Code,
		}).Info("Retrying reconcile for a redelivered bank transaction")
	}

	uow := h.uowFactory.CreateForGuild(topup.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := h.topupService(uow).Reconcile(ctx, tx)
	switch {
	case errors.Is(err, services.ErrTopupExpired):
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithFields(log.Fields{
			"transactionID": tx.TransactionID,
			"code":          topup.Code,
		}).Info("Bank transaction arrived after its topup expired")
		return nil
	case errors.Is(err, services.ErrTopupNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to reconcile transaction %s: %w", tx.TransactionID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionID": tx.TransactionID,
		"guildID":       topup.GuildID,
		"userID":        result.Topup.DiscordID,
		"amount":        result.Amount,
		"code":          result.Topup.Code,
	}).Debug("Bank transaction reconciled")
	return nil
}

// record saves the transaction and looks up the topup it pays for across all guilds.
// For a transaction stored before, the topup is only returned while the
// transaction is still unclaimed.
func (h *PaymentHandler) record(ctx context.Context, tx *entities.BankTransaction) (*entities.Topup, bool, error) {
	uow := h.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bank := uow.BankTransactionRepository()
	fresh, err := bank.Save(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	if !fresh {
		if tx.Code == nil {
			code, ok := entities.ExtractTopupCode(tx.Description)
			if !ok {
				return nil, false, nil
			}
			tx.Code = &code
		}
		stored, err := bank.GetUnclaimedByCode(ctx, *tx.Code)
		if err != nil {
			return nil, false, err
		}
		if stored == nil || stored.TransactionID != tx.TransactionID {
			return nil, false, nil
		}
	}

	var topup *entities.Topup
	if tx.Code != nil {
		if topup, err = uow.TopupRepository().GetPendingByCode(ctx, *tx.Code); err != nil {
			return nil, false, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return topup, fresh, nil
}

func (h *PaymentHandler) topupService(uow UnitOfWork) interfaces.TopupService {
	return services.NewTopupService(
		uow.TopupRepository(),
		uow.BankTransactionRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		nil,
	)
}
