package utils

import (
	"context"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the matching events.
// Every balance write in the bot goes through here.
func RecordBalanceChange(ctx context.Context, historyRepo interfaces.BalanceHistoryRepository, publisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := historyRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		GuildID:         history.GuildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"amount":          event.ChangeAmount,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
	}).Debug("Publishing BalanceChangeEvent")
	if err := publisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	if history.TransactionType == entities.TransactionTypeInitial {
		username, _ := history.TransactionMetadata["username"].(string)
		created := events.UserCreatedEvent{
			UserID:         history.DiscordID,
			GuildID:        history.GuildID,
			Username:       username,
			InitialBalance: history.BalanceAfter,
		}
		if err := publisher.Publish(created); err != nil {
			log.WithError(err).Error("Failed to publish user created event")
		}
	}

	return nil
}
