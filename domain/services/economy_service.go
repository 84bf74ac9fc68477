package services

import (
	"context"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	log "github.com/sirupsen/logrus"
)

const (
	// MinTransferAmount is the smallest allowed transfer
	MinTransferAmount int64 = 100

	// DefaultLeaderboardSize is used when no limit is given
	DefaultLeaderboardSize = 10
)

type economyService struct {
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	startingBalance    int64
}

// NewEconomyService creates a new economy service for one guild's repositories
func NewEconomyService(userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, startingBalance int64) interfaces.EconomyService {
	return &economyService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		startingBalance:    startingBalance,
	}
}

func (s *economyService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*entities.User, error) {
	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.userRepo.Create(ctx, discordID, username, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := entities.NewBalanceHistory(discordID, 0, 0, user.Balance, entities.TransactionTypeInitial, map[string]any{
		"username": username,
	})
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  discordID,
		"balance": user.Balance,
	}).Info("Created new account")
	return user, nil
}

func (s *economyService) Transfer(ctx context.Context, fromID, toID, amount int64, fromName, toName string) (*interfaces.TransferResult, error) {
	if fromID == toID {
		return nil, ErrSelfTransfer
	}
	if amount < MinTransferAmount {
		return nil, fmt.Errorf("%w: transfers start at %s", ErrBelowMinimum, utils.FormatAmount(MinTransferAmount))
	}

	sender, err := s.GetOrCreateUser(ctx, fromID, fromName)
	if err != nil {
		return nil, err
	}
	if !sender.CanAfford(amount) {
		return nil, fmt.Errorf("%w: you have %s", game.ErrInsufficientBalance, utils.FormatAmount(sender.Balance))
	}

	recipient, err := s.GetOrCreateUser(ctx, toID, toName)
	if err != nil {
		return nil, err
	}

	fromBalance := sender.Balance - amount
	toBalance := recipient.Balance + amount

	if err := s.userRepo.UpdateBalance(ctx, fromID, fromBalance); err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}
	if err := s.userRepo.UpdateBalance(ctx, toID, toBalance); err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	out := entities.NewBalanceHistory(fromID, 0, sender.Balance, fromBalance, entities.TransactionTypeTransferOut, map[string]any{
		"transfer_to": toID,
	})
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, out); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}
	in := entities.NewBalanceHistory(toID, 0, recipient.Balance, toBalance, entities.TransactionTypeTransferIn, map[string]any{
		"transfer_from": fromID,
	})
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, in); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	return &interfaces.TransferResult{
		FromBalance: fromBalance,
		ToBalance:   toBalance,
		Amount:      amount,
	}, nil
}

func (s *economyService) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	entries, err := s.userRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// AddMoney adds a possibly negative amount. The result never drops below zero.
func (s *economyService) AddMoney(ctx context.Context, discordID int64, username string, amount int64) (*interfaces.BalanceAdjustment, error) {
	return s.adjust(ctx, discordID, username, entities.TransactionTypeAdminAdd, func(current int64) (int64, error) {
		return max(current+amount, 0), nil
	})
}

func (s *economyService) SetMoney(ctx context.Context, discordID int64, username string, amount int64) (*interfaces.BalanceAdjustment, error) {
	if amount < 0 {
		return nil, game.ErrInvalidAmount
	}
	return s.adjust(ctx, discordID, username, entities.TransactionTypeAdminSet, func(int64) (int64, error) {
		return amount, nil
	})
}

func (s *economyService) ResetMoney(ctx context.Context, discordID int64, username string) (*interfaces.BalanceAdjustment, error) {
	return s.adjust(ctx, discordID, username, entities.TransactionTypeAdminReset, func(int64) (int64, error) {
		return s.startingBalance, nil
	})
}

func (s *economyService) ResetAll(ctx context.Context) (int64, error) {
	count, err := s.userRepo.ResetAllBalances(ctx, s.startingBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to reset balances: %w", err)
	}
	log.WithFields(log.Fields{
		"accounts": count,
		"balance":  s.startingBalance,
	}).Warn("Reset every balance in guild")
	return count, nil
}

func (s *economyService) adjust(ctx context.Context, discordID int64, username string, txType entities.TransactionType, fn func(int64) (int64, error)) (*interfaces.BalanceAdjustment, error) {
	user, err := s.GetOrCreateUser(ctx, discordID, username)
	if err != nil {
		return nil, err
	}

	newBalance, err := fn(user.Balance)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateBalance(ctx, discordID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if newBalance != user.Balance {
		history := entities.NewBalanceHistory(discordID, 0, user.Balance, newBalance, txType, nil)
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return nil, fmt.Errorf("failed to record balance change: %w", err)
		}
	}

	return &interfaces.BalanceAdjustment{
		DiscordID:     discordID,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
	}, nil
}
