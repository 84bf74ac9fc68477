package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	log "github.com/sirupsen/logrus"
)

const (
	// TopupTTL is how long a topup code accepts a transfer
	TopupTTL = 15 * time.Minute

	// RecentTopupsShown is the number of paid topups listed in revenue stats
	RecentTopupsShown = 5
)

type topupService struct {
	topupRepo          interfaces.TopupRepository
	bankRepo           interfaces.BankTransactionRepository
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	roller             dice.Roller
	now                func() time.Time
}

// NewTopupService creates a topup service over one guild's repositories
func NewTopupService(
	topupRepo interfaces.TopupRepository,
	bankRepo interfaces.BankTransactionRepository,
	userRepo interfaces.UserRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
	roller dice.Roller,
) interfaces.TopupService {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &topupService{
		topupRepo:          topupRepo,
		bankRepo:           bankRepo,
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		roller:             roller,
		now:                time.Now,
	}
}

// GenerateTopupCode draws three letters and four digits, e.g. QKD4821
func GenerateTopupCode(roller dice.Roller) (string, error) {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		n, err := roller.Roll(26)
		if err != nil {
			return "", fmt.Errorf("failed to generate topup code: %w", err)
		}
		b.WriteByte(byte('A' + n - 1))
	}
	n, err := roller.Roll(9000)
	if err != nil {
		return "", fmt.Errorf("failed to generate topup code: %w", err)
	}
	fmt.Fprintf(&b, "%d", 999+n)
	return b.String(), nil
}

func (s *topupService) RequestTopup(ctx context.Context, discordID, channelID int64, username string) (*interfaces.TopupRequest, error) {
	now := s.now()

	existing, err := s.topupRepo.GetPendingByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending topup: %w", err)
	}
	if existing != nil && !existing.IsExpiredAt(now) {
		return &interfaces.TopupRequest{Topup: existing, Reused: true}, nil
	}

	code, err := GenerateTopupCode(s.roller)
	if err != nil {
		return nil, err
	}

	topup := &entities.Topup{
		DiscordID: discordID,
		ChannelID: channelID,
		Code:      code,
		Status:    entities.TopupStatusPending,
		ExpiresAt: now.Add(TopupTTL),
		CreatedAt: now,
	}
	if err := s.topupRepo.Create(ctx, topup); err != nil {
		return nil, fmt.Errorf("failed to create topup: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   discordID,
		"username": username,
		"code":     code,
	}).Info("Topup requested")
	return &interfaces.TopupRequest{Topup: topup}, nil
}

func (s *topupService) CancelTopup(ctx context.Context, discordID int64, code string) error {
	topup, err := s.ownedPending(ctx, discordID, code)
	if err != nil {
		return err
	}
	if err := s.topupRepo.MarkExpired(ctx, topup.ID); err != nil {
		return fmt.Errorf("failed to cancel topup %s: %w", topup.Code, err)
	}
	return nil
}

// ConfirmTopup settles a topup against a transfer the bank feed already reported
func (s *topupService) ConfirmTopup(ctx context.Context, discordID int64, code string) (*interfaces.TopupResult, error) {
	topup, err := s.ownedPending(ctx, discordID, code)
	if err != nil {
		return nil, err
	}
	if topup.IsExpiredAt(s.now()) {
		return nil, s.expire(ctx, topup)
	}

	tx, err := s.bankRepo.GetUnclaimedByCode(ctx, topup.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up bank transfer: %w", err)
	}
	if tx == nil {
		return nil, ErrPaymentNotReceived
	}
	return s.settle(ctx, topup, tx)
}

// Reconcile matches an incoming transfer to a pending topup by the code in its description
func (s *topupService) Reconcile(ctx context.Context, tx *entities.BankTransaction) (*interfaces.TopupResult, error) {
	code, ok := entities.ExtractTopupCode(tx.Description)
	if tx.Code != nil && *tx.Code != "" {
		code, ok = *tx.Code, true
	}
	if !ok {
		return nil, ErrTopupNotFound
	}

	topup, err := s.topupRepo.GetPendingByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get topup %s: %w", code, err)
	}
	if topup == nil {
		return nil, ErrTopupNotFound
	}
	if topup.IsExpiredAt(s.now()) {
		return nil, s.expire(ctx, topup)
	}
	return s.settle(ctx, topup, tx)
}

func (s *topupService) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.topupRepo.ExpireOld(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire topups: %w", err)
	}
	return count, nil
}

func (s *topupService) RevenueStats(ctx context.Context) (*entities.RevenueStats, error) {
	total, count, err := s.topupRepo.GetRevenueTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue totals: %w", err)
	}
	recent, err := s.topupRepo.GetRecentPaid(ctx, RecentTopupsShown)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent topups: %w", err)
	}
	balances, err := s.userRepo.GetTotalBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get total balance: %w", err)
	}
	return &entities.RevenueStats{
		TotalRevenue:      total,
		TotalTransactions: count,
		TotalUserBalance:  balances,
		Recent:            recent,
	}, nil
}

func (s *topupService) ResetRevenue(ctx context.Context) (int64, error) {
	deleted, err := s.topupRepo.DeletePaid(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset revenue: %w", err)
	}
	return deleted, nil
}

func (s *topupService) ownedPending(ctx context.Context, discordID int64, code string) (*entities.Topup, error) {
	topup, err := s.topupRepo.GetPendingByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to get topup %s: %w", code, err)
	}
	if topup == nil || topup.DiscordID != discordID {
		return nil, ErrTopupNotFound
	}
	return topup, nil
}

func (s *topupService) expire(ctx context.Context, topup *entities.Topup) error {
	if err := s.topupRepo.MarkExpired(ctx, topup.ID); err != nil {
		return fmt.Errorf("failed to expire topup %s: %w", topup.Code, err)
	}
	return ErrTopupExpired
}

func (s *topupService) settle(ctx context.Context, topup *entities.Topup, tx *entities.BankTransaction) (*interfaces.TopupResult, error) {
	paidAt := s.now()
	if err := s.topupRepo.MarkPaid(ctx, topup.ID, tx.TransactionID, tx.Description, tx.Amount, paidAt); err != nil {
		return nil, fmt.Errorf("failed to mark topup %s paid: %w", topup.Code, err)
	}
	if err := s.bankRepo.MarkClaimed(ctx, tx.TransactionID); err != nil {
		return nil, fmt.Errorf("failed to claim transaction %s: %w", tx.TransactionID, err)
	}

	user, err := s.userRepo.GetByDiscordID(ctx, topup.DiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	var before int64
	if user == nil {
		if user, err = s.userRepo.Create(ctx, topup.DiscordID, "", 0); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		before = user.Balance
	}

	after := before + tx.Amount
	if err := s.userRepo.UpdateBalance(ctx, topup.DiscordID, after); err != nil {
		return nil, fmt.Errorf("failed to credit topup: %w", err)
	}

	relatedType := entities.RelatedTypeTopup
	history := entities.NewBalanceHistory(topup.DiscordID, topup.GuildID, before, after, entities.TransactionTypeTopup, map[string]any{
		"code":           topup.Code,
		"transaction_id": tx.TransactionID,
	})
	history.RelatedID = &topup.ID
	history.RelatedType = &relatedType
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record topup: %w", err)
	}

	topup.Status = entities.TopupStatusPaid
	topup.Amount = tx.Amount
	topup.TransactionID = &tx.TransactionID
	topup.Description = tx.Description
	topup.PaidAt = &paidAt

	if err := s.eventPublisher.Publish(events.TopupPaidEvent{
		TopupID:       topup.ID,
		GuildID:       topup.GuildID,
		UserID:        topup.DiscordID,
		ChannelID:     topup.ChannelID,
		Code:          topup.Code,
		Amount:        tx.Amount,
		NewBalance:    after,
		TransactionID: tx.TransactionID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish topup paid event")
	}

	log.WithFields(log.Fields{
		"userID":  topup.DiscordID,
		"guildID": topup.GuildID,
		"amount":  tx.Amount,
		"code":    topup.Code,
	}).Info("Topup paid")

	return &interfaces.TopupResult{Topup: topup, Amount: tx.Amount, NewBalance: after}, nil
}
