package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	log "github.com/sirupsen/logrus"
)

const maxRingNameLength = 50

type shopService struct {
	ringRepo           interfaces.RingRepository
	inventoryRepo      interfaces.InventoryRepository
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	startingBalance    int64
}

// NewShopService creates a ring shop over one guild's repositories
func NewShopService(
	ringRepo interfaces.RingRepository,
	inventoryRepo interfaces.InventoryRepository,
	userRepo interfaces.UserRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
	startingBalance int64,
) interfaces.ShopService {
	return &shopService{
		ringRepo:           ringRepo,
		inventoryRepo:      inventoryRepo,
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		startingBalance:    startingBalance,
	}
}

func (s *shopService) ListRings(ctx context.Context) ([]*entities.Ring, error) {
	rings, err := s.ringRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rings: %w", err)
	}
	return rings, nil
}

func (s *shopService) AddRing(ctx context.Context, name, emoji string, price int64) (*entities.Ring, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxRingNameLength {
		return nil, fmt.Errorf("ring name must be 1-%d characters", maxRingNameLength)
	}
	if price <= 0 {
		return nil, game.ErrInvalidAmount
	}

	existing, err := s.ringRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check ring: %w", err)
	}
	if existing != nil {
		return nil, ErrRingExists
	}

	ring := &entities.Ring{
		Name:      name,
		Emoji:     strings.TrimSpace(emoji),
		Price:     price,
		CreatedAt: time.Now(),
	}
	if err := s.ringRepo.Create(ctx, ring); err != nil {
		return nil, fmt.Errorf("failed to create ring: %w", err)
	}
	return ring, nil
}

func (s *shopService) RemoveRing(ctx context.Context, name string) error {
	deleted, err := s.ringRepo.Delete(ctx, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("failed to remove ring: %w", err)
	}
	if !deleted {
		return ErrRingNotFound
	}
	return nil
}

func (s *shopService) BuyRing(ctx context.Context, discordID int64, username, ringName string) (*interfaces.PurchaseResult, error) {
	ring, err := s.ringRepo.GetByName(ctx, strings.TrimSpace(ringName))
	if err != nil {
		return nil, fmt.Errorf("failed to get ring: %w", err)
	}
	if ring == nil {
		return nil, ErrRingNotFound
	}

	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		if user, err = s.userRepo.Create(ctx, discordID, username, s.startingBalance); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		initial := entities.NewBalanceHistory(discordID, 0, 0, user.Balance, entities.TransactionTypeInitial, map[string]any{
			"username": username,
		})
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, initial); err != nil {
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}
	if !user.CanAfford(ring.Price) {
		return nil, fmt.Errorf("%w: %s costs %s", game.ErrInsufficientBalance, ring.Name, utils.FormatAmount(ring.Price))
	}

	newBalance := user.Balance - ring.Price
	if err := s.userRepo.UpdateBalance(ctx, discordID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to debit ring purchase: %w", err)
	}

	relatedType := entities.RelatedTypeRing
	history := entities.NewBalanceHistory(discordID, 0, user.Balance, newBalance, entities.TransactionTypeRingPurchase, map[string]any{
		"ring": ring.Name,
	})
	history.RelatedID = &ring.ID
	history.RelatedType = &relatedType
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record ring purchase: %w", err)
	}

	item := &entities.InventoryItem{
		DiscordID:  discordID,
		RingName:   ring.Name,
		RingEmoji:  ring.Emoji,
		RingPrice:  ring.Price,
		AcquiredAt: time.Now(),
	}
	if err := s.inventoryRepo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add ring to inventory: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": discordID,
		"ring":   ring.Name,
		"price":  ring.Price,
	}).Info("Ring purchased")

	return &interfaces.PurchaseResult{Item: item, NewBalance: newBalance}, nil
}

func (s *shopService) Inventory(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	items, err := s.inventoryRepo.ListByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return items, nil
}
