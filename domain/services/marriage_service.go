package services

import (
	"context"
	"fmt"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/interfaces"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	log "github.com/sirupsen/logrus"
)

const (
	// ProposalTTL is how long a proposal waits for an answer
	ProposalTTL = 60 * time.Second

	// AffinityCooldown is shared by love and hate
	AffinityCooldown = 30 * time.Minute

	// StartingLovePoints is given to every new marriage
	StartingLovePoints int64 = 100
)

type marriageService struct {
	guildID        int64
	marriageRepo   interfaces.MarriageRepository
	inventoryRepo  interfaces.InventoryRepository
	proposals      interfaces.ProposalStore
	cooldowns      interfaces.CooldownStore
	eventPublisher interfaces.EventPublisher
	roller         dice.Roller
}

// NewMarriageService creates a marriage service for one guild
func NewMarriageService(
	guildID int64,
	marriageRepo interfaces.MarriageRepository,
	inventoryRepo interfaces.InventoryRepository,
	proposals interfaces.ProposalStore,
	cooldowns interfaces.CooldownStore,
	eventPublisher interfaces.EventPublisher,
	roller dice.Roller,
) interfaces.MarriageService {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &marriageService{
		guildID:        guildID,
		marriageRepo:   marriageRepo,
		inventoryRepo:  inventoryRepo,
		proposals:      proposals,
		cooldowns:      cooldowns,
		eventPublisher: eventPublisher,
		roller:         roller,
	}
}

// Propose offers the ring at a 1-based inventory index to the target
func (s *marriageService) Propose(ctx context.Context, proposerID, targetID int64, ringIndex int) (*entities.Proposal, error) {
	if proposerID == targetID {
		return nil, ErrSelfProposal
	}
	if err := s.ensureSingle(ctx, proposerID, targetID); err != nil {
		return nil, err
	}

	pending, err := s.proposals.Get(ctx, s.guildID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check proposals: %w", err)
	}
	if pending != nil {
		return nil, ErrProposalPending
	}

	items, err := s.inventoryRepo.ListByUser(ctx, proposerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if ringIndex < 1 || ringIndex > len(items) {
		return nil, ErrRingNotFound
	}
	item := items[ringIndex-1]

	proposal := &entities.Proposal{
		GuildID:    s.guildID,
		ProposerID: proposerID,
		TargetID:   targetID,
		ItemID:     item.ID,
		RingName:   item.RingName,
		RingEmoji:  item.RingEmoji,
		CreatedAt:  time.Now(),
	}
	if err := s.proposals.Save(ctx, proposal, ProposalTTL); err != nil {
		return nil, fmt.Errorf("failed to save proposal: %w", err)
	}
	return proposal, nil
}

// Respond answers the proposal addressed to targetID. The marriage is nil when declined.
func (s *marriageService) Respond(ctx context.Context, targetID int64, accept bool) (*entities.Marriage, *entities.Proposal, error) {
	proposal, err := s.proposals.Take(ctx, s.guildID, targetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal == nil {
		return nil, nil, ErrProposalExpired
	}
	if !accept {
		return nil, proposal, nil
	}

	if err := s.ensureSingle(ctx, proposal.ProposerID, proposal.TargetID); err != nil {
		return nil, proposal, err
	}

	removed, err := s.inventoryRepo.Remove(ctx, proposal.ItemID)
	if err != nil {
		return nil, proposal, fmt.Errorf("failed to take ring: %w", err)
	}
	if !removed {
		return nil, proposal, ErrRingNotFound
	}

	marriage := &entities.Marriage{
		GuildID:    s.guildID,
		User1ID:    proposal.ProposerID,
		User2ID:    proposal.TargetID,
		RingName:   proposal.RingName,
		RingEmoji:  proposal.RingEmoji,
		LovePoints: StartingLovePoints,
		MarriedAt:  time.Now(),
	}
	if err := s.marriageRepo.Create(ctx, marriage); err != nil {
		return nil, proposal, fmt.Errorf("failed to create marriage: %w", err)
	}

	s.publish(marriage, "married")
	log.WithFields(log.Fields{
		"guildID": s.guildID,
		"user1":   marriage.User1ID,
		"user2":   marriage.User2ID,
		"ring":    marriage.RingName,
	}).Info("Marriage created")
	return marriage, proposal, nil
}

func (s *marriageService) Divorce(ctx context.Context, discordID int64) (*entities.Marriage, error) {
	marriage, err := s.Status(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if err := s.marriageRepo.Delete(ctx, marriage.ID); err != nil {
		return nil, fmt.Errorf("failed to delete marriage: %w", err)
	}
	s.publish(marriage, "divorced")
	return marriage, nil
}

func (s *marriageService) Status(ctx context.Context, discordID int64) (*entities.Marriage, error) {
	marriage, err := s.marriageRepo.GetByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get marriage: %w", err)
	}
	if marriage == nil {
		return nil, ErrNotMarried
	}
	return marriage, nil
}

// Love adds 5 to 15 points
func (s *marriageService) Love(ctx context.Context, discordID int64) (*interfaces.AffinityResult, error) {
	return s.affinity(ctx, discordID, func() (int64, error) {
		n, err := s.roller.Roll(11)
		return int64(n + 4), err
	})
}

// Hate removes 10 to 25 points
func (s *marriageService) Hate(ctx context.Context, discordID int64) (*interfaces.AffinityResult, error) {
	return s.affinity(ctx, discordID, func() (int64, error) {
		n, err := s.roller.Roll(16)
		return -int64(n + 9), err
	})
}

// CooldownKey names the shared love/hate cooldown of a member
func CooldownKey(guildID, discordID int64) string {
	return fmt.Sprintf("affinity:%d:%d", guildID, discordID)
}

func (s *marriageService) affinity(ctx context.Context, discordID int64, draw func() (int64, error)) (*interfaces.AffinityResult, error) {
	marriage, err := s.Status(ctx, discordID)
	if err != nil {
		return nil, err
	}

	ok, remaining, err := s.cooldowns.Acquire(ctx, CooldownKey(s.guildID, discordID), AffinityCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !ok {
		return nil, &CooldownError{Remaining: remaining}
	}

	delta, err := draw()
	if err != nil {
		return nil, fmt.Errorf("failed to roll affinity: %w", err)
	}
	points := max(marriage.LovePoints+delta, 0)
	if err := s.marriageRepo.UpdateLovePoints(ctx, marriage.ID, points); err != nil {
		return nil, fmt.Errorf("failed to update love points: %w", err)
	}

	applied := points - marriage.LovePoints
	marriage.LovePoints = points
	return &interfaces.AffinityResult{Marriage: marriage, Delta: applied}, nil
}

func (s *marriageService) ensureSingle(ctx context.Context, proposerID, targetID int64) error {
	own, err := s.marriageRepo.GetByUser(ctx, proposerID)
	if err != nil {
		return fmt.Errorf("failed to get marriage: %w", err)
	}
	if own != nil {
		return ErrAlreadyMarried
	}
	theirs, err := s.marriageRepo.GetByUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to get marriage: %w", err)
	}
	if theirs != nil {
		return ErrTargetMarried
	}
	return nil
}

func (s *marriageService) publish(marriage *entities.Marriage, action string) {
	if err := s.eventPublisher.Publish(events.MarriageEvent{
		GuildID:  s.guildID,
		User1ID:  marriage.User1ID,
		User2ID:  marriage.User2ID,
		Action:   action,
		RingName: marriage.RingName,
	}); err != nil {
		log.WithError(err).Error("Failed to publish marriage event")
	}
}
