package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// MinSoloBalance is required to open a solo game
	MinSoloBalance int64 = 100

	// SoloIdleTimeout ends a solo game nobody touched
	SoloIdleTimeout = 5 * time.Minute
)

// SoloGame is one member's private game. Values returned by SoloService are copies.
type SoloGame struct {
	ID         string
	GuildID    int64
	UserID     int64
	ChannelID  int64
	Kind       entities.GameKind
	Amount     int64
	Stakes     map[entities.Side]int64
	Finished   bool
	LastActive time.Time
}

// Staked is the open stake across every side
func (g *SoloGame) Staked() int64 {
	var total int64
	for _, amount := range g.Stakes {
		total += amount
	}
	return total
}

func (g *SoloGame) clone() *SoloGame {
	c := *g
	c.Stakes = maps.Clone(g.Stakes)
	return &c
}

// SoloResult is a resolved solo roll
type SoloResult struct {
	Game    *SoloGame
	Outcome entities.Outcome
	Line    game.PayoutLine
	Balance int64
}

// SoloService keeps solo games in memory, one per member per guild
type SoloService struct {
	wallet *utils.Wallet
	roller dice.Roller
	locks  *utils.KeyedLock[utils.AccountKey]
	now    func() time.Time

	mu    sync.Mutex
	games map[utils.AccountKey]*SoloGame
}

// NewSoloService creates a solo game table on top of the shared wallet
func NewSoloService(wallet *utils.Wallet, roller dice.Roller) *SoloService {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &SoloService{
		wallet: wallet,
		roller: roller,
		locks:  utils.NewKeyedLock[utils.AccountKey](),
		now:    time.Now,
		games:  make(map[utils.AccountKey]*SoloGame),
	}
}

func newGameID() string {
	return uuid.NewString()[:8]
}

// Start opens a new game, refunding and replacing any game the member still has
func (s *SoloService) Start(ctx context.Context, guildID, userID, channelID int64, kind entities.GameKind) (*SoloGame, error) {
	if _, err := game.ForKind(kind); err != nil {
		return nil, err
	}
	key := utils.AccountKey{GuildID: guildID, UserID: userID}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	balance, err := s.wallet.Balance(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if old := s.lookup(key); old != nil {
		if _, err := s.refund(ctx, old); err != nil {
			return nil, err
		}
		balance += old.Staked()
	}
	if balance < MinSoloBalance {
		return nil, fmt.Errorf("%w: you need at least %s to play", game.ErrInsufficientBalance, utils.FormatAmount(MinSoloBalance))
	}

	g := &SoloGame{
		ID:         newGameID(),
		GuildID:    guildID,
		UserID:     userID,
		ChannelID:  channelID,
		Kind:       kind,
		Amount:     min(game.DefaultStake, balance),
		Stakes:     make(map[entities.Side]int64),
		LastActive: s.now(),
	}
	s.store(key, g)

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"gameID":  g.ID,
		"kind":    kind,
	}).Debug("Solo game started")
	return g.clone(), nil
}

// Get returns the member's game if one is open
func (s *SoloService) Get(guildID, userID int64) (*SoloGame, bool) {
	g := s.lookup(utils.AccountKey{GuildID: guildID, UserID: userID})
	if g == nil {
		return nil, false
	}
	return g.clone(), true
}

// Balance reads the member's wallet balance
func (s *SoloService) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	return s.wallet.Balance(ctx, guildID, userID)
}

// SelectAmount sets the stake used by the next side choice
func (s *SoloService) SelectAmount(ctx context.Context, guildID, userID int64, gameID string, amount int64) (*SoloGame, error) {
	if amount <= 0 {
		return nil, game.ErrInvalidAmount
	}
	return s.withGame(guildID, userID, gameID, func(g *SoloGame) error {
		if g.Finished {
			return game.ErrGameExpired
		}
		g.Amount = amount
		return nil
	})
}

// Stake debits the selected amount onto a side
func (s *SoloService) Stake(ctx context.Context, guildID, userID int64, gameID string, side entities.Side) (*SoloGame, error) {
	return s.withGame(guildID, userID, gameID, func(g *SoloGame) error {
		if g.Finished {
			return game.ErrGameExpired
		}
		rules, err := game.ForKind(g.Kind)
		if err != nil {
			return err
		}
		if _, err := rules.ParseSide(string(side)); err != nil {
			return err
		}
		if g.Kind == entities.GameKindDiceSum && g.Staked() > 0 {
			return game.ErrSideAlreadyCommitted
		}

		if _, err := s.wallet.Debit(ctx, guildID, userID, g.Amount, interfaces.LedgerChange{
			Type:     entities.TransactionTypeSoloBet,
			Metadata: map[string]any{"game_id": g.ID, "kind": string(g.Kind), "side": string(side)},
		}); err != nil {
			return err
		}
		g.Stakes[side] += g.Amount
		return nil
	})
}

// Roll resolves the open stakes
func (s *SoloService) Roll(ctx context.Context, guildID, userID int64, gameID string) (*SoloResult, error) {
	var result *SoloResult
	_, err := s.withGame(guildID, userID, gameID, func(g *SoloGame) error {
		if g.Finished {
			return game.ErrGameExpired
		}
		if g.Staked() == 0 {
			return ErrNoStake
		}
		rules, err := game.ForKind(g.Kind)
		if err != nil {
			return err
		}
		outcome, err := rules.DrawOutcome(s.roller)
		if err != nil {
			return fmt.Errorf("failed to roll dice: %w", err)
		}

		bets := map[int64]*entities.SessionBet{
			userID: {UserID: userID, Stakes: maps.Clone(g.Stakes)},
		}
		settlement := game.Settle(rules, bets, outcome, 0)
		line := settlement.Lines[0]

		balance, err := s.wallet.Balance(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if credit := line.Credit(); credit > 0 {
			balance, err = s.wallet.Credit(ctx, guildID, userID, credit, interfaces.LedgerChange{
				Type:     entities.TransactionTypeSoloPayout,
				Metadata: map[string]any{"game_id": g.ID, "kind": string(g.Kind), "dice": outcome.Dice},
			})
			if err != nil {
				return err
			}
		}

		g.Stakes = make(map[entities.Side]int64)
		if g.Kind == entities.GameKindDiceSum {
			g.Finished = true
		}
		result = &SoloResult{Outcome: outcome, Line: line, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Game, _ = s.Get(guildID, userID)
	return result, nil
}

// Clear refunds the open stakes and keeps the game
func (s *SoloService) Clear(ctx context.Context, guildID, userID int64, gameID string) (*SoloGame, error) {
	return s.withGame(guildID, userID, gameID, func(g *SoloGame) error {
		if _, err := s.refund(ctx, g); err != nil {
			return err
		}
		g.Stakes = make(map[entities.Side]int64)
		return nil
	})
}

// Continue reopens a finished DiceSum game under a new ID. AnimalDice games carry on as they are.
func (s *SoloService) Continue(ctx context.Context, guildID, userID int64, gameID string) (*SoloGame, error) {
	return s.withGame(guildID, userID, gameID, func(g *SoloGame) error {
		if g.Kind == entities.GameKindDiceSum {
			g.ID = newGameID()
			g.Finished = false
		}
		return nil
	})
}

// Quit refunds open stakes and ends the game
func (s *SoloService) Quit(ctx context.Context, guildID, userID int64, gameID string) (int64, error) {
	key := utils.AccountKey{GuildID: guildID, UserID: userID}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	g := s.lookup(key)
	if g == nil || g.ID != gameID {
		return 0, game.ErrGameExpired
	}
	refunded, err := s.refund(ctx, g)
	if err != nil {
		return 0, err
	}
	s.remove(key)
	return refunded, nil
}

// ExpireIdle ends games untouched for longer than SoloIdleTimeout and refunds their stakes
func (s *SoloService) ExpireIdle(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	var idle []utils.AccountKey
	for key, g := range s.games {
		if now.Sub(g.LastActive) > SoloIdleTimeout {
			idle = append(idle, key)
		}
	}
	s.mu.Unlock()

	var (
		expired int
		errs    []error
	)
	for _, key := range idle {
		s.locks.Lock(key)
		g := s.lookup(key)
		if g != nil && now.Sub(g.LastActive) > SoloIdleTimeout {
			if _, err := s.refund(ctx, g); err != nil {
				errs = append(errs, err)
			} else {
				s.remove(key)
				expired++
			}
		}
		s.locks.Unlock(key)
	}
	return expired, errors.Join(errs...)
}

// Len is the number of open games
func (s *SoloService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *SoloService) withGame(guildID, userID int64, gameID string, fn func(*SoloGame) error) (*SoloGame, error) {
	key := utils.AccountKey{GuildID: guildID, UserID: userID}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	g := s.lookup(key)
	if g == nil || g.ID != gameID {
		return nil, game.ErrGameExpired
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	g.LastActive = s.now()
	return g.clone(), nil
}

func (s *SoloService) refund(ctx context.Context, g *SoloGame) (int64, error) {
	staked := g.Staked()
	if staked == 0 {
		return 0, nil
	}
	if _, err := s.wallet.Credit(ctx, g.GuildID, g.UserID, staked, interfaces.LedgerChange{
		Type:     entities.TransactionTypeSoloRefund,
		Metadata: map[string]any{"game_id": g.ID, "kind": string(g.Kind)},
	}); err != nil {
		return 0, err
	}
	g.Stakes = make(map[entities.Side]int64)
	return staked, nil
}

func (s *SoloService) lookup(key utils.AccountKey) *SoloGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[key]
}

func (s *SoloService) store(key utils.AccountKey, g *SoloGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[key] = g
}

func (s *SoloService) remove(key utils.AccountKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, key)
}
