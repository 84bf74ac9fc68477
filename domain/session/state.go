package session

import (
	"context"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	log "github.com/sirupsen/logrus"
)

// Phase is where a session is in its round loop
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseResolving  Phase = "resolving"
	PhaseCooldown   Phase = "cooldown"
)

// Timing is the round clock, counted in scheduler ticks
type Timing struct {
	RoundDuration     int
	BoardRefreshEvery int
	FinalCountdown    int
	CheckpointEvery   int
	CooldownDuration  int
}

// DefaultTiming is a 60 tick round followed by a 5 tick cooldown
func DefaultTiming() Timing {
	return Timing{
		RoundDuration:     60,
		BoardRefreshEvery: 10,
		FinalCountdown:    10,
		CheckpointEvery:   10,
		CooldownDuration:  5,
	}
}

// Dependencies are shared by every session of a registry
type Dependencies struct {
	Wallet    *utils.Wallet
	Store     Store
	Jackpots  *JackpotPool
	Presenter Presenter
	Identity  IdentityResolver
	Roller    dice.Roller
	Publisher interfaces.EventPublisher
	Observer  Observer
	Timing    Timing
}

type discardPublisher struct{}

func (discardPublisher) Publish(events.Event) error { return nil }

func (d Dependencies) withDefaults() Dependencies {
	defaults := DefaultTiming()
	if d.Timing.RoundDuration <= 0 {
		d.Timing.RoundDuration = defaults.RoundDuration
	}
	if d.Timing.BoardRefreshEvery <= 0 {
		d.Timing.BoardRefreshEvery = defaults.BoardRefreshEvery
	}
	if d.Timing.FinalCountdown < 0 {
		d.Timing.FinalCountdown = 0
	}
	if d.Timing.CheckpointEvery <= 0 {
		d.Timing.CheckpointEvery = defaults.CheckpointEvery
	}
	if d.Timing.CooldownDuration <= 0 {
		d.Timing.CooldownDuration = defaults.CooldownDuration
	}
	if d.Roller == nil {
		d.Roller = dice.DefaultRoller
	}
	if d.Publisher == nil {
		d.Publisher = discardPublisher{}
	}
	if d.Observer == nil {
		d.Observer = NoopObserver{}
	}
	return d
}

// BetReceipt acknowledges a committed stake
type BetReceipt struct {
	Round int
	Side  entities.Side
	// Amount is what this commit debited
	Amount int64
	// SideStake is the user's cumulative stake on Side this round
	SideStake int64
	Balance   int64
}

// Info is a read-only summary of a live session
type Info struct {
	ChannelID   int64             `json:"channel_id"`
	GuildID     int64             `json:"guild_id"`
	Kind        entities.GameKind `json:"kind"`
	Round       int               `json:"round"`
	Phase       Phase             `json:"phase"`
	Remaining   int               `json:"remaining"`
	Players     int               `json:"players"`
	TotalStaked int64             `json:"total_staked"`
}

// state is owned by exactly one actor goroutine
type state struct {
	deps  *Dependencies
	rules game.Rules

	channelID int64
	guildID   int64
	round     int
	phase     Phase
	remaining int
	cooldown  int

	bets       map[int64]*entities.SessionBet
	pending    map[int64]entities.PendingSelection
	messageRef string
}

func newState(deps *Dependencies, rules game.Rules, channelID, guildID int64, round int) *state {
	if round < 1 {
		round = 1
	}
	return &state{
		deps:      deps,
		rules:     rules,
		channelID: channelID,
		guildID:   guildID,
		round:     round,
		phase:     PhaseCollecting,
		remaining: deps.Timing.RoundDuration,
		bets:      make(map[int64]*entities.SessionBet),
		pending:   make(map[int64]entities.PendingSelection),
	}
}

func (s *state) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"channelID": s.channelID,
		"guildID":   s.guildID,
		"round":     s.round,
		"gameKind":  s.rules.Kind(),
	})
}

// begin opens the first Collecting phase of a started or restored session
func (s *state) begin(ctx context.Context, restored bool) {
	if restored {
		if err := s.deps.Presenter.AnnounceRestore(ctx, s.snapshot()); err != nil {
			s.logger().WithError(err).Warn("Failed to announce restored session")
		}
	}
	s.persist(ctx)
	s.showBoard(ctx)
}

func (s *state) tick(ctx context.Context) {
	timing := s.deps.Timing

	switch s.phase {
	case PhaseCollecting:
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.resolve(ctx)
			return
		}
		if s.remaining%timing.CheckpointEvery == 0 {
			s.persist(ctx)
		}
		if s.remaining%timing.BoardRefreshEvery == 0 || s.remaining <= timing.FinalCountdown {
			s.showBoard(ctx)
		}
	case PhaseResolving:
		// the previous draw failed
		s.resolve(ctx)
	case PhaseCooldown:
		s.cooldown--
		if s.cooldown <= 0 {
			s.nextRound(ctx)
		}
	}
}

func (s *state) resolve(ctx context.Context) {
	s.phase = PhaseResolving

	outcome, err := s.rules.DrawOutcome(s.deps.Roller)
	if err != nil {
		s.logger().WithError(err).Error("Failed to draw outcome, retrying next tick")
		return
	}

	var jackpot int64
	jackpotUnknown := false
	if s.rules.JackpotEnabled() {
		if outcome.Triple {
			jackpot, err = s.deps.Jackpots.Drain(ctx, s.guildID)
		} else {
			jackpot, err = s.deps.Jackpots.Balance(ctx, s.guildID)
		}
		if err != nil {
			// the pool stays untouched and nothing is paid from it this round
			s.logger().WithError(err).WithField("triple", outcome.Triple).Error("Failed to read jackpot, settling without it")
			jackpot = 0
			jackpotUnknown = true
		}
	}

	settlement := game.Settle(s.rules, s.bets, outcome, jackpot)
	s.applyPayouts(ctx, settlement)

	remaining := jackpot
	if settlement.JackpotReset {
		remaining = 0
	}

	view := ResultView{
		ChannelID:      s.channelID,
		GuildID:        s.guildID,
		Kind:           s.rules.Kind(),
		Round:          s.round,
		Outcome:        outcome,
		Lines:          make([]ResultLine, 0, len(settlement.Lines)),
		JackpotPaid:    settlement.JackpotPaid,
		Jackpot:        remaining,
		JackpotUnknown: jackpotUnknown,
		MessageRef:     s.messageRef,
	}
	for _, line := range settlement.Lines {
		view.Lines = append(view.Lines, ResultLine{PayoutLine: line, DisplayName: s.displayName(ctx, line.UserID)})
	}
	if err := s.deps.Presenter.ShowResult(ctx, view); err != nil {
		s.logger().WithError(err).Warn("Failed to show round result")
	}

	s.deps.Observer.RoundResolved(s.rules.Kind(), settlement)
	if err := s.deps.Publisher.Publish(events.RoundResolvedEvent{
		ChannelID:   s.channelID,
		GuildID:     s.guildID,
		Round:       s.round,
		Outcome:     outcome,
		Players:     len(settlement.Lines),
		Winners:     settlement.Winners,
		TotalStaked: settlement.TotalStaked,
		TotalPaid:   settlement.TotalPaid,
		JackpotPaid: settlement.JackpotPaid,
	}); err != nil {
		s.logger().WithError(err).Warn("Failed to publish round resolved event")
	}

	s.logger().WithFields(log.Fields{
		"dice":        outcome.Dice,
		"players":     len(settlement.Lines),
		"winners":     settlement.Winners,
		"totalStaked": settlement.TotalStaked,
		"totalPaid":   settlement.TotalPaid,
		"jackpotPaid": settlement.JackpotPaid,
	}).Info("Round resolved")

	s.phase = PhaseCooldown
	s.cooldown = s.deps.Timing.CooldownDuration
}

func (s *state) applyPayouts(ctx context.Context, settlement game.Settlement) {
	metadata := map[string]any{
		"channel_id": s.channelID,
		"round":      s.round,
		"game_kind":  string(s.rules.Kind()),
		"dice":       settlement.Outcome.Dice,
	}

	for _, line := range settlement.Lines {
		if line.Returned > 0 {
			change := interfaces.LedgerChange{Type: entities.TransactionTypeSessionPayout, Metadata: metadata}
			if _, err := s.deps.Wallet.Credit(ctx, s.guildID, line.UserID, line.Returned, change); err != nil {
				s.logger().WithError(err).WithFields(log.Fields{
					"userID": line.UserID,
					"amount": line.Returned,
				}).Error("Failed to credit round payout")
			}
		}
		if line.JackpotShare > 0 {
			change := interfaces.LedgerChange{Type: entities.TransactionTypeJackpotPayout, Metadata: metadata}
			if _, err := s.deps.Wallet.Credit(ctx, s.guildID, line.UserID, line.JackpotShare, change); err != nil {
				s.logger().WithError(err).WithFields(log.Fields{
					"userID": line.UserID,
					"amount": line.JackpotShare,
				}).Error("Failed to credit jackpot share")
			}
		}
	}
}

func (s *state) nextRound(ctx context.Context) {
	s.round++
	s.phase = PhaseCollecting
	s.remaining = s.deps.Timing.RoundDuration
	s.bets = make(map[int64]*entities.SessionBet)
	s.pending = make(map[int64]entities.PendingSelection)
	s.messageRef = ""

	s.persist(ctx)
	s.showBoard(ctx)
}

func (s *state) persist(ctx context.Context) {
	snapshot := s.snapshot()
	if err := s.deps.Store.Save(ctx, &snapshot); err != nil {
		s.logger().WithError(err).Warn("Failed to checkpoint session")
	}
}

func (s *state) showBoard(ctx context.Context) {
	view := BoardView{
		ChannelID:  s.channelID,
		GuildID:    s.guildID,
		Kind:       s.rules.Kind(),
		Round:      s.round,
		Remaining:  s.remaining,
		Totals:     make(map[entities.Side]int64),
		Players:    len(s.bets),
		Sides:      s.rules.Sides(),
		Chips:      s.rules.Chips(),
		MessageRef: s.messageRef,
	}
	for _, bet := range s.bets {
		for side, amount := range bet.Stakes {
			view.Totals[side] += amount
		}
	}
	if s.rules.JackpotEnabled() {
		jackpot, err := s.deps.Jackpots.Balance(ctx, s.guildID)
		if err != nil {
			s.logger().WithError(err).Debug("Jackpot unavailable for board")
		}
		view.Jackpot = jackpot
	}

	ref, err := s.deps.Presenter.ShowBoard(ctx, view)
	if err != nil {
		s.logger().WithError(err).Debug("Board refresh failed")
		return
	}
	if ref != "" {
		s.messageRef = ref
	}
}

func (s *state) displayName(ctx context.Context, userID int64) string {
	if s.deps.Identity == nil {
		return PlaceholderName
	}
	name, err := s.deps.Identity.DisplayName(ctx, s.guildID, userID)
	if err != nil || name == "" {
		return PlaceholderName
	}
	return name
}

func (s *state) checkOpen(round int) error {
	if round != 0 && round != s.round {
		return game.ErrGameExpired
	}
	if s.phase != PhaseCollecting {
		return game.ErrBettingClosed
	}
	return nil
}

func (s *state) selectAmount(userID int64, round int, amount int64) error {
	if err := s.checkOpen(round); err != nil {
		return err
	}
	if amount <= 0 {
		return game.ErrInvalidAmount
	}
	s.pending[userID] = entities.PendingSelection{Amount: amount}
	return nil
}

// placeBet commits a stake. A zero amount uses the pending chip or DefaultStake.
func (s *state) placeBet(ctx context.Context, userID int64, round int, side entities.Side, amount int64) (*BetReceipt, error) {
	if err := s.checkOpen(round); err != nil {
		return nil, err
	}
	if _, err := s.rules.ParseSide(string(side)); err != nil {
		return nil, err
	}
	if amount == 0 {
		amount = game.DefaultStake
		if selection, ok := s.pending[userID]; ok && selection.Amount > 0 {
			amount = selection.Amount
		}
	}
	if amount < 0 {
		return nil, game.ErrInvalidAmount
	}

	existing := s.bets[userID]
	if err := s.rules.AcceptStake(existing, side); err != nil {
		return nil, err
	}

	change := interfaces.LedgerChange{
		Type: entities.TransactionTypeSessionBet,
		Metadata: map[string]any{
			"channel_id": s.channelID,
			"round":      s.round,
			"game_kind":  string(s.rules.Kind()),
			"side":       string(side),
		},
	}
	balance, err := s.deps.Wallet.Debit(ctx, s.guildID, userID, amount, change)
	if err != nil {
		return nil, err
	}

	if s.rules.JackpotEnabled() {
		if _, err := s.deps.Jackpots.Contribute(ctx, s.guildID, game.JackpotContribution(amount)); err != nil {
			s.logger().WithError(err).Warn("Failed to add jackpot contribution")
		}
	}

	if existing == nil {
		existing = entities.NewSessionBet(userID)
		s.bets[userID] = existing
	}
	existing.Stakes[side] += amount

	if s.rules.StickyAmount() {
		s.pending[userID] = entities.PendingSelection{Amount: amount}
	} else {
		delete(s.pending, userID)
	}

	s.deps.Observer.BetCommitted(s.rules.Kind(), amount)
	s.logger().WithFields(log.Fields{
		"userID": userID,
		"side":   side,
		"amount": amount,
	}).Debug("Bet committed")

	return &BetReceipt{
		Round:     s.round,
		Side:      side,
		Amount:    amount,
		SideStake: existing.Stakes[side],
		Balance:   balance,
	}, nil
}

func (s *state) snapshot() entities.SessionSnapshot {
	snapshot := entities.SessionSnapshot{
		ChannelID:  s.channelID,
		GuildID:    s.guildID,
		Kind:       s.rules.Kind(),
		Round:      s.round,
		Bets:       make(map[int64]*entities.SessionBet, len(s.bets)),
		Pending:    make(map[int64]entities.PendingSelection, len(s.pending)),
		MessageRef: s.messageRef,
		Active:     true,
		UpdatedAt:  time.Now().UTC(),
	}
	for userID, bet := range s.bets {
		snapshot.Bets[userID] = bet.Clone()
	}
	for userID, selection := range s.pending {
		snapshot.Pending[userID] = selection
	}
	return snapshot
}

func (s *state) info() Info {
	info := Info{
		ChannelID: s.channelID,
		GuildID:   s.guildID,
		Kind:      s.rules.Kind(),
		Round:     s.round,
		Phase:     s.phase,
		Remaining: s.remaining,
		Players:   len(s.bets),
	}
	if s.phase == PhaseCooldown {
		info.Remaining = s.cooldown
	}
	for _, bet := range s.bets {
		info.TotalStaked += bet.Total()
	}
	return info
}
