package game

import (
	"sort"

	"dicehall/domain/entities"
)

// PayoutLine is one player's result for a settled round
type PayoutLine struct {
	UserID       int64
	Stakes       map[entities.Side]int64
	Staked       int64
	Returned     int64
	JackpotShare int64
	// Net is the change against the balance before the round, stakes included
	Net int64
	Won bool
}

// Credit is what the ledger must add back after settlement
func (l PayoutLine) Credit() int64 {
	return l.Returned + l.JackpotShare
}

// Settlement is the deterministic result of one round
type Settlement struct {
	Outcome      entities.Outcome
	Lines        []PayoutLine
	Winners      int
	TotalStaked  int64
	TotalPaid    int64
	JackpotPaid  int64
	JackpotReset bool
}

// JackpotContribution is floor(amount * 0.0005)
func JackpotContribution(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return amount * 5 / 10000
}

// Settle computes every player's return for an outcome. It has no side effects.
func Settle(rules Rules, bets map[int64]*entities.SessionBet, outcome entities.Outcome, jackpot int64) Settlement {
	settlement := Settlement{Outcome: outcome}

	userIDs := make([]int64, 0, len(bets))
	for userID := range bets {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	for _, userID := range userIDs {
		bet := bets[userID]
		if bet == nil {
			continue
		}

		line := PayoutLine{UserID: userID, Stakes: bet.Clone().Stakes}
		for _, side := range bet.Sides() {
			stake := bet.Stakes[side]
			line.Staked += stake
			line.Returned += rules.ComputePayout(stake, rules.ResolveSide(outcome, side))
		}
		line.Won = line.Returned > 0
		if line.Won {
			settlement.Winners++
		}

		settlement.TotalStaked += line.Staked
		settlement.Lines = append(settlement.Lines, line)
	}

	if rules.JackpotEnabled() && outcome.Triple {
		settlement.JackpotReset = true
		if settlement.Winners > 0 && jackpot > 0 {
			share := jackpot / int64(settlement.Winners)
			for i := range settlement.Lines {
				if settlement.Lines[i].Won {
					settlement.Lines[i].JackpotShare = share
					settlement.JackpotPaid += share
				}
			}
		}
	}

	for i := range settlement.Lines {
		line := &settlement.Lines[i]
		line.Net = line.Credit() - line.Staked
		settlement.TotalPaid += line.Credit()
	}

	return settlement
}
