package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSelfTransfer       = errors.New("you cannot transfer to yourself")
	ErrBelowMinimum       = errors.New("amount is below the minimum")
	ErrTopupNotFound      = errors.New("topup request not found")
	ErrTopupExpired       = errors.New("topup request has expired")
	ErrPaymentNotReceived = errors.New("no matching bank transfer has been received yet")
	ErrRingNotFound       = errors.New("ring not found")
	ErrRingExists         = errors.New("a ring with that name already exists")
	ErrSelfProposal       = errors.New("you cannot propose to yourself")
	ErrAlreadyMarried     = errors.New("you are already married")
	ErrTargetMarried      = errors.New("that member is already married")
	ErrNotMarried         = errors.New("you are not married")
	ErrProposalPending    = errors.New("that member already has a pending proposal")
	ErrProposalExpired    = errors.New("the proposal has expired")
	ErrOnCooldown         = errors.New("action is on cooldown")
	ErrNoStake            = errors.New("place a bet before rolling")
)

// CooldownError carries how long until the action is available again
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrOnCooldown, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error {
	return ErrOnCooldown
}
