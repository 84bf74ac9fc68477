package game

import "errors"

// Expected, user-facing conditions. None of them change state.
var (
	ErrAlreadySessionActive = errors.New("a game session is already running in this channel")
	ErrNoActiveSession      = errors.New("no game session is running in this channel")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrSideAlreadyCommitted = errors.New("you already bet on the other side this round")
	ErrGameExpired          = errors.New("this game has expired")
	ErrBettingClosed        = errors.New("betting is closed for this round")
	ErrInvalidSide          = errors.New("invalid side")
	ErrInvalidAmount        = errors.New("bet amount must be positive")
)
