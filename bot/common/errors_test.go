package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"dicehall/domain/game"
	"dicehall/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		userMessage string
		userError   bool
	}{
		{
			name:        "session sentinel",
			err:         game.ErrAlreadySessionActive,
			userMessage: "A game session is already running in this channel.",
			userError:   true,
		},
		{
			name:        "wrapped insufficient balance",
			err:         fmt.Errorf("%w: you need at least 100 to play", game.ErrInsufficientBalance),
			userMessage: "Insufficient balance: you need at least 100 to play.",
			userError:   true,
		},
		{
			name:        "cooldown",
			err:         &services.CooldownError{Remaining: 90 * time.Second},
			userMessage: "Action is on cooldown, try again in 1m30s.",
			userError:   true,
		},
		{
			name:        "database failure",
			err:         errors.New("connection refused"),
			userMessage: "Something went wrong. Please try again later.",
			userError:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			botErr := FromDomainError(tt.err, "failed")
			require.NotNil(t, botErr)
			assert.Equal(t, tt.userMessage, botErr.UserMessage)
			assert.Equal(t, tt.userError, botErr.IsUserError())
			assert.True(t, errors.Is(botErr, tt.err))
			assert.True(t, botErr.Ephemeral)
		})
	}
}

func TestFromDomainError_KeepsBotError(t *testing.T) {
	t.Parallel()

	original := NewUserError("Pick a ring first.", "missing ring")
	wrapped := fmt.Errorf("propose: %w", original)

	assert.Same(t, original, FromDomainError(wrapped, "ignored"))
}

func TestBotError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "missing ring", NewUserError("Pick a ring first.", "missing ring").Error())
	assert.Equal(t, "load user: boom", NewSystemError(errors.New("boom"), "load user").Error())
}
