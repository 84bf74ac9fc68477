package common

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"dicehall/domain/game"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
	Context     any    // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether the error was caused by the user rather than the system
func (e *BotError) IsUserError() bool {
	return e.Err == nil || isExpected(e.Err)
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// expectedErrors are domain conditions whose message is safe to show as is
var expectedErrors = []error{
	game.ErrAlreadySessionActive,
	game.ErrNoActiveSession,
	game.ErrInsufficientBalance,
	game.ErrSideAlreadyCommitted,
	game.ErrGameExpired,
	game.ErrBettingClosed,
	game.ErrInvalidSide,
	game.ErrInvalidAmount,
	services.ErrSelfTransfer,
	services.ErrBelowMinimum,
	services.ErrTopupNotFound,
	services.ErrTopupExpired,
	services.ErrPaymentNotReceived,
	services.ErrRingNotFound,
	services.ErrRingExists,
	services.ErrSelfProposal,
	services.ErrAlreadyMarried,
	services.ErrTargetMarried,
	services.ErrNotMarried,
	services.ErrProposalPending,
	services.ErrProposalExpired,
	services.ErrOnCooldown,
	services.ErrNoStake,
}

func isExpected(err error) bool {
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// FromDomainError wraps err as a user error when it is an expected domain
// condition and as a system error otherwise
func FromDomainError(err error, logMessage string) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}
	if isExpected(err) {
		return &BotError{
			UserMessage: capitalize(err.Error()),
			LogMessage:  logMessage,
			Ephemeral:   true,
			Err:         err,
		}
	}
	return NewSystemError(err, logMessage)
}

func capitalize(message string) string {
	if message == "" {
		return message
	}
	runes := []rune(message)
	runes[0] = unicode.ToUpper(runes[0])
	message = string(runes)
	if !strings.HasSuffix(message, ".") && !strings.HasSuffix(message, "!") {
		message += "."
	}
	return message
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError processes a BotError and responds appropriately
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	fields := log.Fields{
		"user_id":     InteractionUserID(i),
		"interaction": InteractionName(i),
		"error":       err.Error(),
	}

	message := "Something went wrong. Please try again later."
	var botErr *BotError
	if errors.As(err, &botErr) {
		fields["user_message"] = botErr.UserMessage
		fields["context"] = botErr.Context
		message = botErr.UserMessage
		if botErr.IsUserError() {
			log.WithFields(fields).Debug(botErr.LogMessage)
		} else {
			log.WithFields(fields).Error(botErr.LogMessage)
		}
	} else {
		log.WithFields(fields).Error("Unexpected error in bot interaction")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
