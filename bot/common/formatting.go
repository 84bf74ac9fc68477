package common

import (
	"fmt"
	"strings"
	"time"

	"dicehall/domain/utils"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	return utils.FormatAmount(balance)
}

// FormatCoins formats an amount with the currency suffix, e.g. "12,500 coins"
func FormatCoins(amount int64) string {
	return fmt.Sprintf("%s %s", utils.FormatAmount(amount), Currency)
}

// FormatChip formats a bet chip for a button label, e.g. 5K
func FormatChip(amount int64) string {
	return utils.FormatShortNotation(amount)
}

// FormatTransferResult formats the public message for a completed transfer
func FormatTransferResult(amount int64, fromID, toID int64) string {
	return fmt.Sprintf("💸 %s sent **%s** to %s", GetUserMention(fromID), FormatCoins(amount), GetUserMention(toID))
}

// FormatDuration renders a duration the way players read it, e.g. "14m 5s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}

// TruncateName shortens a name to max runes, marking the cut with an ellipsis
func TruncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
