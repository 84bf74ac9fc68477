package utils

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a currency amount with thousands separators, e.g. 12,500
func FormatAmount(value int64) string {
	return amountPrinter.Sprintf("%d", value)
}

// FormatSigned is FormatAmount with an explicit plus sign for gains
func FormatSigned(value int64) string {
	if value > 0 {
		return "+" + FormatAmount(value)
	}
	return FormatAmount(value)
}

// FormatShortNotation formats a number using short notation (e.g., 50k instead of 50000)
func FormatShortNotation(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, float64(absValue)/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%dK", sign, absValue/1_000)
	case absValue >= 1_000 && absValue%1_000 == 0:
		return fmt.Sprintf("%s%dK", sign, absValue/1_000)
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fK", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}
