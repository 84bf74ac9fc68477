package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShortNotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    int64
		expected string
	}{
		{name: "zero", value: 0, expected: "0"},
		{name: "small", value: 500, expected: "500"},
		{name: "round thousand", value: 1000, expected: "1K"},
		{name: "fractional thousand", value: 2500, expected: "2.5K"},
		{name: "ten thousand", value: 10000, expected: "10K"},
		{name: "millions", value: 1_500_000, expected: "1.50M"},
		{name: "negative", value: -5000, expected: "-5K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FormatShortNotation(tt.value))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "12,500", FormatAmount(12500))
	assert.Equal(t, "-1,000,000", FormatAmount(-1_000_000))
	assert.Equal(t, "+1,800", FormatSigned(1800))
	assert.Equal(t, "-2,000", FormatSigned(-2000))
}
