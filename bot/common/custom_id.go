package common

import (
	"fmt"
	"strconv"
	"strings"
)

const customIDSeparator = "_"

// Custom ID prefixes used to route component interactions
const (
	PrefixSession  = "session"
	PrefixSolo     = "solo"
	PrefixTopup    = "topup"
	PrefixMarriage = "marry"
)

// Discord rejects custom IDs longer than this
const maxCustomIDLength = 100

// CustomID is a parsed component ID of the form feature_action_arg1_arg2
type CustomID struct {
	Feature string
	Action  string
	Args    []string
}

// BuildCustomID joins a feature, action and arguments into a component ID.
// Parts must not contain the separator.
func BuildCustomID(feature, action string, args ...string) string {
	parts := append([]string{feature, action}, args...)
	return strings.Join(parts, customIDSeparator)
}

// ParseCustomID splits a component ID built by BuildCustomID
func ParseCustomID(raw string) (CustomID, error) {
	if len(raw) > maxCustomIDLength {
		return CustomID{}, fmt.Errorf("custom ID too long: %d", len(raw))
	}
	parts := strings.Split(raw, customIDSeparator)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return CustomID{}, fmt.Errorf("malformed custom ID %q", raw)
	}
	return CustomID{Feature: parts[0], Action: parts[1], Args: parts[2:]}, nil
}

// HasPrefix reports whether raw belongs to the given feature
func HasPrefix(raw, feature string) bool {
	return strings.HasPrefix(raw, feature+customIDSeparator)
}

// Arg returns the n-th argument or an error when it is missing
func (c CustomID) Arg(n int) (string, error) {
	if n < 0 || n >= len(c.Args) {
		return "", fmt.Errorf("custom ID %s_%s has no argument %d", c.Feature, c.Action, n)
	}
	return c.Args[n], nil
}

// IntArg parses the n-th argument as an int64
func (c CustomID) IntArg(n int) (int64, error) {
	raw, err := c.Arg(n)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("custom ID argument %d is not a number: %w", n, err)
	}
	return value, nil
}
