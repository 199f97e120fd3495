package pnl

import (
	"fmt"
	"strings"
)

// MatchingStrategy defines the order in which open lots are consumed when a
// fill offsets an existing position.
type MatchingStrategy int

const (
	// FIFO (First-In, First-Out) consumes the oldest open lot first.
	FIFO MatchingStrategy = iota
	// LIFO (Last-In, First-Out) consumes the most recently opened lot first.
	LIFO
)

func (m MatchingStrategy) String() string {
	switch m {
	case FIFO:
		return "FIFO"
	case LIFO:
		return "LIFO"
	default:
		return "unknown"
	}
}

// ParseMatchingStrategy parses a string into a MatchingStrategy.
// An unknown name is a configuration error.
func ParseMatchingStrategy(s string) (MatchingStrategy, error) {
	switch strings.ToUpper(s) {
	case "FIFO":
		return FIFO, nil
	case "LIFO":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("%w: unknown matching strategy %q (available: FIFO, LIFO)", ErrConfiguration, s)
	}
}
