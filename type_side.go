package pnl

import (
	"fmt"
	"strings"
)

// Side is the direction of an order or fill.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide parses a string into a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown side: %q", s)
	}
}

// Action is a single order state transition found in a raw order-event log.
type Action int

const (
	Sent Action = iota
	Placed
	Filled
	Cancelling
	Cancelled
)

func (a Action) String() string {
	switch a {
	case Sent:
		return "sent"
	case Placed:
		return "placed"
	case Filled:
		return "filled"
	case Cancelling:
		return "cancelling"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "sent":
		return Sent, nil
	case "placed":
		return Placed, nil
	case "filled":
		return Filled, nil
	case "cancelling":
		return Cancelling, nil
	case "cancelled":
		return Cancelled, nil
	default:
		return 0, fmt.Errorf("unknown action: %q", s)
	}
}
