package pnl

import "errors"

// The engine distinguishes two failure families. Both fail fast at the call
// that triggers them and leave the engine state untouched.
var (
	// ErrConfiguration covers engine misuse: an unknown matching strategy,
	// processing fills twice on one engine, or seeding an initial position
	// after processing has started.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation covers bad input values reaching the engine: a
	// non-positive price, quantity or average price. The normalizer is
	// expected to reject these upstream, but the engine never computes
	// PnL from garbage.
	ErrValidation = errors.New("validation error")
)
