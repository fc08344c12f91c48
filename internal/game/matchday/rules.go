// Package matchday implements the round state machine: allocation of
// matches, lifecycle transitions, the wager ledger and score accounting.
// Every function operates on a loaded *model.Document and leaves
// persistence to the caller.
package matchday

import "github.com/shopspring/decimal"

// Rules holds the tunable constants of the game.
type Rules struct {
	MinOdds            decimal.Decimal
	JollyQuota         int
	JollyPenalty       int64
	LossCharge         int64
	AllowStartedWagers bool
}

// DefaultRules returns the standard league rules.
func DefaultRules() Rules {
	return Rules{
		MinOdds:      decimal.RequireFromString("1.50"),
		JollyQuota:   3,
		JollyPenalty: 20,
		LossCharge:   5,
	}
}
