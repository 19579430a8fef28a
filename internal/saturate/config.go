// Package saturate drives equality saturation to (bounded) completion:
// repeatedly searching every rule against the whole e-graph, applying
// every match found, and rebuilding, until no rule fires or a budget
// runs out (spec §4.G "Saturation scheduler").
package saturate

import "time"

// Config bounds a saturation run. A zero value disables that particular
// limit (spec §4.G "iteration, node-count, and wall-clock budgets").
type Config struct {
	IterLimit int
	NodeLimit int
	TimeLimit time.Duration

	// MatchLimit bans a rule for the rest of the current and a growing
	// number of future iterations once it produces more than MatchLimit
	// matches in one iteration (spec §4.G "exponential-backoff rule
	// banning" — a rule that's still wildly productive is assumed to be
	// thrashing rather than converging).
	MatchLimit int

	// BanLength is the number of iterations a rule is banned for the
	// first time it is throttled; each subsequent ban doubles this.
	BanLength int
}

// DefaultConfig returns reasonable budgets for interactive use (the same
// order of magnitude the egg paper's examples use): unbounded node count,
// a one-second wall clock, and backoff tuned so a handful of saturating
// rules don't starve the rest.
func DefaultConfig() Config {
	return Config{
		IterLimit:  60,
		NodeLimit:  0,
		TimeLimit:  time.Second,
		MatchLimit: 1000,
		BanLength:  5,
	}
}
