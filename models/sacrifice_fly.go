package models

import (
	"fmt"
	"math/rand"
)

// SacFlyParams configures sacrifice fly resolution on batted outs.
type SacFlyParams struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Fraction of ball-in-play outs that are fly balls deep enough to
	// score a tagging runner.
	FlyoutFraction float64 `json:"flyout_fraction" yaml:"flyout_fraction"`
}

// DefaultSacFlyParams returns the league-typical flyout share.
func DefaultSacFlyParams() SacFlyParams {
	return SacFlyParams{Enabled: true, FlyoutFraction: 0.35}
}

// Validate checks the flyout fraction.
func (p SacFlyParams) Validate() error {
	if p.FlyoutFraction < 0 || p.FlyoutFraction > 1 {
		return fmt.Errorf("flyout fraction %.3f out of [0,1]", p.FlyoutFraction)
	}
	return nil
}

// CheckSacrificeFly resolves whether a ball-in-play out scores the runner
// from third. Requires a runner on third and fewer than two outs; the out
// still counts either way.
func CheckSacrificeFly(bases BaseState, outs int, p SacFlyParams, rng *rand.Rand) (BaseState, int, bool) {
	if !p.Enabled || outs >= 2 || bases.Third == NoRunner {
		return bases, 0, false
	}

	if rng.Float64() >= p.FlyoutFraction {
		// Ground out; the runner holds.
		return bases, 0, false
	}

	after := bases
	after.Third = NoRunner
	return after, 1, true
}
