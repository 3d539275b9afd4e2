package models

import (
	"fmt"
	"math/rand"
)

// MisplayParams configures the error/wild-pitch modifier evaluated before
// each plate appearance.
type MisplayParams struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Probability per plate appearance of an error, wild pitch, or passed
	// ball that advances every runner one base.
	RatePerPA float64 `json:"rate_per_pa" yaml:"rate_per_pa"`
}

// DefaultMisplayParams returns the league-typical misplay rate.
func DefaultMisplayParams() MisplayParams {
	return MisplayParams{Enabled: true, RatePerPA: 0.015}
}

// Validate checks the misplay rate.
func (p MisplayParams) Validate() error {
	if p.RatePerPA < 0 || p.RatePerPA > 1 {
		return fmt.Errorf("misplay rate %.3f out of [0,1]", p.RatePerPA)
	}
	return nil
}

// CheckMisplay resolves whether a defensive misplay advances the runners
// before the pitch. On a misplay every runner moves up one base, the runner
// from third scores, no out is recorded, and the batter stays at the plate.
func CheckMisplay(bases BaseState, p MisplayParams, rng *rand.Rand) (BaseState, int, bool) {
	if !p.Enabled {
		return bases, 0, false
	}
	if rng.Float64() >= p.RatePerPA {
		return bases, 0, false
	}
	if bases.IsEmpty() {
		// Nobody to advance; the misplay is a non-event.
		return bases, 0, false
	}

	runs := 0
	after := EmptyBases()
	if bases.Third != NoRunner {
		runs = 1
	}
	after.Third = bases.Second
	after.Second = bases.First
	return after, runs, true
}
