package models

import (
	"fmt"
	"math/rand"
)

// StealParams configures stolen base attempt resolution between plate
// appearances.
type StealParams struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Minimum recorded attempts (SB+CS) before a player's own rates are
	// trusted.
	MinAttemptsForRate int `json:"min_attempts_for_rate" yaml:"min_attempts_for_rate"`
	// Global multiplier on per-player attempt rates.
	AttemptScale float64 `json:"attempt_scale" yaml:"attempt_scale"`
	// Fallback attempt rate per time on base when a player has no usable
	// attempt history.
	TeamAttemptRate float64 `json:"team_attempt_rate" yaml:"team_attempt_rate"`
	// Fallback success rate when a player has no steal data at all.
	DefaultSuccessRate float64 `json:"default_success_rate" yaml:"default_success_rate"`
}

// DefaultStealParams returns league-typical steal behavior.
func DefaultStealParams() StealParams {
	return StealParams{
		Enabled:            true,
		MinAttemptsForRate: 5,
		AttemptScale:       1.0,
		TeamAttemptRate:    0.05,
		DefaultSuccessRate: 0.75,
	}
}

// Validate checks the configured rates.
func (p StealParams) Validate() error {
	if p.MinAttemptsForRate < 0 {
		return fmt.Errorf("min attempts for rate cannot be negative")
	}
	if p.AttemptScale < 0 {
		return fmt.Errorf("attempt scale cannot be negative")
	}
	if p.TeamAttemptRate < 0 || p.TeamAttemptRate > 1 {
		return fmt.Errorf("team attempt rate %.3f out of [0,1]", p.TeamAttemptRate)
	}
	if p.DefaultSuccessRate < 0 || p.DefaultSuccessRate > 1 {
		return fmt.Errorf("default success rate %.3f out of [0,1]", p.DefaultSuccessRate)
	}
	return nil
}

// StealRates derives a runner's attempt and success rates. Players with
// enough recorded attempts use their own empirical rates; below the
// threshold the team attempt rate applies with whatever success history
// exists; with no data at all both fall back to league defaults.
func StealRates(runner *PlayerProfile, p StealParams) (attemptRate, successRate float64) {
	if runner.Steals == nil {
		return p.TeamAttemptRate, p.DefaultSuccessRate
	}

	attempts := runner.Steals.Attempts()
	if attempts < p.MinAttemptsForRate {
		success := p.DefaultSuccessRate
		if attempts > 0 {
			success = float64(runner.Steals.Stolen) / float64(attempts)
		}
		return p.TeamAttemptRate, success
	}

	// Attempts per time on base, approximated as hits plus walks.
	timesOnBase := runner.OBP * float64(runner.PA)
	attemptRate = p.TeamAttemptRate
	if timesOnBase > 0 {
		attemptRate = float64(attempts) / timesOnBase
	}
	attemptRate *= p.AttemptScale

	successRate = float64(runner.Steals.Stolen) / float64(attempts)
	return attemptRate, successRate
}

// StealResult describes what happened during the between-PA steal check.
type StealResult struct {
	Attempted bool
	Succeeded bool
	// Outs added by a caught stealing (0 or 1).
	Outs int
}

// CheckStealOpportunities resolves at most one steal attempt between plate
// appearances. Second base is checked before first (a steal of third is the
// more valuable attempt), and nobody runs with two outs. A caught runner is
// removed from the bases and adds an out.
func CheckStealOpportunities(bases BaseState, outs int, lineup Lineup, p StealParams, rng *rand.Rand) (BaseState, StealResult) {
	if !p.Enabled || outs >= 2 {
		return bases, StealResult{}
	}

	// Runner on second with third open.
	if bases.Second != NoRunner && bases.Third == NoRunner {
		runner := lineup[bases.Second]
		attemptRate, successRate := StealRates(runner, p)
		if rng.Float64() < attemptRate {
			after := bases
			after.Second = NoRunner
			if rng.Float64() < successRate {
				after.Third = bases.Second
				return after, StealResult{Attempted: true, Succeeded: true}
			}
			return after, StealResult{Attempted: true, Outs: 1}
		}
		return bases, StealResult{}
	}

	// Runner on first with second open.
	if bases.First != NoRunner && bases.Second == NoRunner {
		runner := lineup[bases.First]
		attemptRate, successRate := StealRates(runner, p)
		if rng.Float64() < attemptRate {
			after := bases
			after.First = NoRunner
			if rng.Float64() < successRate {
				after.Second = bases.First
				return after, StealResult{Attempted: true, Succeeded: true}
			}
			return after, StealResult{Attempted: true, Outs: 1}
		}
	}

	return bases, StealResult{}
}
