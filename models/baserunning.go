package models

import (
	"fmt"
	"math/rand"
	"strings"
)

// NoRunner marks an empty base.
const NoRunner = -1

// BaseState tracks base occupancy as lineup indexes (0-8). The engine never
// mutates the referenced profile, so an index is all a base needs to carry.
type BaseState struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
}

// EmptyBases returns a base state with all bases open.
func EmptyBases() BaseState {
	return BaseState{First: NoRunner, Second: NoRunner, Third: NoRunner}
}

// RunnerCount returns the number of occupied bases.
func (bs BaseState) RunnerCount() int {
	n := 0
	if bs.First != NoRunner {
		n++
	}
	if bs.Second != NoRunner {
		n++
	}
	if bs.Third != NoRunner {
		n++
	}
	return n
}

// IsEmpty reports whether all bases are open.
func (bs BaseState) IsEmpty() bool { return bs.RunnerCount() == 0 }

// Loaded reports whether all three bases are occupied.
func (bs BaseState) Loaded() bool { return bs.RunnerCount() == 3 }

// Valid reports whether no lineup index occupies two bases at once.
func (bs BaseState) Valid() bool {
	if bs.First != NoRunner && (bs.First == bs.Second || bs.First == bs.Third) {
		return false
	}
	if bs.Second != NoRunner && bs.Second == bs.Third {
		return false
	}
	return true
}

func (bs BaseState) String() string {
	var occupied []string
	if bs.First != NoRunner {
		occupied = append(occupied, "1st")
	}
	if bs.Second != NoRunner {
		occupied = append(occupied, "2nd")
	}
	if bs.Third != NoRunner {
		occupied = append(occupied, "3rd")
	}
	if len(occupied) == 0 {
		return "bases empty"
	}
	return strings.Join(occupied, ", ")
}

// AdvanceRules configures runner advancement. With Probabilistic false the
// engine uses conservative station-to-station movement; with it true the
// aggression probabilities gate extra-base advances.
type AdvanceRules struct {
	Probabilistic bool `json:"probabilistic" yaml:"probabilistic"`

	// Runner on first reaches third (instead of second) on a single.
	SingleFirstToThird float64 `json:"single_first_to_third" yaml:"single_first_to_third"`
	// Runner on second scores (instead of stopping at third) on a double.
	DoubleSecondScores float64 `json:"double_second_scores" yaml:"double_second_scores"`
	// Runner on first scores (instead of stopping at third) on a double.
	DoubleFirstScores float64 `json:"double_first_scores" yaml:"double_first_scores"`
}

// DefaultAdvanceRules returns league-typical aggression rates.
func DefaultAdvanceRules() AdvanceRules {
	return AdvanceRules{
		Probabilistic:      true,
		SingleFirstToThird: 0.28,
		DoubleSecondScores: 0.98,
		DoubleFirstScores:  0.60,
	}
}

// Validate checks that the aggression probabilities are proper.
func (r AdvanceRules) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"single_first_to_third", r.SingleFirstToThird},
		{"double_second_scores", r.DoubleSecondScores},
		{"double_first_scores", r.DoubleFirstScores},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("advance rule %s %.3f out of [0,1]", p.name, p.value)
		}
	}
	return nil
}

// AdvanceRunners applies a plate appearance outcome to the base state and
// returns the new state plus runs scored. Occupancy conflicts are resolved
// third base first, then second, then first: a trailing runner claiming an
// occupied base pushes the lead runner home rather than passing him.
//
// The rng is consulted only for the probabilistic branches; in deterministic
// mode the function is pure.
func AdvanceRunners(outcome Outcome, bases BaseState, batter int, rules AdvanceRules, rng *rand.Rand) (BaseState, int) {
	runs := 0
	after := EmptyBases()

	switch outcome {
	case OutcomeOut, OutcomeStrikeout:
		// Runners hold.
		return bases, 0

	case OutcomeWalk:
		after = bases
		if bases.First != NoRunner {
			if bases.Second != NoRunner {
				if bases.Third != NoRunner {
					runs++
				}
				after.Third = bases.Second
			}
			after.Second = bases.First
		}
		after.First = batter

	case OutcomeSingle:
		if bases.Third != NoRunner {
			runs++
		}
		// Runner on second takes third.
		after.Third = bases.Second
		if bases.First != NoRunner {
			if rules.Probabilistic && rng.Float64() < rules.SingleFirstToThird && after.Third == NoRunner {
				after.Third = bases.First
			} else {
				after.Second = bases.First
			}
		}
		after.First = batter

	case OutcomeDouble:
		if bases.Third != NoRunner {
			runs++
		}
		if bases.Second != NoRunner {
			if rules.Probabilistic && rng.Float64() >= rules.DoubleSecondScores {
				after.Third = bases.Second
			} else {
				runs++
			}
		}
		if bases.First != NoRunner {
			if rules.Probabilistic && rng.Float64() < rules.DoubleFirstScores {
				runs++
			} else if after.Third != NoRunner {
				// Third is held by the runner from second; the trailing
				// runner takes the base and the lead runner scores.
				runs++
				after.Third = bases.First
			} else {
				after.Third = bases.First
			}
		}
		after.Second = batter

	case OutcomeTriple:
		runs += bases.RunnerCount()
		after.Third = batter

	case OutcomeHomeRun:
		runs += bases.RunnerCount() + 1

	default:
		// Unknown outcomes cannot occur with a closed enum; treat as a
		// held-runner out so state stays consistent.
		return bases, 0
	}

	return after, runs
}
