package models

import "fmt"

// Outcome is the result of a single plate appearance.
type Outcome int

// Plate appearance outcomes in sampling order. The order is fixed: the
// sampler walks this enumeration when inverting the CDF, so reordering
// would change every seeded sequence.
const (
	OutcomeOut Outcome = iota
	OutcomeStrikeout
	OutcomeWalk
	OutcomeSingle
	OutcomeDouble
	OutcomeTriple
	OutcomeHomeRun

	NumOutcomes int = iota
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOut:
		return "out"
	case OutcomeStrikeout:
		return "strikeout"
	case OutcomeWalk:
		return "walk"
	case OutcomeSingle:
		return "single"
	case OutcomeDouble:
		return "double"
	case OutcomeTriple:
		return "triple"
	case OutcomeHomeRun:
		return "home_run"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// IsHit reports whether the outcome puts the batter on base via a hit.
func (o Outcome) IsHit() bool {
	return o >= OutcomeSingle && o <= OutcomeHomeRun
}

// IsOut reports whether the outcome records an out against the batter.
func (o Outcome) IsOut() bool {
	return o == OutcomeOut || o == OutcomeStrikeout
}

// HitType indexes the conditional hit-type distribution (given that a hit
// occurred).
type HitType int

const (
	HitSingle HitType = iota
	HitDouble
	HitTriple
	HitHomeRun

	NumHitTypes int = iota
)

func (h HitType) String() string {
	switch h {
	case HitSingle:
		return "1B"
	case HitDouble:
		return "2B"
	case HitTriple:
		return "3B"
	case HitHomeRun:
		return "HR"
	default:
		return fmt.Sprintf("HitType(%d)", int(h))
	}
}

// TotalBases returns the bases awarded to the batter for the hit type.
func (h HitType) TotalBases() int {
	return int(h) + 1
}

// Outcome converts a hit type to its plate appearance outcome.
func (h HitType) Outcome() Outcome {
	return OutcomeSingle + Outcome(h)
}
