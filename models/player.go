package models

import (
	"fmt"
)

// HitCounts are raw per-hit-type season counts. When present and large
// enough they drive the hit-type distribution directly instead of the
// ISO-based estimate.
type HitCounts struct {
	Singles  int `json:"singles" yaml:"singles"`
	Doubles  int `json:"doubles" yaml:"doubles"`
	Triples  int `json:"triples" yaml:"triples"`
	HomeRuns int `json:"home_runs" yaml:"home_runs"`
}

// Total returns the total number of hits.
func (hc HitCounts) Total() int {
	return hc.Singles + hc.Doubles + hc.Triples + hc.HomeRuns
}

// StealCounts are raw stolen base attempt results for a season.
type StealCounts struct {
	Stolen int `json:"sb" yaml:"sb"`
	Caught int `json:"cs" yaml:"cs"`
}

// Attempts returns the total number of steal attempts.
func (sc StealCounts) Attempts() int { return sc.Stolen + sc.Caught }

// PlayerStats is the raw input for one roster slot, as supplied by the
// data-acquisition collaborator. BA, OBP and SLG are required; everything
// else is optional.
type PlayerStats struct {
	Name string  `json:"name"`
	BA   float64 `json:"ba"`
	OBP  float64 `json:"obp"`
	SLG  float64 `json:"slg"`
	// ISO is derived as SLG-BA when nil.
	ISO *float64 `json:"iso,omitempty"`
	PA  int      `json:"pa"`

	Hits          *HitCounts   `json:"hits,omitempty"`
	Steals        *StealCounts `json:"steals,omitempty"`
	StrikeoutRate *float64     `json:"k_rate,omitempty"`
	Position      string       `json:"position,omitempty"`
}

// PlayerProfile is an immutable calibrated player record. It is built once
// at roster-build time and shared read-only across every simulated plate
// appearance, so sharing it between goroutines is safe.
type PlayerProfile struct {
	Name     string            `json:"name"`
	Position *FieldingPosition `json:"position,omitempty"`

	BA  float64 `json:"ba"`
	OBP float64 `json:"obp"`
	SLG float64 `json:"slg"`
	ISO float64 `json:"iso"`
	PA  int     `json:"pa"`

	Steals *StealCounts `json:"steals,omitempty"`

	OutcomeProbs [NumOutcomes]float64 `json:"outcome_probs"`
	HitTypeDist  HitProfile           `json:"hit_type_dist"`
}

// NewPlayerProfile calibrates a profile from raw statistics. The optional
// raw-count branching is resolved exactly once here; the resulting
// distributions are validated and never mutated afterward.
func NewPlayerProfile(stats PlayerStats, params CalibrationParams) (*PlayerProfile, error) {
	if stats.Name == "" {
		return nil, &CalibrationError{Player: "(unnamed)", Reason: fmt.Errorf("player name required")}
	}
	if stats.BA < 0 || stats.BA > 1 {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("ba %.3f out of [0,1]", stats.BA)}
	}
	if stats.OBP < 0 || stats.OBP > 1 {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("obp %.3f out of [0,1]", stats.OBP)}
	}
	if stats.SLG < 0 {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("slg %.3f negative", stats.SLG)}
	}
	if stats.OBP < stats.BA {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("obp %.3f below ba %.3f", stats.OBP, stats.BA)}
	}
	if stats.StrikeoutRate != nil && (*stats.StrikeoutRate < 0 || *stats.StrikeoutRate > 1) {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("strikeout rate %.3f out of [0,1]", *stats.StrikeoutRate)}
	}

	iso := stats.SLG - stats.BA
	if stats.ISO != nil {
		iso = *stats.ISO
	}

	var position *FieldingPosition
	if stats.Position != "" {
		p, err := ParsePosition(stats.Position)
		if err != nil {
			return nil, &CalibrationError{Player: stats.Name, Reason: err}
		}
		position = &p
	}

	dist := params.hitTypeDistribution(stats.Hits, iso)
	probs := params.outcomeProbabilities(stats.BA, stats.OBP, stats.StrikeoutRate, dist)

	// The invariant is checked, not clamped: a violation means the input
	// statistics are inconsistent and the roster build must fail.
	if err := validateDistribution(dist[:]); err != nil {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("hit type distribution: %w", err)}
	}
	if err := validateDistribution(probs[:]); err != nil {
		return nil, &CalibrationError{Player: stats.Name, Reason: fmt.Errorf("outcome distribution: %w", err)}
	}

	return &PlayerProfile{
		Name:         stats.Name,
		Position:     position,
		BA:           stats.BA,
		OBP:          stats.OBP,
		SLG:          stats.SLG,
		ISO:          iso,
		PA:           stats.PA,
		Steals:       stats.Steals,
		OutcomeProbs: probs,
		HitTypeDist:  dist,
	}, nil
}

// LineupSize is the number of batting order slots.
const LineupSize = 9

// Lineup is an ordered batting order of exactly nine calibrated profiles.
// The batting index is continuous across innings and games within a season.
type Lineup []*PlayerProfile

// NewLineup builds a lineup from calibrated profiles, enforcing the
// nine-player rule.
func NewLineup(players []*PlayerProfile) (Lineup, error) {
	if len(players) != LineupSize {
		return nil, fmt.Errorf("lineup must have exactly %d batters, got %d", LineupSize, len(players))
	}
	for i, p := range players {
		if p == nil {
			return nil, fmt.Errorf("lineup slot %d is empty", i+1)
		}
	}
	return Lineup(players), nil
}

// BuildLineup calibrates raw stats in batting order and assembles a lineup.
func BuildLineup(stats []PlayerStats, params CalibrationParams) (Lineup, error) {
	if len(stats) != LineupSize {
		return nil, fmt.Errorf("lineup must have exactly %d batters, got %d", LineupSize, len(stats))
	}
	profiles := make([]*PlayerProfile, 0, LineupSize)
	for _, s := range stats {
		p, err := NewPlayerProfile(s, params)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return NewLineup(profiles)
}
