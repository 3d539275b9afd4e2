package models

import (
	"fmt"
	"math"
)

// ProbabilityTolerance is the maximum acceptable deviation of a categorical
// distribution's sum from 1.0.
const ProbabilityTolerance = 1e-6

// HitProfile is a conditional hit-type distribution indexed by HitType.
type HitProfile [NumHitTypes]float64

// CalibrationParams holds every constant used to convert a slash line into
// outcome probabilities. All fields are overridable via the constants file.
type CalibrationParams struct {
	// League average strikeout rate, used when a player has no recorded rate.
	DefaultStrikeoutRate float64 `json:"default_strikeout_rate" yaml:"default_strikeout_rate"`

	// ISO thresholds for the archetype interpolation fallback.
	ISOLow  float64 `json:"iso_low" yaml:"iso_low"`
	ISOHigh float64 `json:"iso_high" yaml:"iso_high"`
	// ISO distance above ISOHigh at which the power archetype is used unmodified.
	PowerBlendRange float64 `json:"power_blend_range" yaml:"power_blend_range"`

	// Bayesian smoothing of empirical hit counts.
	MinHitsForEmpirical int     `json:"min_hits_for_empirical" yaml:"min_hits_for_empirical"`
	PriorWeight         float64 `json:"prior_weight" yaml:"prior_weight"`

	// Named hit-profile archetypes and the league-average fallback.
	Contact       HitProfile `json:"contact_profile" yaml:"contact_profile"`
	Balanced      HitProfile `json:"balanced_profile" yaml:"balanced_profile"`
	Power         HitProfile `json:"power_profile" yaml:"power_profile"`
	LeagueAverage HitProfile `json:"league_average_profile" yaml:"league_average_profile"`
}

// DefaultCalibrationParams returns league-calibrated defaults.
func DefaultCalibrationParams() CalibrationParams {
	return CalibrationParams{
		DefaultStrikeoutRate: 0.220,
		ISOLow:               0.100,
		ISOHigh:              0.200,
		PowerBlendRange:      0.200,
		MinHitsForEmpirical:  100,
		PriorWeight:          100,
		Contact:              HitProfile{0.80, 0.15, 0.02, 0.03},
		Balanced:             HitProfile{0.70, 0.20, 0.02, 0.08},
		Power:                HitProfile{0.60, 0.20, 0.01, 0.19},
		LeagueAverage:        HitProfile{0.75, 0.18, 0.02, 0.05},
	}
}

// Validate checks that every configured distribution and rate is usable.
func (cp CalibrationParams) Validate() error {
	if cp.DefaultStrikeoutRate < 0 || cp.DefaultStrikeoutRate > 1 {
		return fmt.Errorf("default strikeout rate %.3f out of [0,1]", cp.DefaultStrikeoutRate)
	}
	if cp.ISOLow >= cp.ISOHigh {
		return fmt.Errorf("iso thresholds inverted: low %.3f >= high %.3f", cp.ISOLow, cp.ISOHigh)
	}
	if cp.PowerBlendRange <= 0 {
		return fmt.Errorf("power blend range must be positive, got %.3f", cp.PowerBlendRange)
	}
	if cp.MinHitsForEmpirical < 0 {
		return fmt.Errorf("min hits for empirical distribution cannot be negative")
	}
	if cp.PriorWeight < 0 {
		return fmt.Errorf("prior weight cannot be negative")
	}
	for _, named := range []struct {
		name    string
		profile HitProfile
	}{
		{"contact", cp.Contact},
		{"balanced", cp.Balanced},
		{"power", cp.Power},
		{"league_average", cp.LeagueAverage},
	} {
		if err := validateDistribution(named.profile[:]); err != nil {
			return fmt.Errorf("%s hit profile: %w", named.name, err)
		}
	}
	return nil
}

// CalibrationError reports input statistics that produced an invalid
// distribution. It is fatal: the roster build fails before any simulation.
type CalibrationError struct {
	Player string
	Reason error
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("calibrating %s: %v", e.Player, e.Reason)
}

func (e *CalibrationError) Unwrap() error { return e.Reason }

// hitTypeDistribution derives the conditional hit-type distribution for a
// player. Empirical counts are used directly above the minimum-hits
// threshold, blended with the league average below it, and replaced by
// ISO-based archetype interpolation when counts are absent.
func (cp CalibrationParams) hitTypeDistribution(counts *HitCounts, iso float64) HitProfile {
	if counts != nil {
		total := counts.Total()
		if total == 0 {
			return cp.LeagueAverage
		}
		empirical := HitProfile{
			float64(counts.Singles) / float64(total),
			float64(counts.Doubles) / float64(total),
			float64(counts.Triples) / float64(total),
			float64(counts.HomeRuns) / float64(total),
		}
		if total >= cp.MinHitsForEmpirical {
			return empirical
		}
		// Bayesian smoothing: the league average acts as a prior with an
		// equivalent sample size of PriorWeight hits.
		var smoothed HitProfile
		w := float64(total)
		for i := range smoothed {
			smoothed[i] = (cp.LeagueAverage[i]*cp.PriorWeight + empirical[i]*w) / (cp.PriorWeight + w)
		}
		return smoothed
	}

	// No counts: interpolate between archetypes on isolated power.
	if iso < cp.ISOLow {
		return cp.Contact
	}
	if iso < cp.ISOHigh {
		w := (iso - cp.ISOLow) / (cp.ISOHigh - cp.ISOLow)
		return blendProfiles(cp.Contact, cp.Balanced, w)
	}
	w := math.Min(1.0, (iso-cp.ISOHigh)/cp.PowerBlendRange)
	return blendProfiles(cp.Balanced, cp.Power, w)
}

func blendProfiles(a, b HitProfile, w float64) HitProfile {
	var out HitProfile
	for i := range out {
		out[i] = a[i]*(1-w) + b[i]*w
	}
	return out
}

// outcomeProbabilities decomposes a slash line into the 7-way outcome
// distribution. The walk rate is obp-ba, the out mass 1-obp is split into
// strikeouts and balls in play, and the hit mass ba is spread across hit
// types according to dist.
func (cp CalibrationParams) outcomeProbabilities(ba, obp float64, kRate *float64, dist HitProfile) [NumOutcomes]float64 {
	walk := obp - ba
	totalOuts := 1.0 - obp

	strikeout := cp.DefaultStrikeoutRate
	if kRate != nil {
		strikeout = *kRate
	}
	ballInPlayOut := totalOuts - strikeout
	if ballInPlayOut < 0 {
		// Extreme strikeout rates: the whole out mass is strikeouts.
		ballInPlayOut = 0
		strikeout = totalOuts
	}

	var probs [NumOutcomes]float64
	probs[OutcomeOut] = ballInPlayOut
	probs[OutcomeStrikeout] = strikeout
	probs[OutcomeWalk] = walk
	probs[OutcomeSingle] = ba * dist[HitSingle]
	probs[OutcomeDouble] = ba * dist[HitDouble]
	probs[OutcomeTriple] = ba * dist[HitTriple]
	probs[OutcomeHomeRun] = ba * dist[HitHomeRun]
	return probs
}

// validateDistribution checks non-negativity and unit sum within tolerance.
func validateDistribution(probs []float64) error {
	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			return fmt.Errorf("negative probability %.6f at index %d", p, i)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > ProbabilityTolerance {
		return fmt.Errorf("probabilities sum to %.6f, expected 1.0", sum)
	}
	return nil
}

// ExpectedBasesPerHit returns the expected total bases per hit for a
// distribution, useful for sanity-checking against SLG/BA.
func ExpectedBasesPerHit(dist HitProfile) float64 {
	total := 0.0
	for h := HitSingle; h <= HitHomeRun; h++ {
		total += float64(h.TotalBases()) * dist[h]
	}
	return total
}
