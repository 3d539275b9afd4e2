package simulation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Percentiles is the fixed percentile band reported for every tracked
// quantity.
type Percentiles struct {
	P5  float64 `json:"5th"`
	P25 float64 `json:"25th"`
	P50 float64 `json:"50th"`
	P75 float64 `json:"75th"`
	P95 float64 `json:"95th"`
}

// QuantitySummary is the descriptive summary of one tracked quantity over
// all simulated seasons. CI95 is the empirical 2.5th/97.5th percentile
// band of the raw vector, deliberately not a parametric interval.
type QuantitySummary struct {
	Mean        float64     `json:"mean"`
	Std         float64     `json:"std"`
	Median      float64     `json:"median"`
	Min         int         `json:"min"`
	Max         int         `json:"max"`
	Percentiles Percentiles `json:"percentiles"`
	CI95        [2]float64  `json:"ci_95"`
}

// MeanStd is a mean plus standard deviation pair for derived per-game
// rates.
type MeanStd struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// WinProbability is the fraction of seasons at or above the league-average
// run pace, with a Wilson-score 95% interval. Wilson keeps the interval
// inside [0,1] and honest near the extremes, unlike the normal
// approximation.
type WinProbability struct {
	PHat    float64 `json:"mean"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// summarizeQuantity computes the descriptive summary of one raw per-season
// vector.
func summarizeQuantity(values []int) QuantitySummary {
	if len(values) == 0 {
		return QuantitySummary{}
	}

	xs := make([]float64, len(values))
	minV, maxV := values[0], values[0]
	for i, v := range values {
		xs[i] = float64(v)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	sort.Float64s(xs)

	quantile := func(p float64) float64 {
		return linearQuantile(p, xs)
	}

	return QuantitySummary{
		Mean:   stat.Mean(xs, nil),
		Std:    stat.PopStdDev(xs, nil),
		Median: quantile(0.50),
		Min:    minV,
		Max:    maxV,
		Percentiles: Percentiles{
			P5:  quantile(0.05),
			P25: quantile(0.25),
			P50: quantile(0.50),
			P75: quantile(0.75),
			P95: quantile(0.95),
		},
		CI95: [2]float64{quantile(0.025), quantile(0.975)},
	}
}

// linearQuantile computes the p-th quantile of a sorted vector with
// linear interpolation between closest ranks (Hyndman-Fan type 7, the
// convention the reported percentile bands are calibrated against). The
// even-length median is the midpoint of the middle two values.
func linearQuantile(p float64, xs []float64) float64 {
	n := len(xs)
	if n == 1 {
		return xs[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return xs[n-1]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

// winProbability computes the proportion of seasons whose run total meets
// the threshold, with its Wilson-score 95% interval.
func winProbability(seasonRuns []int, threshold float64) WinProbability {
	n := len(seasonRuns)
	if n == 0 {
		return WinProbability{}
	}

	wins := 0
	for _, r := range seasonRuns {
		if float64(r) >= threshold {
			wins++
		}
	}
	pHat := float64(wins) / float64(n)
	lower, upper := wilsonInterval(pHat, n, 0.95)
	return WinProbability{PHat: pHat, CILower: lower, CIUpper: upper}
}

// wilsonInterval returns the Wilson-score interval for a binomial
// proportion at the given confidence level.
func wilsonInterval(pHat float64, n int, confidence float64) (lower, upper float64) {
	if n == 0 {
		return 0, 1
	}
	alpha := 1 - confidence
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	nf := float64(n)

	denom := 1 + z*z/nf
	center := (pHat + z*z/(2*nf)) / denom
	spread := z * math.Sqrt((pHat*(1-pHat)+z*z/(4*nf))/nf) / denom

	lower = center - spread
	upper = center + spread
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return lower, upper
}
