package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeQuantity(t *testing.T) {
	s := summarizeQuantity([]int{2, 4, 4, 4, 5, 5, 7, 9})

	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	// Population standard deviation, matching the reported spread of the
	// raw vector rather than a sample estimate.
	assert.InDelta(t, 2.0, s.Std, 1e-9)
	assert.Equal(t, 2, s.Min)
	assert.Equal(t, 9, s.Max)
	// Even-length median is the midpoint of the middle two values, and
	// percentiles interpolate linearly between closest ranks.
	assert.InDelta(t, 4.5, s.Median, 1e-9)
	assert.Equal(t, s.Median, s.Percentiles.P50)
	assert.InDelta(t, 2.7, s.Percentiles.P5, 1e-9)
	assert.InDelta(t, 4.0, s.Percentiles.P25, 1e-9)
	assert.InDelta(t, 5.5, s.Percentiles.P75, 1e-9)
	assert.InDelta(t, 8.3, s.Percentiles.P95, 1e-9)
	assert.InDelta(t, 2.35, s.CI95[0], 1e-9)
	assert.InDelta(t, 8.65, s.CI95[1], 1e-9)
}

func TestLinearQuantileBoundaries(t *testing.T) {
	xs := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, linearQuantile(0, xs))
	assert.Equal(t, 4.0, linearQuantile(1, xs))
	assert.InDelta(t, 2.5, linearQuantile(0.5, xs), 1e-9)
	assert.Equal(t, 7.0, linearQuantile(0.5, []float64{7}))
}

func TestSummarizeQuantityConstantVector(t *testing.T) {
	s := summarizeQuantity([]int{6, 6, 6, 6})

	assert.Equal(t, 6.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 6, s.Min)
	assert.Equal(t, 6, s.Max)
	assert.Equal(t, 6.0, s.CI95[0])
	assert.Equal(t, 6.0, s.CI95[1])
}

func TestSummarizeQuantityEmpty(t *testing.T) {
	s := summarizeQuantity(nil)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.Std)
}

func TestWilsonInterval(t *testing.T) {
	tests := []struct {
		name string
		pHat float64
		n    int
	}{
		{"balanced", 0.5, 100},
		{"rare event", 0.01, 1000},
		{"all wins", 1.0, 50},
		{"no wins", 0.0, 50},
		{"tiny sample", 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := wilsonInterval(tt.pHat, tt.n, 0.95)

			assert.GreaterOrEqual(t, lower, 0.0)
			assert.LessOrEqual(t, upper, 1.0)
			assert.LessOrEqual(t, lower, tt.pHat)
			assert.GreaterOrEqual(t, upper, tt.pHat)
		})
	}
}

func TestWilsonIntervalShrinksWithN(t *testing.T) {
	lo1, hi1 := wilsonInterval(0.5, 100, 0.95)
	lo2, hi2 := wilsonInterval(0.5, 10000, 0.95)
	assert.Less(t, hi2-lo2, hi1-lo1, "more seasons must tighten the interval")
}

func TestWilsonIntervalKnownValue(t *testing.T) {
	// Classic check: 50 successes in 100 trials at 95% gives roughly
	// (0.404, 0.596).
	lower, upper := wilsonInterval(0.5, 100, 0.95)
	assert.InDelta(t, 0.404, lower, 0.005)
	assert.InDelta(t, 0.596, upper, 0.005)
}

func TestWinProbability(t *testing.T) {
	runs := []int{700, 710, 720, 730, 740, 750, 760, 770, 780, 790}

	wp := winProbability(runs, 745.0)
	assert.InDelta(t, 0.5, wp.PHat, 1e-9)
	assert.Less(t, wp.CILower, wp.PHat)
	assert.Greater(t, wp.CIUpper, wp.PHat)

	// Threshold exactly on a season's total counts as meeting the pace.
	wp = winProbability(runs, 790.0)
	assert.InDelta(t, 0.1, wp.PHat, 1e-9)
}
