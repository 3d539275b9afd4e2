package optimizer

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"lineup-sim/models"
)

// genetic runs the permutation-encoded genetic algorithm. Individuals are
// permutations of the full roster; the first nine slots are the batting
// order, so selection and ordering evolve together on larger rosters.
func (o *Optimizer) genetic(ctx context.Context) (*Result, error) {
	o.log.WithFields(logrus.Fields{
		"roster":      len(o.roster),
		"population":  o.params.PopulationSize,
		"generations": o.params.Generations,
	}).Info("starting genetic lineup search")

	population := make([][]int, o.params.PopulationSize)
	for i := range population {
		population[i] = o.rng.Perm(len(o.roster))
	}

	eliteCount := int(math.Ceil(o.params.ElitismRate * float64(o.params.PopulationSize)))
	if eliteCount < 1 {
		eliteCount = 1
	}

	var (
		best           Candidate
		hasBest        bool
		stale          int
		generationsRun int
	)

	for gen := 0; gen < o.params.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		generationsRun = gen + 1

		scored := make([]Candidate, len(population))
		for i, individual := range population {
			c, err := o.evaluate(ctx, individual[:models.LineupSize], o.params.InitialSims)
			if err != nil {
				return nil, err
			}
			scored[i] = c
			scored[i].Order = append([]int(nil), individual...)
		}
		sortByScore(scored)

		if !hasBest || scored[0].Score > best.Score {
			best = scored[0]
			hasBest = true
			stale = 0
			o.log.WithFields(logrus.Fields{
				"generation": gen,
				"score":      best.Score,
				"mean_runs":  best.MeanRuns,
			}).Debug("new best lineup")
		} else {
			stale++
			if stale >= o.params.NoImprovementStop {
				o.log.WithField("generation", gen).Info("stopping early, no improvement")
				break
			}
		}

		next := make([][]int, 0, o.params.PopulationSize)
		for i := 0; i < eliteCount && i < len(scored); i++ {
			next = append(next, append([]int(nil), scored[i].Order...))
		}
		for len(next) < o.params.PopulationSize {
			parentA := o.tournament(scored)
			parentB := o.tournament(scored)
			child := o.orderCrossover(parentA.Order, parentB.Order)
			o.mutate(child)
			next = append(next, child)
		}
		population = next
	}

	// Re-rank the elite of the final population under the full budget so
	// the reported winner is not an artifact of the reduced one.
	finalists := make([]Candidate, 0, eliteCount+1)
	seen := map[string]bool{}
	rescore := func(order []int) error {
		key := keyOf(order[:models.LineupSize])
		if seen[key] {
			return nil
		}
		seen[key] = true
		c, err := o.evaluate(ctx, order[:models.LineupSize], o.params.FinalSims)
		if err != nil {
			return err
		}
		finalists = append(finalists, c)
		return nil
	}
	if hasBest {
		if err := rescore(best.Order); err != nil {
			return nil, err
		}
	}
	for i := 0; i < eliteCount && i < len(population); i++ {
		if err := rescore(population[i]); err != nil {
			return nil, err
		}
	}
	sortByScore(finalists)

	return &Result{
		Method:        "genetic",
		Best:          finalists[0],
		TopCandidates: topN(finalists, 5),
		Evaluated:     o.evaluated,
		Generations:   generationsRun,
		CacheHits:     o.cacheHits,
	}, nil
}

// tournament picks the best of TournamentSize randomly drawn candidates.
func (o *Optimizer) tournament(scored []Candidate) Candidate {
	best := scored[o.rng.Intn(len(scored))]
	for i := 1; i < o.params.TournamentSize; i++ {
		c := scored[o.rng.Intn(len(scored))]
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}

// orderCrossover produces a child permutation: a contiguous slice of
// parent A is kept in place, and the remaining slots are filled with
// parent B's elements in B's order.
func (o *Optimizer) orderCrossover(a, b []int) []int {
	n := len(a)
	lo := o.rng.Intn(n)
	hi := lo + o.rng.Intn(n-lo)

	child := make([]int, n)
	used := make([]bool, n)
	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}

	pos := 0
	for _, v := range b {
		if used[v] {
			continue
		}
		for pos >= lo && pos <= hi {
			pos++
		}
		child[pos] = v
		pos++
	}
	return child
}

// mutate swaps two random slots with probability MutationRate.
func (o *Optimizer) mutate(order []int) {
	if o.rng.Float64() >= o.params.MutationRate {
		return
	}
	i := o.rng.Intn(len(order))
	j := o.rng.Intn(len(order))
	order[i], order[j] = order[j], order[i]
}

func keyOf(order []int) string {
	buf := make([]byte, 0, len(order))
	for _, v := range order {
		buf = append(buf, byte(v))
	}
	return string(buf)
}
