// Package optimizer searches batting orders for the lineup that maximizes
// a run-production objective. Small rosters are searched exhaustively; the
// rest go through a genetic algorithm over permutation-encoded lineups.
package optimizer

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"lineup-sim/models"
	"lineup-sim/simulation"
)

// Objective selects which summary statistic of season runs a candidate
// lineup is scored on.
type Objective string

const (
	ObjectiveMeanRuns     Objective = "mean_runs"
	ObjectiveMedianRuns   Objective = "median_runs"
	ObjectivePercentile95 Objective = "percentile_95"
	// ObjectiveMinVariance is only valid as a secondary objective; it
	// contributes the negated standard deviation so lower spread scores
	// higher.
	ObjectiveMinVariance Objective = "min_variance"
)

// Params controls the search. Zero values are invalid; start from
// DefaultParams.
type Params struct {
	ExhaustiveThreshold int     `yaml:"exhaustive_threshold" json:"exhaustive_threshold"`
	PopulationSize      int     `yaml:"population_size" json:"population_size"`
	Generations         int     `yaml:"generations" json:"generations"`
	MutationRate        float64 `yaml:"mutation_rate" json:"mutation_rate"`
	TournamentSize      int     `yaml:"tournament_size" json:"tournament_size"`
	ElitismRate         float64 `yaml:"elitism_rate" json:"elitism_rate"`
	NoImprovementStop   int     `yaml:"no_improvement_stop" json:"no_improvement_stop"`

	ExhaustiveSims int `yaml:"exhaustive_sims" json:"exhaustive_sims"`
	InitialSims    int `yaml:"initial_sims" json:"initial_sims"`
	FinalSims      int `yaml:"final_sims" json:"final_sims"`

	Primary         Objective `yaml:"primary_objective" json:"primary_objective"`
	Secondary       Objective `yaml:"secondary_objective" json:"secondary_objective,omitempty"`
	SecondaryWeight float64   `yaml:"secondary_weight" json:"secondary_weight"`

	EnableCache  bool `yaml:"enable_cache" json:"enable_cache"`
	MaxCacheSize int  `yaml:"max_cache_size" json:"max_cache_size"`

	Seed int64 `yaml:"seed" json:"seed"`
}

// DefaultParams returns the standard search configuration.
func DefaultParams() Params {
	return Params{
		ExhaustiveThreshold: 10,
		PopulationSize:      50,
		Generations:         100,
		MutationRate:        0.1,
		TournamentSize:      3,
		ElitismRate:         0.10,
		NoImprovementStop:   20,
		ExhaustiveSims:      100,
		InitialSims:         1000,
		FinalSims:           5000,
		Primary:             ObjectiveMeanRuns,
		Secondary:           "",
		SecondaryWeight:     0.3,
		EnableCache:         true,
		MaxCacheSize:        10000,
		Seed:                42,
	}
}

// Validate checks the search parameters.
func (p *Params) Validate() error {
	if p.ExhaustiveThreshold < models.LineupSize {
		return fmt.Errorf("exhaustive_threshold must be at least %d, got %d", models.LineupSize, p.ExhaustiveThreshold)
	}
	if p.PopulationSize < 2 {
		return fmt.Errorf("population_size must be at least 2, got %d", p.PopulationSize)
	}
	if p.Generations < 1 {
		return fmt.Errorf("generations must be positive, got %d", p.Generations)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be in [0,1], got %v", p.MutationRate)
	}
	if p.TournamentSize < 1 || p.TournamentSize > p.PopulationSize {
		return fmt.Errorf("tournament_size must be in [1,%d], got %d", p.PopulationSize, p.TournamentSize)
	}
	if p.ElitismRate < 0 || p.ElitismRate > 1 {
		return fmt.Errorf("elitism_rate must be in [0,1], got %v", p.ElitismRate)
	}
	if p.ExhaustiveSims < 1 || p.InitialSims < 1 || p.FinalSims < 1 {
		return fmt.Errorf("simulation budgets must be positive")
	}
	switch p.Primary {
	case ObjectiveMeanRuns, ObjectiveMedianRuns, ObjectivePercentile95:
	default:
		return fmt.Errorf("invalid primary objective %q", p.Primary)
	}
	switch p.Secondary {
	case "", ObjectiveMeanRuns, ObjectiveMedianRuns, ObjectivePercentile95, ObjectiveMinVariance:
	default:
		return fmt.Errorf("invalid secondary objective %q", p.Secondary)
	}
	if p.SecondaryWeight < 0 || p.SecondaryWeight > 1 {
		return fmt.Errorf("secondary_weight must be in [0,1], got %v", p.SecondaryWeight)
	}
	return nil
}

// Candidate is one evaluated batting order. Order holds roster indexes;
// the first nine positions form the lineup.
type Candidate struct {
	Order        []int    `json:"order"`
	Names        []string `json:"names"`
	Score        float64  `json:"score"`
	MeanRuns     float64  `json:"mean_runs"`
	MedianRuns   float64  `json:"median_runs"`
	Percentile95 float64  `json:"percentile_95"`
	StdRuns      float64  `json:"std_runs"`
}

// Result is the outcome of one optimization search.
type Result struct {
	Method        string      `json:"method"`
	Best          Candidate   `json:"best"`
	TopCandidates []Candidate `json:"top_candidates"`
	Evaluated     int         `json:"evaluated"`
	Generations   int         `json:"generations"`
	CacheHits     int         `json:"cache_hits"`
}

// Optimizer runs lineup-order searches against a fixed roster and
// simulation configuration. Not safe for concurrent use; create one per
// search.
type Optimizer struct {
	roster []*models.PlayerProfile
	simCfg simulation.Config
	params Params
	log    *logrus.Logger

	rng       *rand.Rand
	cache     map[string]Candidate
	cacheHits int
	evaluated int
}

// New creates an optimizer over the given roster. The simulation config's
// Simulations field is overridden per candidate by the search budgets;
// everything else (games, innings, modifier parameters) applies as given.
func New(roster []*models.PlayerProfile, simCfg simulation.Config, params Params, log *logrus.Logger) (*Optimizer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer parameters: %w", err)
	}
	if len(roster) < models.LineupSize {
		return nil, fmt.Errorf("roster has %d players, need at least %d", len(roster), models.LineupSize)
	}
	return &Optimizer{
		roster: roster,
		simCfg: simCfg,
		params: params,
		log:    log,
		rng:    rand.New(rand.NewSource(params.Seed)),
		cache:  make(map[string]Candidate),
	}, nil
}

// Optimize runs the search. Exhaustive search applies when the roster is
// exactly lineup-sized and within the threshold; otherwise the genetic
// algorithm runs. Cancellation via ctx aborts between evaluations.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	if len(o.roster) <= o.params.ExhaustiveThreshold && len(o.roster) == models.LineupSize {
		return o.exhaustive(ctx)
	}
	return o.genetic(ctx)
}

// evaluate scores one batting order, consulting the cache first. The
// candidate's simulation seed derives from the base seed and the order
// itself, so re-evaluating the same order is deterministic.
func (o *Optimizer) evaluate(ctx context.Context, order []int, sims int) (Candidate, error) {
	key := fmt.Sprintf("%v/%d", order, sims)
	if o.params.EnableCache {
		if c, ok := o.cache[key]; ok {
			o.cacheHits++
			return c, nil
		}
	}

	lineup := make(models.Lineup, models.LineupSize)
	names := make([]string, models.LineupSize)
	for i := 0; i < models.LineupSize; i++ {
		lineup[i] = o.roster[order[i]]
		names[i] = o.roster[order[i]].Name
	}

	cfg := o.simCfg
	cfg.Simulations = sims
	cfg.Seed = orderSeed(o.params.Seed, order)
	cfg.Workers = 1

	report, err := simulation.RunBatch(ctx, lineup, cfg, nil)
	if err != nil {
		return Candidate{}, fmt.Errorf("evaluating order %v: %w", order, err)
	}
	if report.Cancelled() {
		return Candidate{}, context.Canceled
	}
	o.evaluated++

	runs := report.Summary.Runs
	c := Candidate{
		Order:        append([]int(nil), order...),
		Names:        names,
		MeanRuns:     runs.Mean,
		MedianRuns:   runs.Median,
		Percentile95: runs.Percentiles.P95,
		StdRuns:      runs.Std,
	}
	c.Score = o.score(c)

	if o.params.EnableCache && len(o.cache) < o.params.MaxCacheSize {
		o.cache[key] = c
	}
	return c, nil
}

func (o *Optimizer) score(c Candidate) float64 {
	s := objectiveValue(c, o.params.Primary)
	if o.params.Secondary != "" {
		s += o.params.SecondaryWeight * objectiveValue(c, o.params.Secondary)
	}
	return s
}

func objectiveValue(c Candidate, obj Objective) float64 {
	switch obj {
	case ObjectiveMeanRuns:
		return c.MeanRuns
	case ObjectiveMedianRuns:
		return c.MedianRuns
	case ObjectivePercentile95:
		return c.Percentile95
	case ObjectiveMinVariance:
		return -c.StdRuns
	default:
		return 0
	}
}

// orderSeed hashes a batting order into a candidate-specific seed.
func orderSeed(base int64, order []int) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, idx := range order {
		buf[0] = byte(idx)
		buf[1] = byte(idx >> 8)
		h.Write(buf[:2])
	}
	return base ^ int64(h.Sum64())
}

// exhaustive evaluates every permutation of the lineup-sized roster.
func (o *Optimizer) exhaustive(ctx context.Context) (*Result, error) {
	o.log.WithFields(logrus.Fields{
		"roster": len(o.roster),
		"sims":   o.params.ExhaustiveSims,
	}).Info("starting exhaustive lineup search")

	order := make([]int, models.LineupSize)
	for i := range order {
		order[i] = i
	}

	var candidates []Candidate
	if err := permute(order, 0, func(perm []int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := o.evaluate(ctx, perm, o.params.ExhaustiveSims)
		if err != nil {
			return err
		}
		candidates = append(candidates, c)
		return nil
	}); err != nil {
		return nil, err
	}

	sortByScore(candidates)
	return &Result{
		Method:        "exhaustive",
		Best:          candidates[0],
		TopCandidates: topN(candidates, 5),
		Evaluated:     o.evaluated,
		CacheHits:     o.cacheHits,
	}, nil
}

// permute invokes fn for every permutation of order[k:] in place.
func permute(order []int, k int, fn func([]int) error) error {
	if k == len(order) {
		return fn(order)
	}
	for i := k; i < len(order); i++ {
		order[k], order[i] = order[i], order[k]
		if err := permute(order, k+1, fn); err != nil {
			return err
		}
		order[k], order[i] = order[i], order[k]
	}
	return nil
}

func sortByScore(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Score > cs[j].Score })
}

func topN(cs []Candidate, n int) []Candidate {
	if len(cs) < n {
		n = len(cs)
	}
	out := make([]Candidate, n)
	copy(out, cs[:n])
	return out
}
