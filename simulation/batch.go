package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"lineup-sim/models"
)

// BatchStatus marks how a batch run finished.
type BatchStatus string

const (
	StatusCompleted BatchStatus = "completed"
	StatusCancelled BatchStatus = "cancelled"
)

// ProgressFunc receives periodic completion updates during a batch run. It
// is invoked from the goroutine driving the batch, so implementations must
// be fast and must not block.
type ProgressFunc func(completed, total int)

// Summary holds the aggregate statistics of a completed batch.
type Summary struct {
	Simulations    int             `json:"n_simulations"`
	GamesPerSeason int             `json:"n_games_per_season"`
	Runs           QuantitySummary `json:"runs"`
	Hits           QuantitySummary `json:"hits"`
	Walks          QuantitySummary `json:"walks"`
	StolenBases    QuantitySummary `json:"stolen_bases"`
	CaughtStealing QuantitySummary `json:"caught_stealing"`
	SacrificeFlies QuantitySummary `json:"sacrifice_flies"`
	LeftOnBase     QuantitySummary `json:"left_on_base"`
	RunsPerGame    MeanStd         `json:"runs_per_game"`
	LOBPerGame     MeanStd         `json:"lob_per_game"`
	WinProbability WinProbability  `json:"win_probability"`
}

// RawData retains the full per-season vectors so callers can run their own
// analysis without re-simulating.
type RawData struct {
	SeasonRuns           []int `json:"season_runs"`
	SeasonHits           []int `json:"season_hits"`
	SeasonWalks          []int `json:"season_walks"`
	SeasonStolenBases    []int `json:"season_stolen_bases"`
	SeasonCaughtStealing []int `json:"season_caught_stealing"`
	SeasonSacFlies       []int `json:"season_sac_flies"`
	SeasonLeftOnBase     []int `json:"season_left_on_base"`
}

// BatchReport is the complete output of one batch run. A cancelled run
// still yields a report, with Status set and no summary or raw data.
type BatchReport struct {
	Status  BatchStatus `json:"status"`
	Seed    int64       `json:"seed"`
	Summary *Summary    `json:"summary,omitempty"`
	RawData *RawData    `json:"raw_data,omitempty"`
}

// Cancelled reports whether the run was aborted before completing.
func (r *BatchReport) Cancelled() bool {
	return r.Status == StatusCancelled
}

// RunBatch simulates cfg.Simulations independent seasons for the given
// lineup and aggregates the results. With Workers <= 1 all seasons draw
// from a single continuing RNG stream seeded with cfg.Seed, so a given
// seed and configuration always reproduce the same report byte for byte.
// With Workers > 1 each season gets its own derived sub-stream; results
// are still deterministic for a given seed and worker-count independent,
// but the sequences differ from the single-stream mode.
//
// Cancellation via ctx is cooperative: it is checked between season
// iterations at the ProgressInterval cadence, never mid-season. A
// cancelled run returns a report with StatusCancelled and a nil error.
func RunBatch(ctx context.Context, lineup models.Lineup, cfg Config, progress ProgressFunc) (*BatchReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("batch configuration: %w", err)
	}
	if len(lineup) != models.LineupSize {
		return nil, fmt.Errorf("batch lineup: got %d players, need %d", len(lineup), models.LineupSize)
	}

	var (
		results []SeasonResult
		err     error
	)
	if cfg.Workers > 1 {
		results, err = runParallel(ctx, lineup, &cfg, progress)
	} else {
		results, err = runSequential(ctx, lineup, &cfg, progress)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &BatchReport{Status: StatusCancelled, Seed: cfg.Seed}, nil
		}
		return nil, err
	}

	return buildReport(results, &cfg), nil
}

func runSequential(ctx context.Context, lineup models.Lineup, cfg *Config, progress ProgressFunc) ([]SeasonResult, error) {
	sampler := NewSampler(cfg.Seed)
	results := make([]SeasonResult, 0, cfg.Simulations)

	for i := 0; i < cfg.Simulations; i++ {
		if i%cfg.ProgressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		res, err := runSeason(lineup, sampler, cfg, i)
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		if progress != nil && ((i+1)%cfg.ProgressInterval == 0 || i+1 == cfg.Simulations) {
			progress(i+1, cfg.Simulations)
		}
	}
	return results, nil
}

func runParallel(ctx context.Context, lineup models.Lineup, cfg *Config, progress ProgressFunc) ([]SeasonResult, error) {
	results := make([]SeasonResult, cfg.Simulations)
	indices := make(chan int)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		errOnce   sync.Once
		runErr    error
	)

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				sampler := NewSampler(subSeed(cfg.Seed, i))
				res, err := runSeason(lineup, sampler, cfg, i)
				if err != nil {
					errOnce.Do(func() {
						runErr = err
						cancel()
					})
					return
				}
				results[i] = res

				done := int(completed.Add(1))
				if progress != nil && (done%cfg.ProgressInterval == 0 || done == cfg.Simulations) {
					progress(done, cfg.Simulations)
				}
			}
		}()
	}

feed:
	for i := 0; i < cfg.Simulations; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()

	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runSeason wraps a single season iteration with a panic guard so one
// pathological draw cannot take down the whole batch unattributed.
func runSeason(lineup models.Lineup, sampler *Sampler, cfg *Config, idx int) (res SeasonResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("season %d: panic: %v", idx, r)
		}
	}()
	res = simulateSeason(lineup, sampler, cfg)
	return res, nil
}

// subSeed derives a per-season seed from the batch seed using a
// splitmix64 finalizer, keeping parallel sub-streams statistically
// independent of one another.
func subSeed(seed int64, i int) int64 {
	z := uint64(seed) + uint64(i+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

func buildReport(results []SeasonResult, cfg *Config) *BatchReport {
	raw := &RawData{
		SeasonRuns:           make([]int, len(results)),
		SeasonHits:           make([]int, len(results)),
		SeasonWalks:          make([]int, len(results)),
		SeasonStolenBases:    make([]int, len(results)),
		SeasonCaughtStealing: make([]int, len(results)),
		SeasonSacFlies:       make([]int, len(results)),
		SeasonLeftOnBase:     make([]int, len(results)),
	}
	for i, r := range results {
		raw.SeasonRuns[i] = r.Runs
		raw.SeasonHits[i] = r.Hits
		raw.SeasonWalks[i] = r.Walks
		raw.SeasonStolenBases[i] = r.StolenBases
		raw.SeasonCaughtStealing[i] = r.CaughtStealing
		raw.SeasonSacFlies[i] = r.SacrificeFlies
		raw.SeasonLeftOnBase[i] = r.LeftOnBase
	}

	runsSummary := summarizeQuantity(raw.SeasonRuns)
	lobSummary := summarizeQuantity(raw.SeasonLeftOnBase)
	games := float64(cfg.GamesPerSeason)

	summary := &Summary{
		Simulations:    len(results),
		GamesPerSeason: cfg.GamesPerSeason,
		Runs:           runsSummary,
		Hits:           summarizeQuantity(raw.SeasonHits),
		Walks:          summarizeQuantity(raw.SeasonWalks),
		StolenBases:    summarizeQuantity(raw.SeasonStolenBases),
		CaughtStealing: summarizeQuantity(raw.SeasonCaughtStealing),
		SacrificeFlies: summarizeQuantity(raw.SeasonSacFlies),
		LeftOnBase:     lobSummary,
		RunsPerGame:    MeanStd{Mean: runsSummary.Mean / games, Std: runsSummary.Std / games},
		LOBPerGame:     MeanStd{Mean: lobSummary.Mean / games, Std: lobSummary.Std / games},
		WinProbability: winProbability(raw.SeasonRuns, cfg.LeagueAvgRunsPerGame*games),
	}

	return &BatchReport{
		Status:  StatusCompleted,
		Seed:    cfg.Seed,
		Summary: summary,
		RawData: raw,
	}
}
