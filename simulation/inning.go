package simulation

import (
	"lineup-sim/models"
)

// InningTally collects per-half-inning counting stats.
type InningTally struct {
	Runs           int
	Hits           int
	Walks          int
	PlateAppts     int
	LeftOnBase     int
	StolenBases    int
	CaughtStealing int
	SacrificeFlies int
	Misplays       int
}

// simulateHalfInning plays one half-inning to three outs and returns the
// tally plus the next batter index. Per plate appearance cycle the order is
// steal check, misplay check, then the PA itself; the steal check can end
// the inning on a caught stealing.
func simulateHalfInning(lineup models.Lineup, batterIdx int, sampler *Sampler, cfg *Config) (InningTally, int) {
	var tally InningTally
	outs := 0
	bases := models.EmptyBases()
	rng := sampler.RNG()

	for outs < 3 {
		var steal models.StealResult
		bases, steal = models.CheckStealOpportunities(bases, outs, lineup, cfg.Steals, rng)
		if steal.Attempted {
			if steal.Succeeded {
				tally.StolenBases++
			} else {
				tally.CaughtStealing++
			}
		}
		outs += steal.Outs
		if outs >= 3 {
			break
		}

		var misplayRuns int
		var misplayed bool
		bases, misplayRuns, misplayed = models.CheckMisplay(bases, cfg.Misplays, rng)
		if misplayed {
			tally.Misplays++
			tally.Runs += misplayRuns
		}

		batter := lineup[batterIdx]
		outcome := sampler.Sample(batter)
		tally.PlateAppts++

		switch outcome {
		case models.OutcomeOut:
			// Only a batted out can become a sacrifice fly.
			var sfRuns int
			var isSF bool
			bases, sfRuns, isSF = models.CheckSacrificeFly(bases, outs, cfg.SacFlies, rng)
			if isSF {
				tally.SacrificeFlies++
				tally.Runs += sfRuns
			}
			outs++

		case models.OutcomeStrikeout:
			outs++

		default:
			var runs int
			bases, runs = models.AdvanceRunners(outcome, bases, batterIdx, cfg.Advancement, rng)
			tally.Runs += runs
			if outcome == models.OutcomeWalk {
				tally.Walks++
			} else {
				tally.Hits++
			}
		}

		batterIdx = (batterIdx + 1) % models.LineupSize
	}

	tally.LeftOnBase = bases.RunnerCount()
	return tally, batterIdx
}
