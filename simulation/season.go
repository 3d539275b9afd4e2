package simulation

import (
	"lineup-sim/models"
)

// SeasonResult aggregates one simulated season's counting stats. Produced
// once per season iteration and never mutated afterward.
type SeasonResult struct {
	Runs           int `json:"runs"`
	Hits           int `json:"hits"`
	Walks          int `json:"walks"`
	PlateAppts     int `json:"plate_appearances"`
	StolenBases    int `json:"stolen_bases"`
	CaughtStealing int `json:"caught_stealing"`
	SacrificeFlies int `json:"sacrifice_flies"`
	LeftOnBase     int `json:"left_on_base"`
	Misplays       int `json:"misplays"`
}

func (sr *SeasonResult) add(t InningTally) {
	sr.Runs += t.Runs
	sr.Hits += t.Hits
	sr.Walks += t.Walks
	sr.PlateAppts += t.PlateAppts
	sr.StolenBases += t.StolenBases
	sr.CaughtStealing += t.CaughtStealing
	sr.SacrificeFlies += t.SacrificeFlies
	sr.LeftOnBase += t.LeftOnBase
	sr.Misplays += t.Misplays
}

// simulateSeason plays a full season of offensive half-innings. The batter
// index carries over between innings and between games; it is never reset
// within a season.
func simulateSeason(lineup models.Lineup, sampler *Sampler, cfg *Config) SeasonResult {
	var result SeasonResult
	batterIdx := 0

	for game := 0; game < cfg.GamesPerSeason; game++ {
		for inning := 0; inning < cfg.InningsPerGame; inning++ {
			tally, next := simulateHalfInning(lineup, batterIdx, sampler, cfg)
			result.add(tally)
			batterIdx = next
		}
	}

	return result
}
