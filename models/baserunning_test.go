package models

import (
	"math/rand"
	"testing"
)

func stationToStation() AdvanceRules {
	return AdvanceRules{Probabilistic: false}
}

func TestAdvanceRunnersDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name     string
		outcome  Outcome
		bases    BaseState
		batter   int
		wantRuns int
		want     BaseState
	}{
		{
			name:     "out holds runners",
			outcome:  OutcomeOut,
			bases:    BaseState{First: 0, Second: NoRunner, Third: 2},
			batter:   3,
			wantRuns: 0,
			want:     BaseState{First: 0, Second: NoRunner, Third: 2},
		},
		{
			name:     "strikeout holds runners",
			outcome:  OutcomeStrikeout,
			bases:    BaseState{First: 0, Second: 1, Third: NoRunner},
			batter:   3,
			wantRuns: 0,
			want:     BaseState{First: 0, Second: 1, Third: NoRunner},
		},
		{
			name:     "walk with first open is not a force",
			outcome:  OutcomeWalk,
			bases:    BaseState{First: NoRunner, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 0,
			want:     BaseState{First: 3, Second: 1, Third: 2},
		},
		{
			name:     "walk forces chain",
			outcome:  OutcomeWalk,
			bases:    BaseState{First: 0, Second: 1, Third: NoRunner},
			batter:   3,
			wantRuns: 0,
			want:     BaseState{First: 3, Second: 0, Third: 1},
		},
		{
			name:     "bases loaded walk scores exactly one",
			outcome:  OutcomeWalk,
			bases:    BaseState{First: 0, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 1,
			want:     BaseState{First: 3, Second: 0, Third: 1},
		},
		{
			name:     "single scores third and moves the line",
			outcome:  OutcomeSingle,
			bases:    BaseState{First: 0, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 1,
			want:     BaseState{First: 3, Second: 0, Third: 1},
		},
		{
			name:     "double scores second and third",
			outcome:  OutcomeDouble,
			bases:    BaseState{First: 0, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 2,
			want:     BaseState{First: NoRunner, Second: 3, Third: 0},
		},
		{
			name:     "triple clears the bases",
			outcome:  OutcomeTriple,
			bases:    BaseState{First: 0, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 3,
			want:     BaseState{First: NoRunner, Second: NoRunner, Third: 3},
		},
		{
			name:     "grand slam scores four",
			outcome:  OutcomeHomeRun,
			bases:    BaseState{First: 0, Second: 1, Third: 2},
			batter:   3,
			wantRuns: 4,
			want:     EmptyBases(),
		},
		{
			name:     "solo home run",
			outcome:  OutcomeHomeRun,
			bases:    EmptyBases(),
			batter:   5,
			wantRuns: 1,
			want:     EmptyBases(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, runs := AdvanceRunners(tt.outcome, tt.bases, tt.batter, stationToStation(), rng)
			if runs != tt.wantRuns {
				t.Errorf("runs = %d, want %d", runs, tt.wantRuns)
			}
			if got != tt.want {
				t.Errorf("bases = %+v, want %+v", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("resulting base state %+v has a duplicated runner", got)
			}
		})
	}
}

func TestAdvanceRunnersAggressive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Degenerate probabilities force each branch regardless of the draw.
	always := AdvanceRules{Probabilistic: true, SingleFirstToThird: 1.0, DoubleSecondScores: 1.0, DoubleFirstScores: 1.0}
	never := AdvanceRules{Probabilistic: true, SingleFirstToThird: 0.0, DoubleSecondScores: 0.0, DoubleFirstScores: 0.0}

	t.Run("single first to third when open", func(t *testing.T) {
		got, runs := AdvanceRunners(OutcomeSingle, BaseState{First: 0, Second: NoRunner, Third: NoRunner}, 3, always, rng)
		if runs != 0 {
			t.Errorf("runs = %d, want 0", runs)
		}
		want := BaseState{First: 3, Second: NoRunner, Third: 0}
		if got != want {
			t.Errorf("bases = %+v, want %+v", got, want)
		}
	})

	t.Run("single first holds at second when third taken", func(t *testing.T) {
		got, runs := AdvanceRunners(OutcomeSingle, BaseState{First: 0, Second: 1, Third: NoRunner}, 3, always, rng)
		if runs != 0 {
			t.Errorf("runs = %d, want 0", runs)
		}
		want := BaseState{First: 3, Second: 0, Third: 1}
		if got != want {
			t.Errorf("bases = %+v, want %+v", got, want)
		}
	})

	t.Run("double first scores", func(t *testing.T) {
		got, runs := AdvanceRunners(OutcomeDouble, BaseState{First: 0, Second: NoRunner, Third: NoRunner}, 3, always, rng)
		if runs != 1 {
			t.Errorf("runs = %d, want 1", runs)
		}
		want := BaseState{First: NoRunner, Second: 3, Third: NoRunner}
		if got != want {
			t.Errorf("bases = %+v, want %+v", got, want)
		}
	})

	t.Run("double conflict pushes lead runner home", func(t *testing.T) {
		// Runner from second holds at third and the runner from first also
		// holds: the lead runner is pushed across and the trailing runner
		// takes third.
		got, runs := AdvanceRunners(OutcomeDouble, BaseState{First: 0, Second: 1, Third: NoRunner}, 3, never, rng)
		if runs != 1 {
			t.Errorf("runs = %d, want 1", runs)
		}
		want := BaseState{First: NoRunner, Second: 3, Third: 0}
		if got != want {
			t.Errorf("bases = %+v, want %+v", got, want)
		}
		if !got.Valid() {
			t.Errorf("resulting base state %+v has a duplicated runner", got)
		}
	})

	t.Run("double runner holds at third when alone", func(t *testing.T) {
		got, runs := AdvanceRunners(OutcomeDouble, BaseState{First: NoRunner, Second: 1, Third: NoRunner}, 3, never, rng)
		if runs != 0 {
			t.Errorf("runs = %d, want 0", runs)
		}
		want := BaseState{First: NoRunner, Second: 3, Third: 1}
		if got != want {
			t.Errorf("bases = %+v, want %+v", got, want)
		}
	})
}

func TestBaseStateHelpers(t *testing.T) {
	empty := EmptyBases()
	if !empty.IsEmpty() || empty.RunnerCount() != 0 {
		t.Error("empty bases should report empty")
	}

	loaded := BaseState{First: 0, Second: 1, Third: 2}
	if !loaded.Loaded() || loaded.RunnerCount() != 3 {
		t.Error("full bases should report loaded")
	}

	dup := BaseState{First: 4, Second: 4, Third: NoRunner}
	if dup.Valid() {
		t.Error("duplicate occupant should be invalid")
	}

	if got := loaded.String(); got != "1st, 2nd, 3rd" {
		t.Errorf("String() = %q", got)
	}
	if got := empty.String(); got != "bases empty" {
		t.Errorf("String() = %q", got)
	}
}
