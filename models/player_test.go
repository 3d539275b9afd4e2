package models

import (
	"errors"
	"testing"
)

func TestNewPlayerProfile(t *testing.T) {
	params := DefaultCalibrationParams()

	p, err := NewPlayerProfile(PlayerStats{
		Name:     "Regular",
		BA:       0.280,
		OBP:      0.350,
		SLG:      0.450,
		PA:       620,
		Position: "SS",
	}, params)
	if err != nil {
		t.Fatalf("valid stats rejected: %v", err)
	}

	if !close6(p.ISO, 0.170) {
		t.Errorf("derived ISO = %.3f, want 0.170", p.ISO)
	}
	if !close6(p.OutcomeProbs[OutcomeWalk], 0.070) {
		t.Errorf("walk probability = %.6f, want 0.070", p.OutcomeProbs[OutcomeWalk])
	}
	if !close6(p.OutcomeProbs[OutcomeStrikeout], params.DefaultStrikeoutRate) {
		t.Errorf("strikeout probability = %.6f, want %.6f", p.OutcomeProbs[OutcomeStrikeout], params.DefaultStrikeoutRate)
	}
	if err := validateDistribution(p.OutcomeProbs[:]); err != nil {
		t.Errorf("outcome distribution invalid: %v", err)
	}
	if err := validateDistribution(p.HitTypeDist[:]); err != nil {
		t.Errorf("hit type distribution invalid: %v", err)
	}
	if p.Position == nil || p.Position.Code != 6 {
		t.Errorf("position = %+v, want shortstop (6)", p.Position)
	}
}

func TestNewPlayerProfileExplicitISO(t *testing.T) {
	iso := 0.250
	p, err := NewPlayerProfile(PlayerStats{
		Name: "Slugger",
		BA:   0.260,
		OBP:  0.360,
		SLG:  0.540,
		ISO:  &iso,
		PA:   600,
	}, DefaultCalibrationParams())
	if err != nil {
		t.Fatalf("valid stats rejected: %v", err)
	}
	if !close6(p.ISO, 0.250) {
		t.Errorf("explicit ISO overridden: got %.3f", p.ISO)
	}
}

func TestNewPlayerProfileRejectsBadStats(t *testing.T) {
	tests := []struct {
		name  string
		stats PlayerStats
	}{
		{"obp below ba", PlayerStats{Name: "X", BA: 0.300, OBP: 0.250, SLG: 0.400, PA: 500}},
		{"ba above one", PlayerStats{Name: "X", BA: 1.2, OBP: 1.3, SLG: 1.4, PA: 500}},
		{"negative slg", PlayerStats{Name: "X", BA: 0.250, OBP: 0.300, SLG: -0.1, PA: 500}},
		{"k rate above one", PlayerStats{Name: "X", BA: 0.250, OBP: 0.300, SLG: 0.400, PA: 500, StrikeoutRate: floatPtr(1.5)}},
		{"unknown position", PlayerStats{Name: "X", BA: 0.250, OBP: 0.300, SLG: 0.400, PA: 500, Position: "QB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlayerProfile(tt.stats, DefaultCalibrationParams())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var calErr *CalibrationError
			if !errors.As(err, &calErr) {
				t.Errorf("error %v is not a CalibrationError", err)
			}
		})
	}
}

func TestBuildLineup(t *testing.T) {
	params := DefaultCalibrationParams()
	stats := make([]PlayerStats, LineupSize)
	for i := range stats {
		stats[i] = PlayerStats{Name: "Batter", BA: 0.260, OBP: 0.330, SLG: 0.410, PA: 550}
	}

	lineup, err := BuildLineup(stats, params)
	if err != nil {
		t.Fatalf("valid lineup rejected: %v", err)
	}
	if len(lineup) != LineupSize {
		t.Errorf("lineup size = %d, want %d", len(lineup), LineupSize)
	}

	if _, err := BuildLineup(stats[:5], params); err == nil {
		t.Error("short lineup accepted")
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		wantCode int
		wantErr  bool
	}{
		{"SS", 6, false},
		{"ss", 6, false},
		{"1", 1, false},
		{"10", 10, false},
		{"DH", 10, false},
		{"QB", 0, true},
		{"0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pos, err := ParsePosition(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePosition(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && pos.Code != tt.wantCode {
				t.Errorf("ParsePosition(%q).Code = %d, want %d", tt.input, pos.Code, tt.wantCode)
			}
		})
	}
}
