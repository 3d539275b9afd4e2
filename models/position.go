package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldingPosition describes a defensive position using the standard
// scorekeeping numbering (1=P ... 9=RF, 10=DH). Shortstop is 6, not 5,
// for historical reasons.
type FieldingPosition struct {
	Code     int    `json:"code" yaml:"code"`
	Abbrev   string `json:"abbrev" yaml:"abbrev"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

func (p FieldingPosition) String() string { return p.Abbrev }

func (p FieldingPosition) IsInfielder() bool  { return p.Category == "Infielder" }
func (p FieldingPosition) IsOutfielder() bool { return p.Category == "Outfielder" }
func (p FieldingPosition) IsCatcher() bool    { return p.Category == "Catcher" }
func (p FieldingPosition) IsPitcher() bool    { return p.Category == "Pitcher" }

var positions = []FieldingPosition{
	{1, "P", "Pitcher", "Pitcher"},
	{2, "C", "Catcher", "Catcher"},
	{3, "1B", "First Baseman", "Infielder"},
	{4, "2B", "Second Baseman", "Infielder"},
	{5, "3B", "Third Baseman", "Infielder"},
	{6, "SS", "Shortstop", "Infielder"},
	{7, "LF", "Left Fielder", "Outfielder"},
	{8, "CF", "Center Fielder", "Outfielder"},
	{9, "RF", "Right Fielder", "Outfielder"},
	{10, "DH", "Designated Hitter", "Hitter"},
}

// PositionByCode looks up a position by scorekeeping number.
func PositionByCode(code int) (FieldingPosition, bool) {
	for _, p := range positions {
		if p.Code == code {
			return p, true
		}
	}
	return FieldingPosition{}, false
}

// ParsePosition accepts either an abbreviation ("SS", "1b") or a numeric
// code ("6") and returns the matching position.
func ParsePosition(s string) (FieldingPosition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldingPosition{}, fmt.Errorf("empty position")
	}
	if code, err := strconv.Atoi(s); err == nil {
		if p, ok := PositionByCode(code); ok {
			return p, nil
		}
		return FieldingPosition{}, fmt.Errorf("unknown position code %d", code)
	}
	upper := strings.ToUpper(s)
	for _, p := range positions {
		if p.Abbrev == upper {
			return p, nil
		}
	}
	return FieldingPosition{}, fmt.Errorf("unknown position %q", s)
}
