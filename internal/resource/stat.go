/*
Package resource
File: stat.go
Description:
    The eleven numeric dimensions a resource can carry.
    Stats have a stable ordinal so every per-stat table in the engine
    is a fixed-size array indexed by Stat.
*/

package resource

import (
	"fmt"
	"strings"
)

// Stat identifies one of the eleven resource stats.
type Stat int

// Stat ordinals. The order is the in-game display order and is also the
// order used when weight vectors are compared.
const (
	StatER Stat = iota // Entangle Resistance
	StatCR             // Cold Resistance
	StatCD             // Conductivity
	StatDR             // Decay Resistance
	StatFL             // Flavor
	StatHR             // Heat Resistance
	StatMA             // Malleability
	StatPE             // Potential Energy
	StatOQ             // Overall Quality
	StatSR             // Shock Resistance
	StatUT             // Unit Toughness

	NumStats = 11
)

// MaxStatValue is the largest value any stat can hold in the game.
const MaxStatValue = 1000

var statAbbrev = [NumStats]string{"ER", "CR", "CD", "DR", "FL", "HR", "MA", "PE", "OQ", "SR", "UT"}

var statNames = [NumStats]string{
	"Entangle Resistance",
	"Cold Resistance",
	"Conductivity",
	"Decay Resistance",
	"Flavor",
	"Heat Resistance",
	"Malleability",
	"Potential Energy",
	"Overall Quality",
	"Shock Resistance",
	"Unit Toughness",
}

// AllStats returns the stats in ordinal order.
func AllStats() []Stat {
	out := make([]Stat, NumStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// Valid reports whether s is one of the eleven known stats.
func (s Stat) Valid() bool { return s >= 0 && s < NumStats }

// String returns the two-letter abbreviation, e.g. "OQ".
func (s Stat) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statAbbrev[s]
}

// Name returns the long display name, e.g. "Overall Quality".
func (s Stat) Name() string {
	if !s.Valid() {
		return s.String()
	}
	return statNames[s]
}

// ParseStat accepts either the abbreviation or the long name, case-insensitively.
func ParseStat(v string) (Stat, error) {
	v = strings.TrimSpace(v)
	for i := 0; i < NumStats; i++ {
		if strings.EqualFold(v, statAbbrev[i]) || strings.EqualFold(v, statNames[i]) {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown stat %q", ErrInvalidValue, v)
}

// MarshalText lets stats be used as YAML/JSON map keys.
func (s Stat) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stat %d", int(s))
	}
	return []byte(statAbbrev[s]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Stat) UnmarshalText(b []byte) error {
	st, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
