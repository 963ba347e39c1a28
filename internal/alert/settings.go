/*
Package alert
File: settings.go
Description:
    User-tunable alert parameters. Out-of-range values are clamped by
    Normalize, never rejected.
*/

package alert

import (
	"time"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

const (
	DefaultMaxAgeDays = 3
	MaxAgeDaysLimit   = 6
)

// Settings are the user-tunable knobs of the spawn-vs-inventory comparison.
type Settings struct {
	// MaxAgeDays drops spawning resources first reported longer ago than this.
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days"`
	// MinStack ignores inventory stacks smaller than this.
	MinStack int `yaml:"min_stack" json:"min_stack"`
	// IgnoreRestricted hides Kashyyyk/Mustafar-only resources unless the
	// requirement itself is restricted to those regions.
	IgnoreRestricted bool `yaml:"ignore_restricted" json:"ignore_restricted"`
	// OrganicExcludesCreature stops generic Organic requirements from
	// accepting Creature Resources.
	OrganicExcludesCreature bool `yaml:"organic_excludes_creature" json:"organic_excludes_creature"`
	// ZeroIsMax treats uncapped stats as fully satisfied.
	ZeroIsMax bool `yaml:"zero_is_max" json:"zero_is_max"`
	// Floors supply the Good/Great thresholds used when there is no inventory baseline.
	Floors resource.Floors `yaml:"floors" json:"floors"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxAgeDays: DefaultMaxAgeDays,
		Floors:     resource.DefaultFloors(),
	}
}

// Normalize clamps out-of-range values instead of rejecting them.
func (s Settings) Normalize() Settings {
	if s.MaxAgeDays < 0 {
		s.MaxAgeDays = 0
	}
	if s.MaxAgeDays > MaxAgeDaysLimit {
		s.MaxAgeDays = MaxAgeDaysLimit
	}
	if s.MinStack < 0 {
		s.MinStack = 0
	}
	if s.Floors == (resource.Floors{}) {
		s.Floors = resource.DefaultFloors()
	}
	return s
}

// MaxAge is MaxAgeDays as a duration.
func (s Settings) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeDays) * 24 * time.Hour
}
