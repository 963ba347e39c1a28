/*
Package resource
File: known.go
Description:
    Concrete resource instances (KnownResource) and the user's holdings of
    them (InventoryEntry). Both are handed to the core already parsed by the
    catalog layer; the core never mutates them.
*/

package resource

import "time"

// Values holds per-stat values. Zero means unset.
type Values [NumStats]int

// Value returns the value for s, zero for invalid or unset stats.
func (v Values) Value(s Stat) int {
	if !s.Valid() {
		return 0
	}
	return v[s]
}

// NewValues builds a Values table from a stat->value map.
func NewValues(m map[Stat]int) Values {
	var v Values
	for s, x := range m {
		if s.Valid() && x > 0 {
			v[s] = x
		}
	}
	return v
}

// KnownResource is one spawned resource of a concrete class.
type KnownResource struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Class     ClassID   `json:"class" yaml:"-"`
	Galaxy    string    `json:"galaxy" yaml:"galaxy"`
	Available time.Time `json:"available" yaml:"available"` // first reported available
	Stats     Values    `json:"stats" yaml:"-"`
}

// Value returns the stat value, zero when unset.
func (r KnownResource) Value(s Stat) int { return r.Stats.Value(s) }

// Age is how long the resource has been known to be available at now.
func (r KnownResource) Age(now time.Time) time.Duration {
	if r.Available.IsZero() {
		return 0
	}
	return now.Sub(r.Available)
}

// SameAs reports whether two records describe the same spawned resource.
// IDs win when both are set; otherwise galaxy plus name identify a spawn.
func (r KnownResource) SameAs(o KnownResource) bool {
	if r.ID != 0 && o.ID != 0 {
		return r.ID == o.ID
	}
	return r.Galaxy == o.Galaxy && r.Name != "" && r.Name == o.Name
}

// InventoryEntry is a resource the user holds.
type InventoryEntry struct {
	Resource KnownResource `json:"resource"`
	Quantity int           `json:"quantity"`
	Notes    string        `json:"notes"`
	Assignee string        `json:"assignee,omitempty"`
}
