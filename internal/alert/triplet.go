/*
Package alert
File: triplet.go
Description:
    A Triplet is one finding: a requirement, the spawning resource that
    meets it and the inventory stack it was measured against.
*/

package alert

import (
	"math"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/pairs"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

// NoBaseline is what Better returns when nothing in inventory matches the pair.
var NoBaseline = math.Inf(1)

// IsNoBaseline reports whether v is the NoBaseline sentinel.
func IsNoBaseline(v float64) bool { return math.IsInf(v, 1) }

// Triplet ties a requirement, a spawning candidate and the best inventory
// match for the requirement (nil when there is none).
type Triplet struct {
	Pair          *pairs.RCWPair
	Spawning      resource.KnownResource
	Inventory     *resource.InventoryEntry
	SpawnRate     float64
	InventoryRate float64
}

// Better is how much the spawning resource outshines the inventory match,
// as a fraction: 0.25 means 25% better. It is never negative.
func (t Triplet) Better() float64 {
	if t.Inventory == nil {
		return NoBaseline
	}
	if t.SpawnRate <= 0 || t.SpawnRate <= t.InventoryRate {
		return 0
	}
	if t.InventoryRate <= 0 {
		// A worthless match gives no ratio; report the candidate's own share.
		return t.SpawnRate / resource.MaxRate
	}
	return t.SpawnRate/t.InventoryRate - 1.0
}
