/*
Package alert
File: engine.go
Description:
    The spawn-vs-inventory comparison.

    For every requirement (RCWPair) of the tracked schematics the engine finds
    the best inventory match and reports each currently spawning resource
    that rates at least as well. Any-quality requirements are only reported
    when inventory holds nothing of the class at all.

    The engine is synchronous and pure with respect to its inputs: a call
    reads the spawn feed once, computes, and returns a fresh result.
*/

package alert

import (
	"sort"
	"time"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/pairs"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

// Class names the organic/creature toggle refers to.
const (
	OrganicClassName  = "Organic"
	CreatureClassName = "Creature Resources"
)

// SpawnFeed supplies the currently spawning resources of the selected galaxy.
type SpawnFeed interface {
	Spawning() []resource.KnownResource
}

// SpawnList is a fixed SpawnFeed.
type SpawnList []resource.KnownResource

func (l SpawnList) Spawning() []resource.KnownResource { return l }

// Engine compares spawning resources against inventory.
type Engine struct {
	tree     *resource.Tree
	registry *pairs.Registry
	feed     SpawnFeed
	settings Settings

	organic  resource.ClassID
	creature resource.ClassID

	// Now is the clock used for resource age; replaceable in tests.
	Now func() time.Time
}

// NewEngine wires an engine; settings are normalized.
func NewEngine(tree *resource.Tree, reg *pairs.Registry, feed SpawnFeed, settings Settings) *Engine {
	e := &Engine{
		tree:     tree,
		registry: reg,
		feed:     feed,
		settings: settings.Normalize(),
		organic:  resource.NoClass,
		creature: resource.NoClass,
		Now:      time.Now,
	}
	if id, err := tree.ByName(OrganicClassName); err == nil {
		e.organic = id
	}
	if id, err := tree.ByName(CreatureClassName); err == nil {
		e.creature = id
	}
	return e
}

// Settings returns the normalized settings in effect.
func (e *Engine) Settings() Settings { return e.settings }

// TripletsFor resolves the schematics to pairs and compares them. With hq
// the weighted requirements are examined; otherwise the any-quality ones.
// great ignores inventory and demands the Great floor.
func (e *Engine) TripletsFor(hq, great bool, schems []*schematic.Schematic, inventory []resource.InventoryEntry) ([]Triplet, error) {
	ps, err := e.registry.AllForSchematics(schems, hq)
	if err != nil {
		return nil, err
	}
	if hq {
		return e.CompareHQ(ps, great, inventory)
	}
	return e.CompareLQ(ps, great, inventory), nil
}

// CompareHQ runs the weighted branch over ps. Any-quality pairs are skipped.
func (e *Engine) CompareHQ(ps []*pairs.RCWPair, great bool, inventory []resource.InventoryEntry) ([]Triplet, error) {
	spawning := e.fresh()
	var out []Triplet

	for _, p := range ps {
		if p.IsAny() {
			continue
		}

		var best *resource.InventoryEntry
		var bestRate float64
		if !great {
			ranked, err := e.RankInventory(p, inventory)
			if err != nil {
				return nil, err
			}
			if len(ranked) > 0 {
				best = ranked[0].Entry
				bestRate = ranked[0].Rate
			}
		}

		threshold := bestRate
		switch {
		case best != nil:
		case great:
			threshold = e.settings.Floors.Floor(resource.GradeGreat)
		default:
			threshold = e.settings.Floors.Floor(resource.GradeGood)
		}

		for _, r := range spawning {
			if !e.Accepts(p, r) {
				continue
			}
			if best != nil && r.SameAs(best.Resource) {
				continue
			}
			rate, err := resource.Rate(e.tree, r, p.Class, p.Filter.Weights(), e.settings.ZeroIsMax)
			if err != nil {
				return nil, err
			}
			if rate < threshold {
				continue
			}
			out = append(out, Triplet{
				Pair:          p,
				Spawning:      r,
				Inventory:     best,
				SpawnRate:     rate,
				InventoryRate: bestRate,
			})
		}
	}

	sortByAge(out)
	return out, nil
}

// CompareLQ runs the any-quality branch: for every pair with no qualifying
// inventory at all, each matching spawning resource is reported.
func (e *Engine) CompareLQ(ps []*pairs.RCWPair, great bool, inventory []resource.InventoryEntry) []Triplet {
	spawning := e.fresh()
	var out []Triplet

	for _, p := range ps {
		if !p.IsAny() {
			continue
		}
		if !great && e.holds(p, inventory) {
			continue
		}
		for _, r := range spawning {
			if e.Accepts(p, r) {
				out = append(out, Triplet{Pair: p, Spawning: r})
			}
		}
	}

	sortByAge(out)
	return out
}

// Ranked is an inventory entry with its rate against a pair.
type Ranked struct {
	Entry *resource.InventoryEntry
	Rate  float64
}

// RankInventory returns every inventory entry that satisfies p, best first.
// Entries below the minimum stack size are ignored. Ties keep inventory order.
func (e *Engine) RankInventory(p *pairs.RCWPair, inventory []resource.InventoryEntry) ([]Ranked, error) {
	var out []Ranked
	for i := range inventory {
		inv := &inventory[i]
		if inv.Quantity < e.settings.MinStack || !e.Accepts(p, inv.Resource) {
			continue
		}
		rate, err := resource.RateFilter(e.tree, inv.Resource, p.Class, p.Filter, e.settings.ZeroIsMax)
		if err != nil {
			return nil, err
		}
		out = append(out, Ranked{Entry: inv, Rate: rate})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out, nil
}

// Accepts reports whether r may stand in for p: its class must be p's class
// or a descendant, subject to the organic/creature and restricted-region toggles.
func (e *Engine) Accepts(p *pairs.RCWPair, r resource.KnownResource) bool {
	if !e.tree.IsSubclass(r.Class, p.Class) {
		return false
	}
	if e.settings.OrganicExcludesCreature && p.Class == e.organic && e.tree.IsSubclass(r.Class, e.creature) {
		return false
	}
	if e.settings.IgnoreRestricted && e.tree.Restricted(r.Class) && !e.tree.Restricted(p.Class) {
		return false
	}
	return true
}

func (e *Engine) holds(p *pairs.RCWPair, inventory []resource.InventoryEntry) bool {
	for _, inv := range inventory {
		if inv.Quantity >= e.settings.MinStack && e.Accepts(p, inv.Resource) {
			return true
		}
	}
	return false
}

// fresh returns the spawning resources inside the age window.
func (e *Engine) fresh() []resource.KnownResource {
	if e.feed == nil {
		return nil
	}
	now := e.Now()
	maxAge := e.settings.MaxAge()
	var out []resource.KnownResource
	for _, r := range e.feed.Spawning() {
		if r.Age(now) <= maxAge {
			out = append(out, r)
		}
	}
	return out
}

// sortByAge orders by first-availability time, oldest first. Undated
// spawns have age zero and sort last with the freshest.
func sortByAge(ts []Triplet) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i].Spawning.Available, ts[j].Spawning.Available
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
}
