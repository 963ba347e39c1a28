/*
Package pairs
File: registry.go
Description:
    The RCWPair registry.

    Hundreds of schematics independently declare the same requirement, e.g.
    "Steel, SR:66 UT:33". The registry folds every such declaration into one
    RCWPair keyed by (class, filter) and records which schematics share it.

    Pairs are created lazily the first time a schematic is scanned. The
    registry as a whole is a derived cache: the session throws it away and
    builds a new one whenever schematics are reloaded.
*/

package pairs

import (
	"fmt"
	"sync"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

// Key identifies a pair. Equal keys mean equal pairs.
type Key struct {
	Class  resource.ClassID
	Filter resource.Filter
}

// RCWPair is a unique (resource class, filter) requirement.
// Class and Filter never change; the schematic set only grows.
type RCWPair struct {
	Class  resource.ClassID
	Filter resource.Filter

	mu         sync.Mutex
	schematics []int
	seen       map[int]bool
}

func newPair(k Key, schem int) *RCWPair {
	p := &RCWPair{Class: k.Class, Filter: k.Filter, seen: make(map[int]bool)}
	p.addSchematic(schem)
	return p
}

// Key returns the identity of p.
func (p *RCWPair) Key() Key { return Key{Class: p.Class, Filter: p.Filter} }

// Equal reports whether p and o are the same requirement.
func (p *RCWPair) Equal(o *RCWPair) bool {
	return o != nil && p.Key() == o.Key()
}

// IsAny reports whether the pair is an any-quality requirement.
func (p *RCWPair) IsAny() bool { return p.Filter.IsAny() }

// Schematics returns the IDs of the schematics sharing this pair, in the
// order they were registered.
func (p *RCWPair) Schematics() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.schematics...)
}

// Has reports whether schematic id references this pair.
func (p *RCWPair) Has(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[id]
}

func (p *RCWPair) addSchematic(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[id] {
		return
	}
	p.seen[id] = true
	p.schematics = append(p.schematics, id)
}

// Describe renders the pair with class names resolved, for logs and the API.
func (p *RCWPair) Describe(t *resource.Tree) string {
	return fmt.Sprintf("%s [%s]", t.Name(p.Class), p.Filter)
}

// Registry de-duplicates pairs across schematics.
type Registry struct {
	tree *resource.Tree

	mu    sync.Mutex
	pairs map[Key]*RCWPair
	order []*RCWPair
}

// NewRegistry creates an empty registry over tree.
func NewRegistry(tree *resource.Tree) *Registry {
	return &Registry{tree: tree, pairs: make(map[Key]*RCWPair)}
}

// GetOrCreate returns the pair for (class, filter), creating it on first use,
// and records schem as one of its schematics.
func (r *Registry) GetOrCreate(class resource.ClassID, filter resource.Filter, schem int) *RCWPair {
	k := Key{Class: class, Filter: filter}

	r.mu.Lock()
	p, ok := r.pairs[k]
	if !ok {
		p = newPair(k, schem)
		r.pairs[k] = p
		r.order = append(r.order, p)
	}
	r.mu.Unlock()

	if ok {
		p.addSchematic(schem)
	}
	return p
}

// Lookup returns the pair for k, if any schematic registered it.
func (r *Registry) Lookup(k Key) (*RCWPair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pairs[k]
	return p, ok
}

// Pairs returns every pair in discovery order.
func (r *Registry) Pairs() []*RCWPair {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RCWPair(nil), r.order...)
}

// Len is the number of distinct pairs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// AllForSchematics scans schematics in order and returns the distinct pairs
// they reference: weighted pairs when hq is set, any-quality pairs otherwise.
func (r *Registry) AllForSchematics(schems []*schematic.Schematic, hq bool) ([]*RCWPair, error) {
	var out []*RCWPair
	picked := make(map[*RCWPair]bool)

	for _, s := range schems {
		wrappers, err := schematic.ExperimentsFor(r.tree, s)
		if err != nil {
			return nil, err
		}
		for _, w := range wrappers {
			if w.IsAny() == hq {
				continue
			}
			p := r.GetOrCreate(w.Class, w.Filter, s.ID)
			if !picked[p] {
				picked[p] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}
