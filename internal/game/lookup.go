/*
Package game
File: lookup.go
Description:
    Lookup helpers over the session: tracked schematics, experimentation
    requirements, ad-hoc rating and the best held stacks for a requirement.
*/

package game

import (
	"fmt"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/pairs"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

// Tracked resolves the union of all favorites. IDs that no longer name a
// schematic are returned separately.
func (s *Session) Tracked() ([]*schematic.Schematic, []int) {
	return s.Catalog().Resolve(s.assignees.AllFavorites())
}

// Schematic returns the schematic with id.
func (s *Session) Schematic(id int) (*schematic.Schematic, error) {
	return lookupSchematic(s.Catalog(), id)
}

func lookupSchematic(c *catalog.Catalog, id int) (*schematic.Schematic, error) {
	sc, ok := c.Schematic(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSchematic, id)
	}
	return sc, nil
}

// Experiments returns the merged requirements of schematic id.
func (s *Session) Experiments(id int) ([]*schematic.ExperimentWrapper, error) {
	cat := s.Catalog()
	sc, err := lookupSchematic(cat, id)
	if err != nil {
		return nil, err
	}
	return schematic.ExperimentsFor(cat.Tree, sc)
}

// Pairs returns the requirements of the tracked schematics: weighted ones
// with hq, any-quality ones otherwise.
func (s *Session) Pairs(hq bool) ([]*pairs.RCWPair, error) {
	v := s.current()
	schems, _ := v.catalog.Resolve(s.assignees.AllFavorites())
	return v.registry.AllForSchematics(schems, hq)
}

// Requirement turns a class name and stat weights into a pair key.
// Empty weights mean any quality.
func (s *Session) Requirement(class string, weights map[string]int) (pairs.Key, error) {
	return requirement(s.Catalog().Tree, class, weights)
}

func requirement(tree *resource.Tree, class string, weights map[string]int) (pairs.Key, error) {
	id, err := catalog.LookupClass(tree, class)
	if err != nil {
		return pairs.Key{}, err
	}
	if len(weights) == 0 {
		return pairs.Key{Class: id, Filter: resource.AnyQuality}, nil
	}
	w, err := catalog.ParseWeights(weights)
	if err != nil {
		return pairs.Key{}, err
	}
	if w.IsZero() {
		return pairs.Key{Class: id, Filter: resource.AnyQuality}, nil
	}
	return pairs.Key{Class: id, Filter: resource.WeightFilter(w)}, nil
}

// Rate rates doc against class and weights.
func (s *Session) Rate(doc catalog.ResourceDoc, class string, weights map[string]int) (float64, error) {
	v := s.current()
	tree := v.catalog.Tree
	k, err := requirement(tree, class, weights)
	if err != nil {
		return 0, err
	}
	res, err := catalog.ToKnown(tree, doc)
	if err != nil {
		return 0, err
	}
	return resource.RateFilter(tree, res, k.Class, k.Filter, v.cfg.Alerts.ZeroIsMax)
}

// BestFor ranks the held stacks that satisfy a requirement some schematic
// declares, best first.
func (s *Session) BestFor(class string, weights map[string]int) ([]RankedView, error) {
	v := s.current()
	tree := v.catalog.Tree
	k, err := requirement(tree, class, weights)
	if err != nil {
		return nil, err
	}

	p, ok := v.registry.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("%w: %s [%s]", ErrUnknownPair, tree.Name(k.Class), k.Filter)
	}
	ranked, err := v.engine.RankInventory(p, v.inventory)
	if err != nil {
		return nil, err
	}
	out := make([]RankedView, len(ranked))
	for i, r := range ranked {
		out[i] = RankedView{
			Entry: catalog.FromInventory(tree, *r.Entry),
			Rate:  r.Rate,
			Grade: resource.GradeLabel(resource.GradeFor(r.Rate, v.cfg.Alerts.Floors)),
		}
	}
	return out, nil
}
