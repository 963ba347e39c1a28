/*
Package catalog
File: loader.go
Description:
    Turns catalog documents into validated domain objects.

    This is the boundary where malformed upstream data is caught. A slot or
    resource naming an unknown class is logged (with a "did you mean"
    suggestion) and skipped, so nothing unresolved ever reaches the engine.
    Each skip is also kept in Catalog.Problems so callers can tell whether
    the data is complete.
*/

package catalog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

// Catalog is the loaded class tree plus the schematics that resolved against it.
type Catalog struct {
	Tree       *resource.Tree
	Schematics []*schematic.Schematic
	Problems   []error

	byID map[int]*schematic.Schematic
}

// Complete reports whether everything loaded without skips.
func (c *Catalog) Complete() bool { return len(c.Problems) == 0 }

// Schematic returns the schematic with id.
func (c *Catalog) Schematic(id int) (*schematic.Schematic, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Resolve maps ids to schematics; unknown ids are returned separately.
func (c *Catalog) Resolve(ids []int) (found []*schematic.Schematic, missing []int) {
	for _, id := range ids {
		if s, ok := c.byID[id]; ok {
			found = append(found, s)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// Loader reads catalog files. Log receives skip notices; nil discards them.
type Loader struct {
	Log *log.Logger
}

func (l *Loader) logf(format string, args ...any) {
	if l == nil || l.Log == nil {
		return
	}
	l.Log.Printf(format, args...)
}

// Load reads the class tree and schematic files.
func (l *Loader) Load(classesPath, schematicsPath string) (*Catalog, error) {
	cf, err := os.ReadFile(classesPath)
	if err != nil {
		return nil, err
	}
	tree, err := ParseTree(cf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", classesPath, err)
	}

	sf, err := os.ReadFile(schematicsPath)
	if err != nil {
		return nil, err
	}
	var doc SchematicFile
	if err := yaml.Unmarshal(sf, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", schematicsPath, err)
	}
	return l.Build(tree, doc.Schematics), nil
}

// ParseTree decodes classes.yaml into a Tree. Nodes are flattened depth-first,
// which fixes the tree's natural order to the order of the file.
func ParseTree(data []byte) (*resource.Tree, error) {
	var doc ClassFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var specs []resource.ClassSpec
	var walk func(n ClassNode, parent string) error
	walk = func(n ClassNode, parent string) error {
		caps := make(map[resource.Stat]int, len(n.Caps))
		for k, v := range n.Caps {
			s, err := resource.ParseStat(k)
			if err != nil {
				return fmt.Errorf("class %q: %w", n.Name, err)
			}
			caps[s] = v
		}
		specs = append(specs, resource.ClassSpec{
			Name:      n.Name,
			Parent:    parent,
			Caps:      caps,
			Spawnable: n.Spawnable,
			SpaceOnly: n.SpaceOnly,
			Recycled:  n.Recycled,
			Planets:   n.Planets,
		})
		for _, c := range n.Children {
			if err := walk(c, n.Name); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range doc.Classes {
		if err := walk(root, ""); err != nil {
			return nil, err
		}
	}
	return resource.NewTree(specs)
}

// Build resolves schematic documents against tree. Slots with unknown classes
// and lines with unknown stats are skipped and recorded as problems.
func (l *Loader) Build(tree *resource.Tree, docs []SchematicDoc) *Catalog {
	c := &Catalog{Tree: tree, byID: make(map[int]*schematic.Schematic, len(docs))}

	for _, d := range docs {
		if _, dup := c.byID[d.ID]; dup {
			c.problem(l, fmt.Errorf("schematic %d: duplicate id, keeping the first", d.ID))
			continue
		}
		s := &schematic.Schematic{
			ID:       d.ID,
			Name:     d.Name,
			Category: d.Category,
			Quality:  schematic.ParseQuality(d.Quality),
		}
		for _, sd := range d.Slots {
			id, err := LookupClass(tree, sd.Class)
			if err != nil {
				c.problem(l, fmt.Errorf("schematic %d %q slot: %w", d.ID, d.Name, err))
				continue
			}
			s.Slots = append(s.Slots, schematic.ResourceSlot{Class: id, Units: sd.Units, Description: sd.Description})
		}
		for _, gd := range d.Groups {
			g := schematic.ExperimentGroup{Name: gd.Name, Primary: gd.Primary}
			for _, ld := range gd.Lines {
				w, err := ParseWeights(ld.Weights)
				if err != nil {
					c.problem(l, fmt.Errorf("schematic %d line %q: %w", d.ID, ld.Description, err))
					continue
				}
				g.Lines = append(g.Lines, schematic.ExperimentLine{Description: ld.Description, Weights: w})
			}
			s.Groups = append(s.Groups, g)
		}
		c.Schematics = append(c.Schematics, s)
		c.byID[s.ID] = s
	}

	sort.SliceStable(c.Schematics, func(i, j int) bool { return c.Schematics[i].ID < c.Schematics[j].ID })
	return c
}

func (c *Catalog) problem(l *Loader, err error) {
	c.Problems = append(c.Problems, err)
	l.logf("CATALOG: skipped %v", err)
}

// ParseWeights converts a stat-name map into a weight vector.
func ParseWeights(m map[string]int) (resource.WeightVector, error) {
	w := make(map[resource.Stat]int, len(m))
	for k, v := range m {
		s, err := resource.ParseStat(k)
		if err != nil {
			return resource.WeightVector{}, err
		}
		w[s] = v
	}
	return resource.NewWeightVector(w)
}

// FromWeights is the inverse of ParseWeights. Zero weights are omitted.
func FromWeights(w resource.WeightVector) map[string]int {
	out := make(map[string]int)
	for s, x := range w.Map() {
		out[s.String()] = x
	}
	return out
}

// ParseValues converts a stat-name map into resource values.
func ParseValues(m map[string]int) (resource.Values, error) {
	v := make(map[resource.Stat]int, len(m))
	for k, x := range m {
		s, err := resource.ParseStat(k)
		if err != nil {
			return resource.Values{}, err
		}
		if x < 0 || x > resource.MaxStatValue {
			return resource.Values{}, fmt.Errorf("%w: %s value %d out of range", resource.ErrInvalidValue, s, x)
		}
		v[s] = x
	}
	return resource.NewValues(v), nil
}

// ToKnown resolves a resource document.
func ToKnown(tree *resource.Tree, d ResourceDoc) (resource.KnownResource, error) {
	id, err := LookupClass(tree, d.Class)
	if err != nil {
		return resource.KnownResource{}, fmt.Errorf("resource %q: %w", d.Name, err)
	}
	vals, err := ParseValues(d.Stats)
	if err != nil {
		return resource.KnownResource{}, fmt.Errorf("resource %q: %w", d.Name, err)
	}
	return resource.KnownResource{
		ID:        d.ID,
		Name:      d.Name,
		Class:     id,
		Galaxy:    d.Galaxy,
		Available: d.Available,
		Stats:     vals,
	}, nil
}

// FromKnown is the inverse of ToKnown.
func FromKnown(tree *resource.Tree, r resource.KnownResource) ResourceDoc {
	stats := make(map[string]int)
	for _, s := range resource.AllStats() {
		if v := r.Value(s); v > 0 {
			stats[s.String()] = v
		}
	}
	return ResourceDoc{
		ID:        r.ID,
		Name:      r.Name,
		Class:     tree.Name(r.Class),
		Galaxy:    r.Galaxy,
		Available: r.Available,
		Stats:     stats,
	}
}

// Resources resolves a batch, logging and skipping bad entries.
func (l *Loader) Resources(tree *resource.Tree, galaxy string, docs []ResourceDoc) ([]resource.KnownResource, []error) {
	var out []resource.KnownResource
	var problems []error
	for _, d := range docs {
		if d.Galaxy == "" {
			d.Galaxy = galaxy
		}
		r, err := ToKnown(tree, d)
		if err != nil {
			problems = append(problems, err)
			l.logf("CATALOG: skipped %v", err)
			continue
		}
		out = append(out, r)
	}
	return out, problems
}

// Inventory resolves inventory stacks, logging and skipping bad entries.
func (l *Loader) Inventory(tree *resource.Tree, galaxy string, docs []InventoryDoc) ([]resource.InventoryEntry, []error) {
	var out []resource.InventoryEntry
	var problems []error
	for _, d := range docs {
		if d.Resource.Galaxy == "" {
			d.Resource.Galaxy = galaxy
		}
		r, err := ToKnown(tree, d.Resource)
		if err != nil {
			problems = append(problems, err)
			l.logf("CATALOG: skipped inventory %v", err)
			continue
		}
		out = append(out, resource.InventoryEntry{Resource: r, Quantity: d.Quantity, Notes: d.Notes, Assignee: d.Assignee})
	}
	return out, problems
}

// FromInventory is the document form of an inventory entry.
func FromInventory(tree *resource.Tree, e resource.InventoryEntry) InventoryDoc {
	return InventoryDoc{Resource: FromKnown(tree, e.Resource), Quantity: e.Quantity, Notes: e.Notes, Assignee: e.Assignee}
}

// ReadSpawnFile decodes a spawning.yaml stream.
func ReadSpawnFile(r io.Reader) (SpawnFile, error) {
	var f SpawnFile
	err := yaml.NewDecoder(r).Decode(&f)
	if err == io.EOF {
		err = nil
	}
	return f, err
}

// ReadInventoryFile decodes an inventory.yaml stream.
func ReadInventoryFile(r io.Reader) (InventoryFile, error) {
	var f InventoryFile
	err := yaml.NewDecoder(r).Decode(&f)
	if err == io.EOF {
		err = nil
	}
	return f, err
}

// LoadSpawning reads spawning.yaml and resolves it against tree.
func (l *Loader) LoadSpawning(tree *resource.Tree, path string) (string, []resource.KnownResource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer fh.Close()
	doc, err := ReadSpawnFile(fh)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	res, _ := l.Resources(tree, doc.Galaxy, doc.Resources)
	return strings.TrimSpace(doc.Galaxy), res, nil
}

// LoadInventory reads inventory.yaml and resolves it against tree.
func (l *Loader) LoadInventory(tree *resource.Tree, path string) (string, []resource.InventoryEntry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer fh.Close()
	doc, err := ReadInventoryFile(fh)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	inv, _ := l.Inventory(tree, doc.Galaxy, doc.Inventory)
	return strings.TrimSpace(doc.Galaxy), inv, nil
}
