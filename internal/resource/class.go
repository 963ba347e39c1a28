/*
Package resource
File: class.go
Description:
    The resource-class tree.

    Classes live in a flat table (the Tree) and refer to each other by
    ClassID index. "Is-a" questions walk parent indices; nothing relies on
    Go type dispatch. A ClassID's numeric order is the tree's natural order:
    classes are stored parent-before-child in the order the catalog lists them.

    A class that declares no stat caps inherits its parent's. A class that
    declares some caps starts from the parent's table and overrides per stat.
*/

package resource

import (
	"fmt"
	"sort"
	"strings"
)

// ClassID indexes a class in its Tree.
type ClassID int

// NoClass is the parent of root classes and the zero answer of failed lookups.
const NoClass ClassID = -1

// Uncapped marks a declared stat whose cap is "no effective maximum".
const Uncapped = 0

// RestrictedPlanets are the two regions whose local resources only spawn there.
var RestrictedPlanets = []string{"Kashyyyk", "Mustafar"}

// ClassSpec is the loader-facing description of one class.
// Parent is a class name that must appear earlier in the list, or "" for a root.
type ClassSpec struct {
	Name      string
	Parent    string
	Caps      map[Stat]int
	Spawnable bool
	SpaceOnly bool
	Recycled  bool
	Planets   []string
}

// ResourceClass is one immutable node of the tree.
type ResourceClass struct {
	id        ClassID
	name      string
	parent    ClassID
	depth     int
	children  []ClassID
	declared  [NumStats]bool
	caps      [NumStats]int
	spawnable bool
	spaceOnly bool
	recycled  bool
	planets   []string
}

func (c *ResourceClass) ID() ClassID        { return c.id }
func (c *ResourceClass) Name() string       { return c.name }
func (c *ResourceClass) Parent() ClassID    { return c.parent }
func (c *ResourceClass) Depth() int         { return c.depth }
func (c *ResourceClass) Spawnable() bool    { return c.spawnable }
func (c *ResourceClass) SpaceOnly() bool    { return c.spaceOnly }
func (c *ResourceClass) RecycledOnly() bool { return c.recycled }

// Planets returns a copy of the planets this class spawns on.
func (c *ResourceClass) Planets() []string { return append([]string(nil), c.planets...) }

// Has reports whether the class declares stat s.
func (c *ResourceClass) Has(s Stat) bool { return s.Valid() && c.declared[s] }

// Stats returns the declared stats in ordinal order.
func (c *ResourceClass) Stats() []Stat {
	var out []Stat
	for i, ok := range c.declared {
		if ok {
			out = append(out, Stat(i))
		}
	}
	return out
}

// Tree is the complete, immutable class hierarchy for a session.
type Tree struct {
	classes []ResourceClass
	byName  map[string]ClassID
}

// NewTree builds the arena from specs listed parent-before-child.
func NewTree(specs []ClassSpec) (*Tree, error) {
	t := &Tree{
		classes: make([]ResourceClass, 0, len(specs)),
		byName:  make(map[string]ClassID, len(specs)),
	}
	for _, sp := range specs {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			return nil, fmt.Errorf("resource class with empty name")
		}
		if _, dup := t.byName[strings.ToLower(name)]; dup {
			return nil, fmt.Errorf("duplicate resource class %q", name)
		}

		rc := ResourceClass{
			id:        ClassID(len(t.classes)),
			name:      name,
			parent:    NoClass,
			spawnable: sp.Spawnable,
			spaceOnly: sp.SpaceOnly,
			recycled:  sp.Recycled,
			planets:   append([]string(nil), sp.Planets...),
		}

		if sp.Parent != "" {
			pid, ok := t.byName[strings.ToLower(sp.Parent)]
			if !ok {
				return nil, fmt.Errorf("class %q: parent %w", name, &MissingResourceClassError{Name: sp.Parent})
			}
			parent := &t.classes[pid]
			rc.parent = pid
			rc.depth = parent.depth + 1
			rc.declared = parent.declared
			rc.caps = parent.caps
		}

		for s, cp := range sp.Caps {
			if !s.Valid() {
				return nil, fmt.Errorf("class %q: invalid stat %d", name, int(s))
			}
			if cp < 0 || cp > MaxStatValue {
				return nil, fmt.Errorf("class %q: cap %d for %s out of range", name, cp, s)
			}
			rc.declared[s] = true
			rc.caps[s] = cp
		}

		t.classes = append(t.classes, rc)
		t.byName[strings.ToLower(name)] = rc.id
		if rc.parent != NoClass {
			p := &t.classes[rc.parent]
			p.children = append(p.children, rc.id)
		}
	}
	return t, nil
}

// Len is the number of classes in the tree.
func (t *Tree) Len() int { return len(t.classes) }

// Valid reports whether id refers to a class of this tree.
func (t *Tree) Valid(id ClassID) bool { return id >= 0 && int(id) < len(t.classes) }

// Class returns the node for id, or nil if id is not valid.
func (t *Tree) Class(id ClassID) *ResourceClass {
	if !t.Valid(id) {
		return nil
	}
	return &t.classes[id]
}

// Name is a convenience for Class(id).Name() that tolerates invalid ids.
func (t *Tree) Name(id ClassID) string {
	if c := t.Class(id); c != nil {
		return c.name
	}
	return fmt.Sprintf("ClassID(%d)", int(id))
}

// ByName looks a class up case-insensitively.
func (t *Tree) ByName(name string) (ClassID, error) {
	if id, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id, nil
	}
	return NoClass, &MissingResourceClassError{Name: name}
}

// Names returns every class name in natural order.
func (t *Tree) Names() []string {
	out := make([]string, len(t.classes))
	for i := range t.classes {
		out[i] = t.classes[i].name
	}
	return out
}

// Roots returns the classes without a parent.
func (t *Tree) Roots() []ClassID {
	var out []ClassID
	for i := range t.classes {
		if t.classes[i].parent == NoClass {
			out = append(out, ClassID(i))
		}
	}
	return out
}

// IsSubclass reports whether class equals ancestor or descends from it. O(depth).
func (t *Tree) IsSubclass(class, ancestor ClassID) bool {
	if !t.Valid(class) || !t.Valid(ancestor) {
		return false
	}
	if t.classes[ancestor].depth > t.classes[class].depth {
		return false
	}
	for c := class; c != NoClass; c = t.classes[c].parent {
		if c == ancestor {
			return true
		}
	}
	return false
}

// Children returns the direct children of class in natural order.
func (t *Tree) Children(class ClassID) []ClassID {
	if !t.Valid(class) {
		return nil
	}
	return append([]ClassID(nil), t.classes[class].children...)
}

// Ancestors returns the strict ancestors of class, nearest first.
func (t *Tree) Ancestors(class ClassID) []ClassID {
	if !t.Valid(class) {
		return nil
	}
	var out []ClassID
	for c := t.classes[class].parent; c != NoClass; c = t.classes[c].parent {
		out = append(out, c)
	}
	return out
}

// Cap returns the declared cap for stat in class.
// The result may be Uncapped; callers decide what that means.
func (t *Tree) Cap(class ClassID, stat Stat) (int, error) {
	c := t.Class(class)
	if c == nil {
		return 0, &MissingResourceClassError{Name: t.Name(class)}
	}
	if !c.Has(stat) {
		return 0, &UnknownStatError{Class: c.name, Stat: stat}
	}
	return c.caps[stat], nil
}

// Distance is the number of edges between a and b through their nearest
// common ancestor, or -1 if they are in different root trees.
func (t *Tree) Distance(a, b ClassID) int {
	if !t.Valid(a) || !t.Valid(b) {
		return -1
	}
	da, db := t.classes[a].depth, t.classes[b].depth
	steps := 0
	for da > db {
		a = t.classes[a].parent
		da--
		steps++
	}
	for db > da {
		b = t.classes[b].parent
		db--
		steps++
	}
	for a != b {
		a = t.classes[a].parent
		b = t.classes[b].parent
		if a == NoClass || b == NoClass {
			return -1
		}
		steps += 2
	}
	return steps
}

// RootChildrenFor reduces classes to the members that are not a sub-class of
// any other member, de-duplicated and in natural order.
func (t *Tree) RootChildrenFor(classes []ClassID) []ClassID {
	seen := make(map[ClassID]bool, len(classes))
	var result []ClassID
	for _, cand := range classes {
		if !t.Valid(cand) || seen[cand] {
			continue
		}
		seen[cand] = true

		// Walk up; if any ancestor is also a member, the ancestor covers cand.
		covered := false
		for c := t.classes[cand].parent; c != NoClass; c = t.classes[c].parent {
			if contains(classes, c) {
				covered = true
				break
			}
		}
		if !covered {
			result = append(result, cand)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func contains(ids []ClassID, id ClassID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Restricted reports whether every planet the class spawns on is one of the
// RestrictedPlanets. Classes without planet data are not restricted.
func (t *Tree) Restricted(class ClassID) bool {
	c := t.Class(class)
	if c == nil || len(c.planets) == 0 {
		return false
	}
	for _, p := range c.planets {
		found := false
		for _, r := range RestrictedPlanets {
			if strings.EqualFold(p, r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
