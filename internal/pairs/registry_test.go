package pairs

import (
	"sync"
	"testing"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

func testTree(t *testing.T) *resource.Tree {
	t.Helper()
	tree, err := resource.NewTree([]resource.ClassSpec{
		{Name: "Resource"},
		{Name: "Steel", Parent: "Resource", Caps: map[resource.Stat]int{resource.StatSR: 1000, resource.StatUT: 1000, resource.StatOQ: 1000}},
		{Name: "Duralloy Steel", Parent: "Steel", Caps: map[resource.Stat]int{resource.StatSR: 700}},
		{Name: "Organic", Parent: "Resource", Caps: map[resource.Stat]int{resource.StatOQ: 1000}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func id(t *testing.T, tree *resource.Tree, name string) resource.ClassID {
	t.Helper()
	c, err := tree.ByName(name)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGetOrCreateDeduplicates(t *testing.T) {
	tree := testTree(t)
	reg := NewRegistry(tree)
	dura := id(t, tree, "Duralloy Steel")
	w := resource.WeightFilter(resource.Weights(int(resource.StatSR), 66, int(resource.StatUT), 33))

	a := reg.GetOrCreate(dura, w, 100)
	b := reg.GetOrCreate(dura, resource.WeightFilter(resource.Weights(int(resource.StatUT), 33, int(resource.StatSR), 66)), 200)
	if a != b {
		t.Fatalf("equal (class, weights) produced two pairs")
	}
	if got := a.Schematics(); len(got) != 2 || got[0] != 100 || got[1] != 200 {
		t.Fatalf("schematics=%v want=[100 200]", got)
	}

	reg.GetOrCreate(dura, w, 100)
	if got := a.Schematics(); len(got) != 2 {
		t.Fatalf("duplicate schematic registered: %v", got)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len=%d want=1", reg.Len())
	}
}

func TestDifferentWeightsStayDistinct(t *testing.T) {
	tree := testTree(t)
	reg := NewRegistry(tree)
	steel := id(t, tree, "Steel")

	a := reg.GetOrCreate(steel, resource.WeightFilter(resource.Weights(int(resource.StatSR), 100)), 1)
	b := reg.GetOrCreate(steel, resource.WeightFilter(resource.Weights(int(resource.StatUT), 100)), 1)
	c := reg.GetOrCreate(steel, resource.AnyQuality, 1)
	d := reg.GetOrCreate(steel, resource.AnyQuality, 2)

	if a == b || a.Equal(b) {
		t.Fatalf("different weights merged")
	}
	if c != d || len(c.Schematics()) != 2 {
		t.Fatalf("any-quality pairs for one class should merge")
	}
	if reg.Len() != 3 {
		t.Fatalf("len=%d want=3", reg.Len())
	}
}

func TestAllForSchematics(t *testing.T) {
	tree := testTree(t)
	reg := NewRegistry(tree)
	dura := id(t, tree, "Duralloy Steel")
	organic := id(t, tree, "Organic")
	w := resource.Weights(int(resource.StatSR), 66, int(resource.StatUT), 33)

	armor := &schematic.Schematic{ID: 1, Name: "Armor Segment",
		Slots:  []schematic.ResourceSlot{{Class: dura, Units: 30}},
		Groups: []schematic.ExperimentGroup{{Name: "Armor", Lines: []schematic.ExperimentLine{{Description: "Kinetic", Weights: w}}}},
	}
	plate := &schematic.Schematic{ID: 2, Name: "Deck Plate",
		Slots:  []schematic.ResourceSlot{{Class: dura, Units: 12}},
		Groups: []schematic.ExperimentGroup{{Name: "Build", Lines: []schematic.ExperimentLine{{Description: "Hit Points", Weights: w}}}},
	}
	ration := &schematic.Schematic{ID: 3, Name: "Ration",
		Slots: []schematic.ResourceSlot{{Class: organic, Units: 5}},
	}

	hq, err := reg.AllForSchematics([]*schematic.Schematic{armor, plate, ration}, true)
	if err != nil {
		t.Fatalf("AllForSchematics: %v", err)
	}
	if len(hq) != 1 {
		t.Fatalf("hq pairs=%d want=1", len(hq))
	}
	if got := hq[0].Schematics(); len(got) != 2 {
		t.Fatalf("shared pair schematics=%v want two", got)
	}

	lq, err := reg.AllForSchematics([]*schematic.Schematic{armor, plate, ration}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lq) != 1 || !lq[0].IsAny() || lq[0].Class != organic {
		t.Fatalf("unexpected lq pairs: %v", lq)
	}
}

func TestAllForSchematicsOrderIndependentIdentity(t *testing.T) {
	tree := testTree(t)
	dura := id(t, tree, "Duralloy Steel")
	steel := id(t, tree, "Steel")
	mk := func(sid int, c resource.ClassID, w resource.WeightVector) *schematic.Schematic {
		return &schematic.Schematic{ID: sid, Slots: []schematic.ResourceSlot{{Class: c}},
			Groups: []schematic.ExperimentGroup{{Name: "g", Lines: []schematic.ExperimentLine{{Description: "l", Weights: w}}}}}
	}
	sr := resource.Weights(int(resource.StatSR), 100)
	oq := resource.Weights(int(resource.StatOQ), 100)
	list := []*schematic.Schematic{mk(1, dura, sr), mk(2, steel, oq), mk(3, dura, sr)}
	rev := []*schematic.Schematic{list[2], list[1], list[0]}

	keys := func(ss []*schematic.Schematic) map[Key]int {
		reg := NewRegistry(tree)
		ps, err := reg.AllForSchematics(ss, true)
		if err != nil {
			t.Fatal(err)
		}
		m := make(map[Key]int)
		for _, p := range ps {
			m[p.Key()] = len(p.Schematics())
		}
		return m
	}
	a, b := keys(list), keys(rev)
	if len(a) != 2 || len(a) != len(b) {
		t.Fatalf("pair counts differ: %v vs %v", a, b)
	}
	for k, n := range a {
		if b[k] != n {
			t.Fatalf("pair %v: %d vs %d schematics", k, n, b[k])
		}
	}
}

func TestUnweightedLinesFallBackToAnyQuality(t *testing.T) {
	tree := testTree(t)
	reg := NewRegistry(tree)
	plate := &schematic.Schematic{ID: 7, Name: "Bulkhead",
		Slots:  []schematic.ResourceSlot{{Class: id(t, tree, "Steel"), Units: 40}},
		Groups: []schematic.ExperimentGroup{{Name: "Build", Lines: []schematic.ExperimentLine{{Description: "Assembly"}}}}}

	hq, err := reg.AllForSchematics([]*schematic.Schematic{plate}, true)
	if err != nil {
		t.Fatal(err)
	}
	lq, err := reg.AllForSchematics([]*schematic.Schematic{plate}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(hq) != 0 || len(lq) != 1 || !lq[0].IsAny() || lq[0].Class != id(t, tree, "Steel") {
		t.Fatalf("hq=%d lq=%v", len(hq), lq)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	tree := testTree(t)
	reg := NewRegistry(tree)
	steel := id(t, tree, "Steel")
	f := resource.WeightFilter(resource.Weights(int(resource.StatOQ), 100))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.GetOrCreate(steel, f, n)
		}(i)
	}
	wg.Wait()

	if reg.Len() != 1 {
		t.Fatalf("len=%d want=1", reg.Len())
	}
	p, _ := reg.Lookup(Key{Class: steel, Filter: f})
	if len(p.Schematics()) != 50 {
		t.Fatalf("schematics=%d want=50", len(p.Schematics()))
	}
}
