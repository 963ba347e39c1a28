package alert

import (
	"math"
	"testing"
	"time"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/pairs"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	tree     *resource.Tree
	steel    resource.ClassID
	dura     resource.ClassID
	organic  resource.ClassID
	creature resource.ClassID
	hide     resource.ClassID
	wooly    resource.ClassID
	flora    resource.ClassID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tree, err := resource.NewTree([]resource.ClassSpec{
		{Name: "Resource"},
		{Name: "Metal", Parent: "Resource", Caps: map[resource.Stat]int{resource.StatOQ: 1000, resource.StatSR: 1000, resource.StatUT: 1000}},
		{Name: "Steel", Parent: "Metal"},
		{Name: "Duralloy Steel", Parent: "Steel", Caps: map[resource.Stat]int{resource.StatSR: 700}, Spawnable: true, Planets: []string{"Corellia"}},
		{Name: "Organic", Parent: "Resource", Caps: map[resource.Stat]int{resource.StatOQ: 1000, resource.StatDR: 1000}},
		{Name: "Creature Resources", Parent: "Organic"},
		{Name: "Bristley Hide", Parent: "Creature Resources", Spawnable: true, Planets: []string{"Tatooine", "Naboo"}},
		{Name: "Kashyyykian Wooly Hide", Parent: "Creature Resources", Spawnable: true, Planets: []string{"Kashyyyk"}},
		{Name: "Flora Resources", Parent: "Organic", Spawnable: true, Planets: []string{"Naboo"}},
	})
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	get := func(n string) resource.ClassID {
		id, err := tree.ByName(n)
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	return fixture{
		tree:     tree,
		steel:    get("Steel"),
		dura:     get("Duralloy Steel"),
		organic:  get("Organic"),
		creature: get("Creature Resources"),
		hide:     get("Bristley Hide"),
		wooly:    get("Kashyyykian Wooly Hide"),
		flora:    get("Flora Resources"),
	}
}

func spawn(id int64, class resource.ClassID, ageDays float64, stats map[resource.Stat]int) resource.KnownResource {
	return resource.KnownResource{
		ID:        id,
		Name:      "res" + string(rune('A'+id)),
		Class:     class,
		Galaxy:    "Bloodfin",
		Available: testNow.Add(-time.Duration(ageDays * float64(24*time.Hour))),
		Stats:     resource.NewValues(stats),
	}
}

func (f fixture) engine(spawning []resource.KnownResource, s Settings) (*Engine, *pairs.Registry) {
	reg := pairs.NewRegistry(f.tree)
	e := NewEngine(f.tree, reg, SpawnList(spawning), s)
	e.Now = func() time.Time { return testNow }
	return e, reg
}

func oqPair(reg *pairs.Registry, class resource.ClassID) *pairs.RCWPair {
	return reg.GetOrCreate(class, resource.WeightFilter(resource.Weights(int(resource.StatOQ), 100)), 1)
}

func TestSpawningBeatsInventory(t *testing.T) {
	f := newFixture(t)
	fresh := spawn(2, f.dura, 1, map[resource.Stat]int{resource.StatOQ: 750})
	e, reg := f.engine([]resource.KnownResource{fresh}, DefaultSettings())
	p := oqPair(reg, f.steel)

	inv := []resource.InventoryEntry{{Resource: spawn(1, f.steel, 20, map[resource.Stat]int{resource.StatOQ: 600}), Quantity: 5000}}
	got, err := e.CompareHQ([]*pairs.RCWPair{p}, false, inv)
	if err != nil {
		t.Fatalf("CompareHQ: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("triplets=%d want=1", len(got))
	}
	tr := got[0]
	if tr.Inventory == nil || tr.Inventory.Resource.ID != 1 {
		t.Fatalf("unexpected inventory baseline: %+v", tr.Inventory)
	}
	if math.Abs(tr.Better()-0.25) > 1e-9 {
		t.Fatalf("better=%v want=0.25", tr.Better())
	}
}

func TestWorseSpawnNotReported(t *testing.T) {
	f := newFixture(t)
	e, reg := f.engine([]resource.KnownResource{spawn(2, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 500})}, DefaultSettings())
	inv := []resource.InventoryEntry{{Resource: spawn(1, f.steel, 20, map[resource.Stat]int{resource.StatOQ: 600}), Quantity: 1}}
	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.steel)}, false, inv)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("worse spawn reported: %+v", got)
	}
}

func TestInventoryMatchNotComparedWithItself(t *testing.T) {
	f := newFixture(t)
	same := spawn(7, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 800})
	e, reg := f.engine([]resource.KnownResource{same}, DefaultSettings())
	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.steel)}, false, []resource.InventoryEntry{{Resource: same, Quantity: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("inventory resource matched against itself")
	}
}

func TestNoInventoryUsesGoodFloor(t *testing.T) {
	f := newFixture(t)
	e, reg := f.engine([]resource.KnownResource{
		spawn(1, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 700}),
		spawn(2, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 760}),
		spawn(3, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 950}),
	}, DefaultSettings())
	p := oqPair(reg, f.steel)

	got, err := e.CompareHQ([]*pairs.RCWPair{p}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("good-floor triplets=%d want=2", len(got))
	}
	for _, tr := range got {
		if tr.Inventory != nil || !IsNoBaseline(tr.Better()) {
			t.Fatalf("expected no baseline, got %+v", tr)
		}
	}

	// great ignores inventory entirely, even a poor stack
	inv := []resource.InventoryEntry{{Resource: spawn(9, f.steel, 30, map[resource.Stat]int{resource.StatOQ: 100}), Quantity: 1}}
	got, err = e.CompareHQ([]*pairs.RCWPair{p}, true, inv)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Spawning.ID != 3 || got[0].Inventory != nil {
		t.Fatalf("great mode triplets=%+v", got)
	}
}

func TestAgeWindowAndOrdering(t *testing.T) {
	f := newFixture(t)
	s := DefaultSettings()
	e, reg := f.engine([]resource.KnownResource{
		spawn(1, f.steel, 0.5, map[resource.Stat]int{resource.StatOQ: 900}),
		spawn(2, f.steel, 2.5, map[resource.Stat]int{resource.StatOQ: 900}),
		spawn(3, f.steel, 4, map[resource.Stat]int{resource.StatOQ: 999}),
		spawn(4, f.steel, 1.5, map[resource.Stat]int{resource.StatOQ: 900}),
	}, s)

	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.steel)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{2, 4, 1} // oldest first; 4 days is outside the window
	if len(got) != len(want) {
		t.Fatalf("triplets=%d want=%d", len(got), len(want))
	}
	for i, tr := range got {
		if tr.Spawning.ID != want[i] {
			t.Fatalf("order[%d]=%d want=%d", i, tr.Spawning.ID, want[i])
		}
	}
}

func TestUndatedSpawnSortsWithFreshest(t *testing.T) {
	f := newFixture(t)
	undated := spawn(1, f.steel, 0, map[resource.Stat]int{resource.StatOQ: 900})
	undated.Available = time.Time{}
	e, reg := f.engine([]resource.KnownResource{
		undated,
		spawn(2, f.steel, 2, map[resource.Stat]int{resource.StatOQ: 900}),
		spawn(3, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 900}),
	}, DefaultSettings())

	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.steel)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("triplets=%d want=%d", len(got), len(want))
	}
	for i, tr := range got {
		if tr.Spawning.ID != want[i] {
			t.Fatalf("order[%d]=%d want=%d", i, tr.Spawning.ID, want[i])
		}
	}
}

func TestRestrictedRegions(t *testing.T) {
	f := newFixture(t)
	s := DefaultSettings()
	s.IgnoreRestricted = true
	wooly := spawn(1, f.wooly, 1, map[resource.Stat]int{resource.StatOQ: 990})
	bristle := spawn(2, f.hide, 1, map[resource.Stat]int{resource.StatOQ: 990})
	e, reg := f.engine([]resource.KnownResource{wooly, bristle}, s)

	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.creature)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Spawning.ID != 2 {
		t.Fatalf("restricted resource not excluded: %+v", got)
	}

	// a requirement on the restricted class itself still sees it
	got, err = e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.wooly)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Spawning.ID != 1 {
		t.Fatalf("restricted pair lost its own resource: %+v", got)
	}
}

func TestOrganicExcludesCreature(t *testing.T) {
	f := newFixture(t)
	hide := spawn(1, f.hide, 1, map[resource.Stat]int{resource.StatOQ: 990})
	flora := spawn(2, f.flora, 1, map[resource.Stat]int{resource.StatOQ: 990})

	s := DefaultSettings()
	e, reg := f.engine([]resource.KnownResource{hide, flora}, s)
	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.organic)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("organic without toggle=%d want=2", len(got))
	}

	s.OrganicExcludesCreature = true
	e, reg = f.engine([]resource.KnownResource{hide, flora}, s)
	got, err = e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.organic)}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Spawning.ID != 2 {
		t.Fatalf("creature resource accepted for organic: %+v", got)
	}
}

func TestMinStackIgnoresSmallInventory(t *testing.T) {
	f := newFixture(t)
	s := DefaultSettings()
	s.MinStack = 100
	e, reg := f.engine([]resource.KnownResource{spawn(2, f.steel, 1, map[resource.Stat]int{resource.StatOQ: 800})}, s)
	inv := []resource.InventoryEntry{{Resource: spawn(1, f.steel, 9, map[resource.Stat]int{resource.StatOQ: 950}), Quantity: 10}}

	got, err := e.CompareHQ([]*pairs.RCWPair{oqPair(reg, f.steel)}, false, inv)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Inventory != nil {
		t.Fatalf("small stack should not be a baseline: %+v", got)
	}
}

func TestLowQualityBranch(t *testing.T) {
	f := newFixture(t)
	s := DefaultSettings()
	e, _ := f.engine([]resource.KnownResource{
		spawn(1, f.flora, 1, nil),
		spawn(2, f.dura, 2, nil),
	}, s)

	ration := &schematic.Schematic{ID: 10, Name: "Ration", Slots: []schematic.ResourceSlot{{Class: f.organic, Units: 4}}}
	beam := &schematic.Schematic{ID: 11, Name: "Beam", Slots: []schematic.ResourceSlot{{Class: f.steel, Units: 4}}}

	inv := []resource.InventoryEntry{{Resource: spawn(5, f.dura, 20, nil), Quantity: 100}}
	got, err := e.TripletsFor(false, false, []*schematic.Schematic{ration, beam}, inv)
	if err != nil {
		t.Fatalf("TripletsFor: %v", err)
	}
	// steel is held; organic is not
	if len(got) != 1 || got[0].Spawning.ID != 1 || got[0].Inventory != nil {
		t.Fatalf("lq triplets=%+v", got)
	}
	if !IsNoBaseline(got[0].Better()) {
		t.Fatalf("lq triplet should have no baseline")
	}
}

func TestTripletsForHighQuality(t *testing.T) {
	f := newFixture(t)
	e, _ := f.engine([]resource.KnownResource{
		spawn(1, f.dura, 1, map[resource.Stat]int{resource.StatSR: 700, resource.StatUT: 1000}),
	}, DefaultSettings())

	w := resource.Weights(int(resource.StatSR), 66, int(resource.StatUT), 33)
	armor := &schematic.Schematic{ID: 1, Slots: []schematic.ResourceSlot{{Class: f.dura}},
		Groups: []schematic.ExperimentGroup{{Name: "Armor", Lines: []schematic.ExperimentLine{{Description: "Kinetic", Weights: w}}}}}
	plate := &schematic.Schematic{ID: 2, Slots: []schematic.ResourceSlot{{Class: f.dura}},
		Groups: []schematic.ExperimentGroup{{Name: "Build", Lines: []schematic.ExperimentLine{{Description: "HP", Weights: w}}}}}

	got, err := e.TripletsFor(true, false, []*schematic.Schematic{armor, plate}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("triplets=%d want=1 (shared pair)", len(got))
	}
	if math.Abs(got[0].SpawnRate-1000) > 1e-9 {
		t.Fatalf("rate=%v want=1000", got[0].SpawnRate)
	}
	if n := len(got[0].Pair.Schematics()); n != 2 {
		t.Fatalf("pair schematics=%d want=2", n)
	}
}

func TestBetterSemantics(t *testing.T) {
	inv := &resource.InventoryEntry{}
	tests := []struct {
		name string
		tr   Triplet
		want float64
	}{
		{"no baseline", Triplet{SpawnRate: 10}, NoBaseline},
		{"equal", Triplet{Inventory: inv, SpawnRate: 600, InventoryRate: 600}, 0},
		{"worse", Triplet{Inventory: inv, SpawnRate: 500, InventoryRate: 600}, 0},
		{"zero spawn", Triplet{Inventory: inv, SpawnRate: 0, InventoryRate: 0}, 0},
		{"better", Triplet{Inventory: inv, SpawnRate: 900, InventoryRate: 600}, 0.5},
		{"worthless baseline", Triplet{Inventory: inv, SpawnRate: 400, InventoryRate: 0}, 0.4},
	}
	for _, tc := range tests {
		got := tc.tr.Better()
		if IsNoBaseline(tc.want) {
			if !IsNoBaseline(got) {
				t.Fatalf("%s: got=%v want no baseline", tc.name, got)
			}
			continue
		}
		if IsNoBaseline(got) || math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestRankInventory(t *testing.T) {
	f := newFixture(t)
	e, reg := f.engine(nil, DefaultSettings())
	inv := []resource.InventoryEntry{
		{Resource: spawn(1, f.steel, 9, map[resource.Stat]int{resource.StatOQ: 300}), Quantity: 1},
		{Resource: spawn(2, f.dura, 9, map[resource.Stat]int{resource.StatOQ: 900}), Quantity: 1},
		{Resource: spawn(3, f.flora, 9, map[resource.Stat]int{resource.StatOQ: 999}), Quantity: 1},
	}
	got, err := e.RankInventory(oqPair(reg, f.steel), inv)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Entry.Resource.ID != 2 || got[1].Entry.Resource.ID != 1 {
		t.Fatalf("ranked=%+v", got)
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{MaxAgeDays: 12, MinStack: -4}.Normalize()
	if s.MaxAgeDays != MaxAgeDaysLimit || s.MinStack != 0 {
		t.Fatalf("normalize=%+v", s)
	}
	if s.Floors != resource.DefaultFloors() {
		t.Fatalf("zero floors should default")
	}
	if (Settings{MaxAgeDays: -1}).Normalize().MaxAgeDays != 0 {
		t.Fatalf("negative age not clamped")
	}
}
