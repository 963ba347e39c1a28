/*
Package game
File: models.go
Description:
    Defines the configuration file shape and the JSON views the session
    hands out (alerts, pulses, ranked inventory).

    Config maps directly to 'config.yaml'. The views are what the API and
    the WebSocket pulse serialize; the core domain types stay internal.

    No logic is performed here beyond building views from domain values.
*/

package game

import (
	"github.com/everforgeworks/galaxies-resource-alerts/internal/alert"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

// Config is the root configuration struct, mapping to 'config.yaml'.
type Config struct {
	Listen         string `yaml:"listen"`          // HTTP listen address
	DataDir        string `yaml:"data_dir"`        // Base directory for the files below
	ClassesFile    string `yaml:"classes_file"`    // Resource class tree
	SchematicsFile string `yaml:"schematics_file"` // Schematics with slots and experimentation
	SpawningFile   string `yaml:"spawning_file"`   // Initial spawn board; optional
	InventoryFile  string `yaml:"inventory_file"`  // Initial inventory when no snapshot exists; optional
	DBPath         string `yaml:"db_path"`         // SQLite file for assignees and inventory snapshots
	Galaxy         string `yaml:"galaxy"`          // Selected galaxy

	PulseSeconds int     `yaml:"pulse_seconds"` // Alert recompute interval
	RateLimit    float64 `yaml:"rate_limit"`    // Requests per second per client IP
	RateBurst    int     `yaml:"rate_burst"`    // Burst allowance per client IP

	Alerts alert.Settings `yaml:"alerts"`
}

// AlertView is one spawn-vs-inventory finding as sent to clients.
type AlertView struct {
	Class      string                `json:"class"`
	Filter     string                `json:"filter"`
	Weights    map[string]int        `json:"weights,omitempty"` // empty for any-quality requirements
	Schematics []int                 `json:"schematics"`
	Spawning   catalog.ResourceDoc   `json:"spawning"`
	SpawnRate  float64               `json:"spawn_rate"`
	Grade      string                `json:"grade"`
	Inventory  *catalog.InventoryDoc `json:"inventory,omitempty"`
	InvRate    float64               `json:"inventory_rate"`
	Better     *float64              `json:"better"`      // nil when there is nothing to compare against
	NoBaseline bool                  `json:"no_baseline"` // true when inventory has no match for the requirement
}

// PulseReport is the payload of a 'resource_alert' broadcast.
type PulseReport struct {
	Galaxy      string      `json:"galaxy"`
	HQ          []AlertView `json:"hq"`
	LQ          []AlertView `json:"lq"`
	Fingerprint string      `json:"fingerprint"`
}

// RankedView is an inventory entry with its rate for one requirement.
type RankedView struct {
	Entry catalog.InventoryDoc `json:"entry"`
	Rate  float64              `json:"rate"`
	Grade string               `json:"grade"`
}

// NewAlertView renders t with class names resolved against tree.
func NewAlertView(tree *resource.Tree, floors resource.Floors, t alert.Triplet) AlertView {
	v := AlertView{
		Class:      tree.Name(t.Pair.Class),
		Filter:     t.Pair.Filter.String(),
		Schematics: t.Pair.Schematics(),
		Spawning:   catalog.FromKnown(tree, t.Spawning),
		SpawnRate:  t.SpawnRate,
		InvRate:    t.InventoryRate,
	}
	if !t.Pair.IsAny() {
		v.Weights = catalog.FromWeights(t.Pair.Filter.Weights())
		v.Grade = resource.GradeLabel(resource.GradeFor(t.SpawnRate, floors))
	}
	if t.Inventory != nil {
		doc := catalog.FromInventory(tree, *t.Inventory)
		v.Inventory = &doc
	}
	better := t.Better()
	if alert.IsNoBaseline(better) {
		v.NoBaseline = true
	} else {
		v.Better = &better
	}
	return v
}
