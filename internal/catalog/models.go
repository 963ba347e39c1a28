/*
Package catalog
File: models.go
Description:
    Document shapes for the catalog files (classes.yaml, schematics.yaml,
    spawning.yaml, inventory.yaml) and for resources exchanged over the API.

    Class, stat and quality references are plain names here; the loader
    resolves them against the class tree and turns them into domain types.
    No logic is performed in this file.
*/

package catalog

import "time"

// ClassNode is one node of the nested class tree in classes.yaml.
type ClassNode struct {
	Name      string         `yaml:"name" json:"name"`
	Caps      map[string]int `yaml:"caps" json:"caps,omitempty"` // stat abbreviation -> cap; 0 means uncapped
	Spawnable bool           `yaml:"spawnable" json:"spawnable"`
	SpaceOnly bool           `yaml:"space_only" json:"space_only"`
	Recycled  bool           `yaml:"recycled" json:"recycled"`
	Planets   []string       `yaml:"planets" json:"planets,omitempty"`
	Children  []ClassNode    `yaml:"children" json:"children,omitempty"`
}

// ClassFile maps to classes.yaml.
type ClassFile struct {
	Classes []ClassNode `yaml:"classes"`
}

// SlotDoc is a resource slot of a schematic.
type SlotDoc struct {
	Class       string `yaml:"class" json:"class"`
	Units       int    `yaml:"units" json:"units"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// LineDoc is one experimentation line.
type LineDoc struct {
	Description string         `yaml:"description" json:"description"`
	Weights     map[string]int `yaml:"weights" json:"weights"`
}

// GroupDoc is one experimentation group.
type GroupDoc struct {
	Name    string    `yaml:"name" json:"name"`
	Primary bool      `yaml:"primary" json:"primary"`
	Lines   []LineDoc `yaml:"lines" json:"lines"`
}

// SchematicDoc is one schematic.
type SchematicDoc struct {
	ID       int        `yaml:"id" json:"id"`
	Name     string     `yaml:"name" json:"name"`
	Category string     `yaml:"category" json:"category"`
	Quality  string     `yaml:"quality" json:"quality"` // HQ, LQ, Mixed or empty
	Slots    []SlotDoc  `yaml:"slots" json:"slots"`
	Groups   []GroupDoc `yaml:"groups" json:"groups"`
}

// SchematicFile maps to schematics.yaml.
type SchematicFile struct {
	Schematics []SchematicDoc `yaml:"schematics"`
}

// ResourceDoc is a resource instance as written in files and API bodies.
type ResourceDoc struct {
	ID        int64          `yaml:"id" json:"id"`
	Name      string         `yaml:"name" json:"name"`
	Class     string         `yaml:"class" json:"class"`
	Galaxy    string         `yaml:"galaxy" json:"galaxy"`
	Available time.Time      `yaml:"available" json:"available"`
	Stats     map[string]int `yaml:"stats" json:"stats"`
}

// SpawnFile maps to spawning.yaml.
type SpawnFile struct {
	Galaxy    string        `yaml:"galaxy" json:"galaxy"`
	Resources []ResourceDoc `yaml:"resources" json:"resources"`
}

// InventoryDoc is one inventory stack.
type InventoryDoc struct {
	Resource ResourceDoc `yaml:"resource" json:"resource"`
	Quantity int         `yaml:"quantity" json:"quantity"`
	Notes    string      `yaml:"notes" json:"notes"`
	Assignee string      `yaml:"assignee" json:"assignee,omitempty"`
}

// InventoryFile maps to inventory.yaml.
type InventoryFile struct {
	Galaxy    string         `yaml:"galaxy" json:"galaxy"`
	Inventory []InventoryDoc `yaml:"inventory" json:"inventory"`
}
