/*
Package schematic
File: schematic.go
Description:
    Read-only schematic data as handed over by the catalog: resource slots,
    experimentation groups and their weighted lines, and the quality
    classification. Nothing in this file performs logic beyond small helpers.
*/

package schematic

import (
	"fmt"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

// Quality is the upstream classification of a schematic.
type Quality int

const (
	QualityUnknown Quality = iota
	QualityHQ              // experimentable, resource stats matter
	QualityLQ              // any member of the slot's class will do
	QualityMixed           // experimentable, but some slots are not
)

// QualityLabel is the display text for q.
func QualityLabel(q Quality) string {
	switch q {
	case QualityHQ:
		return "HQ"
	case QualityLQ:
		return "LQ"
	case QualityMixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

// ParseQuality is the inverse of QualityLabel; unrecognized text is Unknown.
func ParseQuality(v string) Quality {
	switch v {
	case "HQ", "hq":
		return QualityHQ
	case "LQ", "lq":
		return QualityLQ
	case "Mixed", "mixed":
		return QualityMixed
	default:
		return QualityUnknown
	}
}

// ResourceSlot is one resource requirement of a schematic.
type ResourceSlot struct {
	Class       resource.ClassID
	Units       int
	Description string
}

// ExperimentLine is one weighted experimentation line, e.g. "Maximum Damage".
type ExperimentLine struct {
	Description string
	Weights     resource.WeightVector
}

// ExperimentGroup is a named bundle of lines. Primary groups are the ones
// upstream data flags as the main reason to experiment on the schematic.
type ExperimentGroup struct {
	Name    string
	Primary bool
	Lines   []ExperimentLine
}

// Schematic is a craftable item design.
type Schematic struct {
	ID       int
	Name     string
	Category string
	Quality  Quality
	Slots    []ResourceSlot
	Groups   []ExperimentGroup
}

func (s *Schematic) String() string {
	return fmt.Sprintf("%s (%d)", s.Name, s.ID)
}

// HasExperimentation reports whether any group carries a weighted line.
// Lines without weights do not depend on resource quality.
func (s *Schematic) HasExperimentation() bool {
	for _, g := range s.Groups {
		for _, l := range g.Lines {
			if !l.Weights.IsZero() {
				return true
			}
		}
	}
	return false
}

// Classify returns the upstream quality when known, otherwise derives
// HQ or LQ from the presence of experimentation.
func Classify(s *Schematic) Quality {
	if s.Quality != QualityUnknown {
		return s.Quality
	}
	if s.HasExperimentation() {
		return QualityHQ
	}
	return QualityLQ
}
