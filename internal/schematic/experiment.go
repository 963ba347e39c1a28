/*
Package schematic
File: experiment.go
Description:
    Collapses a schematic's slots and experimentation lines into the minimal
    list of (resource class, filter) requirements it imposes.

    Every resource slot is crossed with every experiment line. Lines that end
    up on the same class with equal weights share one ExperimentWrapper whose
    display name lists each distinct line once; "Maximum X" and "Minimum X"
    fold into "Max/Min X". A schematic without experimentation yields one
    any-quality wrapper per slot class.
*/

package schematic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

const (
	nameSep      = ", "
	maxMinPrefix = "Max/Min "
)

// InvalidWrapperError reports an attempt to build a weighted wrapper
// without an experiment line behind it.
type InvalidWrapperError struct {
	Schematic int
	Class     resource.ClassID
}

func (e *InvalidWrapperError) Error() string {
	return fmt.Sprintf("schematic %d: weighted wrapper for class %d has no experiment line", e.Schematic, e.Class)
}

// ExperimentWrapper is one distinct requirement of a schematic.
type ExperimentWrapper struct {
	Schematic int
	Class     resource.ClassID
	Filter    resource.Filter
	Name      string
	Primary   bool
	Groups    []string
	Lines     []ExperimentLine
}

func newWrapper(schem int, class resource.ClassID, g *ExperimentGroup, line *ExperimentLine) (*ExperimentWrapper, error) {
	if line == nil || line.Weights.IsZero() {
		return nil, &InvalidWrapperError{Schematic: schem, Class: class}
	}
	w := &ExperimentWrapper{
		Schematic: schem,
		Class:     class,
		Filter:    resource.WeightFilter(line.Weights),
		Name:      strings.TrimSpace(line.Description),
		Lines:     []ExperimentLine{*line},
	}
	if g != nil {
		w.Primary = g.Primary
		w.Groups = []string{g.Name}
	}
	return w, nil
}

func newAnyQualityWrapper(schem int, class resource.ClassID) *ExperimentWrapper {
	return &ExperimentWrapper{
		Schematic: schem,
		Class:     class,
		Filter:    resource.AnyQuality,
		Name:      resource.AnyQualityLabel,
	}
}

// merge folds another line with the same key into w.
func (w *ExperimentWrapper) merge(g *ExperimentGroup, line *ExperimentLine) {
	w.Name = mergeName(w.Name, line.Description)
	w.Lines = append(w.Lines, *line)
	if g == nil {
		return
	}
	w.Primary = w.Primary || g.Primary
	for _, n := range w.Groups {
		if n == g.Name {
			return
		}
	}
	w.Groups = append(w.Groups, g.Name)
}

// IsAny reports whether w is an any-quality requirement.
func (w *ExperimentWrapper) IsAny() bool { return w.Filter.IsAny() }

// Rate scores res against this requirement.
func (w *ExperimentWrapper) Rate(t *resource.Tree, res resource.KnownResource, zeroIsMax bool) (float64, error) {
	return resource.RateFilter(t, res, w.Class, w.Filter, zeroIsMax)
}

type wrapperKey struct {
	class  resource.ClassID
	filter resource.Filter
}

// ExperimentsFor returns the distinct requirements of s.
// Primary requirements sort first, then by class order, then by weights.
func ExperimentsFor(t *resource.Tree, s *Schematic) ([]*ExperimentWrapper, error) {
	for _, slot := range s.Slots {
		if !t.Valid(slot.Class) {
			return nil, fmt.Errorf("schematic %s: %w", s, &resource.MissingResourceClassError{Name: t.Name(slot.Class)})
		}
	}

	index := make(map[wrapperKey]*ExperimentWrapper)
	var out []*ExperimentWrapper

	if !s.HasExperimentation() {
		for _, slot := range s.Slots {
			key := wrapperKey{slot.Class, resource.AnyQuality}
			if _, ok := index[key]; ok {
				continue
			}
			w := newAnyQualityWrapper(s.ID, slot.Class)
			index[key] = w
			out = append(out, w)
		}
		return out, nil
	}

	for _, slot := range s.Slots {
		for gi := range s.Groups {
			g := &s.Groups[gi]
			for li := range g.Lines {
				line := &g.Lines[li]
				// Lines without weights are not resource driven.
				if line.Weights.IsZero() {
					continue
				}
				key := wrapperKey{slot.Class, resource.WeightFilter(line.Weights)}
				if w, ok := index[key]; ok {
					w.merge(g, line)
					continue
				}
				w, err := newWrapper(s.ID, slot.Class, g, line)
				if err != nil {
					return nil, err
				}
				index[key] = w
				out = append(out, w)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Primary != b.Primary {
			return a.Primary
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Filter.Compare(b.Filter) < 0
	})
	return out, nil
}

// mergeName appends desc to a merged display name unless it is already
// represented. A Maximum/Minimum pair over the same stem becomes "Max/Min stem".
func mergeName(current, desc string) string {
	desc = strings.TrimSpace(desc)
	switch {
	case desc == "":
		return current
	case current == "":
		return desc
	case strings.Contains(strings.ToLower(current), strings.ToLower(desc)):
		return current
	}

	parts := strings.Split(current, nameSep)
	db, ds := splitBound(desc)
	if db != "" {
		for i, p := range parts {
			pb, ps := splitBound(p)
			if pb == "" || !strings.EqualFold(ps, ds) {
				continue
			}
			if pb == "maxmin" || pb == db {
				return current
			}
			parts[i] = maxMinPrefix + ps
			return strings.Join(parts, nameSep)
		}
	}
	return current + nameSep + desc
}

// splitBound separates a leading Maximum/Minimum word from the rest.
func splitBound(desc string) (bound, stem string) {
	d := strings.TrimSpace(desc)
	lower := strings.ToLower(d)
	for _, p := range []struct{ prefix, bound string }{
		{"max/min ", "maxmin"},
		{"maximum ", "max"},
		{"minimum ", "min"},
		{"max ", "max"},
		{"min ", "min"},
	} {
		if strings.HasPrefix(lower, p.prefix) {
			return p.bound, strings.TrimSpace(d[len(p.prefix):])
		}
	}
	return "", d
}
