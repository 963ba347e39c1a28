/*
Package resource
File: weights.go
Description:
    WeightVector and Filter.

    A WeightVector assigns an integer percentage to each stat. Schematic data
    is authored in whole percents, so 33/33/33 style vectors that sum to 99
    are normal and every consumer normalizes by Sum() rather than by 100.

    A Filter is what a requirement is keyed on: either a WeightVector or the
    any-quality sentinel. Both types are plain comparable values, so == is
    value equality and they can be used directly as map keys.
*/

package resource

import (
	"fmt"
	"strings"
)

// WeightVector is an immutable per-stat weight table.
type WeightVector struct {
	w [NumStats]int
}

// NewWeightVector builds a vector from a stat->weight map.
// Negative weights and unknown stats are rejected.
func NewWeightVector(weights map[Stat]int) (WeightVector, error) {
	var v WeightVector
	for s, w := range weights {
		if !s.Valid() {
			return WeightVector{}, fmt.Errorf("%w: weight for invalid stat %d", ErrInvalidValue, int(s))
		}
		if w < 0 {
			return WeightVector{}, fmt.Errorf("%w: negative weight %d for %s", ErrInvalidValue, w, s)
		}
		v.w[s] = w
	}
	return v, nil
}

// Weights builds a vector from alternating stat/weight arguments and panics on bad input.
// Intended for tables and tests: Weights(StatSR, 66, StatUT, 33).
func Weights(pairs ...int) WeightVector {
	if len(pairs)%2 != 0 {
		panic("resource.Weights: odd number of arguments")
	}
	m := make(map[Stat]int, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m[Stat(pairs[i])] = pairs[i+1]
	}
	v, err := NewWeightVector(m)
	if err != nil {
		panic("resource.Weights: " + err.Error())
	}
	return v
}

// Weight returns the weight for s; zero for invalid stats.
func (v WeightVector) Weight(s Stat) int {
	if !s.Valid() {
		return 0
	}
	return v.w[s]
}

// Sum is the total of all weights. Source data may legitimately sum to 99.
func (v WeightVector) Sum() int {
	total := 0
	for _, w := range v.w {
		total += w
	}
	return total
}

// Stats returns the stats with a positive weight, in ordinal order.
func (v WeightVector) Stats() []Stat {
	var out []Stat
	for i, w := range v.w {
		if w > 0 {
			out = append(out, Stat(i))
		}
	}
	return out
}

// IsZero reports whether no stat carries weight.
func (v WeightVector) IsZero() bool { return v.Sum() == 0 }

// Map returns a copy of the non-zero weights.
func (v WeightVector) Map() map[Stat]int {
	m := make(map[Stat]int)
	for i, w := range v.w {
		if w > 0 {
			m[Stat(i)] = w
		}
	}
	return m
}

// Compare orders vectors stat by stat in ordinal order, by ascending weight.
// It returns -1, 0 or +1.
func (v WeightVector) Compare(o WeightVector) int {
	for i := 0; i < NumStats; i++ {
		switch {
		case v.w[i] < o.w[i]:
			return -1
		case v.w[i] > o.w[i]:
			return 1
		}
	}
	return 0
}

// String renders the vector the way players write it, e.g. "SR:66 UT:33".
func (v WeightVector) String() string {
	var b strings.Builder
	for i, w := range v.w {
		if w == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%d", Stat(i), w)
	}
	if b.Len() == 0 {
		return "{}"
	}
	return b.String()
}

// Filter is a requirement on resource stats: a weight vector or "any quality".
type Filter struct {
	weights WeightVector
	any     bool
}

// AnyQuality is the sentinel filter for schematics that accept any member of a class.
var AnyQuality = Filter{any: true}

// WeightFilter wraps a weight vector as a Filter.
func WeightFilter(w WeightVector) Filter { return Filter{weights: w} }

// IsAny reports whether f is the any-quality sentinel.
func (f Filter) IsAny() bool { return f.any }

// Weights returns the weight vector; the zero vector for AnyQuality.
func (f Filter) Weights() WeightVector { return f.weights }

// Compare orders weighted filters before the any-quality sentinel.
func (f Filter) Compare(o Filter) int {
	switch {
	case f.any && o.any:
		return 0
	case f.any:
		return 1
	case o.any:
		return -1
	}
	return f.weights.Compare(o.weights)
}

func (f Filter) String() string {
	if f.any {
		return AnyQualityLabel
	}
	return f.weights.String()
}

// AnyQualityLabel is the display name of the any-quality filter.
const AnyQualityLabel = "Any quality"
