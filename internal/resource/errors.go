/*
Package resource
File: errors.go
Description:
    Error types of the rating core. They carry enough context for the
    catalog boundary to report them and are matched with errors.As.
*/

package resource

import (
	"errors"
	"fmt"
)

// ErrInvalidValue marks malformed input such as an unknown stat name or a negative weight.
var ErrInvalidValue = errors.New("invalid value")

// UnknownStatError is returned when a class is asked about a stat it does not declare.
type UnknownStatError struct {
	Class string
	Stat  Stat
}

func (e *UnknownStatError) Error() string {
	return fmt.Sprintf("resource class %q does not declare stat %s", e.Class, e.Stat)
}

// DegenerateWeightError is returned by Rate for a weight vector whose weights sum to zero.
// It usually means the any-quality filter was passed where a weighted filter was expected.
type DegenerateWeightError struct {
	Weights WeightVector
}

func (e *DegenerateWeightError) Error() string {
	return fmt.Sprintf("weight vector %s has zero total weight", e.Weights)
}

// MissingResourceClassError is returned when a class name is not present in the tree.
// Suggestion holds the closest known name, if any.
type MissingResourceClassError struct {
	Name       string
	Suggestion string
}

func (e *MissingResourceClassError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown resource class %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown resource class %q", e.Name)
}
