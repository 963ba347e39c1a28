/*
Package catalog
File: suggest.go
Description:
    Case-insensitive class lookup with a Levenshtein "did you mean"
    suggestion for names that do not resolve.
*/

package catalog

import (
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
)

// LookupClass resolves a class name. On a miss the returned
// MissingResourceClassError carries the closest known name, if one is close enough.
func LookupClass(tree *resource.Tree, name string) (resource.ClassID, error) {
	id, err := tree.ByName(name)
	if err == nil {
		return id, nil
	}
	var miss *resource.MissingResourceClassError
	if errors.As(err, &miss) {
		miss.Suggestion = Suggest(tree, name)
	}
	return resource.NoClass, err
}

// Suggest returns the class name closest to name by edit distance, or "".
func Suggest(tree *resource.Tree, name string) string {
	target := strings.ToLower(strings.TrimSpace(name))
	if len(target) < 3 {
		return ""
	}
	best, bestDist := "", -1
	for _, cand := range tree.Names() {
		dist := levenshtein.ComputeDistance(target, strings.ToLower(cand))
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
