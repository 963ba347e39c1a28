/*
Package resource
File: rate.go
Description:
    The weighted average result (WAR) of a resource against a weight vector.

    Each weighted stat is normalized against the cap of the class the
    resource is being judged as, so resources of unrelated classes can be
    compared on one 0..1000 scale:

        rate = sum( min(value/cap, 1) * 1000 * weight/sum(weights) )
*/

package resource

import "math"

// MaxRate is the best possible rate.
const MaxRate = 1000.0

// Rate scores res against weights, normalizing each stat by class's cap.
//
// The function does not check that res belongs to class; callers filter
// membership first. A stat whose cap is Uncapped counts as fully satisfied
// when zeroIsMax is set, otherwise it is normalized against MaxStatValue.
func Rate(t *Tree, res KnownResource, class ClassID, weights WeightVector, zeroIsMax bool) (float64, error) {
	sum := weights.Sum()
	if sum == 0 {
		return 0, &DegenerateWeightError{Weights: weights}
	}

	total := 0.0
	for _, s := range weights.Stats() {
		cp, err := t.Cap(class, s)
		if err != nil {
			return 0, err
		}

		var ratio float64
		switch {
		case cp == Uncapped && zeroIsMax:
			ratio = 1.0
		case cp == Uncapped:
			ratio = float64(res.Value(s)) / MaxStatValue
		default:
			ratio = float64(res.Value(s)) / float64(cp)
		}
		ratio = math.Max(0, math.Min(ratio, 1.0))

		total += ratio * MaxRate * float64(weights.Weight(s)) / float64(sum)
	}

	// Guard float drift at the top of the scale.
	return math.Min(total, MaxRate), nil
}

// RateFilter rates res against a Filter. The any-quality sentinel has no
// stat preference, so every resource reaching it rates MaxRate.
func RateFilter(t *Tree, res KnownResource, class ClassID, f Filter, zeroIsMax bool) (float64, error) {
	if f.IsAny() {
		return MaxRate, nil
	}
	return Rate(t, res, class, f.Weights(), zeroIsMax)
}
