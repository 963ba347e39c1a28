/*
Package resource
File: grade.go
Description:
    Quality grades for a rate and the configurable floors that separate them.
    GradeLabel is the display form, kept outside the type.
*/

package resource

// Grade buckets a rate for display and for alert floors.
type Grade int

const (
	GradePoor Grade = iota
	GradeFair
	GradeGood
	GradeGreat
	GradeExcellent
)

// Floors are the minimum rates for each grade above Poor.
type Floors struct {
	Fair      float64 `yaml:"fair" json:"fair"`
	Good      float64 `yaml:"good" json:"good"`
	Great     float64 `yaml:"great" json:"great"`
	Excellent float64 `yaml:"excellent" json:"excellent"`
}

// DefaultFloors are the out-of-the-box grade floors.
func DefaultFloors() Floors {
	return Floors{Fair: 500, Good: 750, Great: 900, Excellent: 960}
}

// Floor returns the minimum rate of g under f.
func (f Floors) Floor(g Grade) float64 {
	switch g {
	case GradeFair:
		return f.Fair
	case GradeGood:
		return f.Good
	case GradeGreat:
		return f.Great
	case GradeExcellent:
		return f.Excellent
	default:
		return 0
	}
}

// GradeFor returns the highest grade whose floor rate reaches.
func GradeFor(rate float64, f Floors) Grade {
	switch {
	case rate >= f.Excellent:
		return GradeExcellent
	case rate >= f.Great:
		return GradeGreat
	case rate >= f.Good:
		return GradeGood
	case rate >= f.Fair:
		return GradeFair
	default:
		return GradePoor
	}
}

// GradeLabel is the display text for g.
func GradeLabel(g Grade) string {
	switch g {
	case GradeExcellent:
		return "Excellent"
	case GradeGreat:
		return "Great"
	case GradeGood:
		return "Good"
	case GradeFair:
		return "Fair"
	default:
		return "Poor"
	}
}
