package schema

import (
	"math"

	"golang.org/x/exp/constraints"
)

type NumericTypes interface {
	constraints.Integer | constraints.Float
}

type Bounds[T NumericTypes] struct {
	Min T
	Max T
}

type BoundsFloat struct {
	Min float64
	Max float64
}

func (b *BoundsFloat) Morph(other BoundsFloat) bool {

	changes := 0

	if other.Min < b.Min {
		b.Min = other.Min
		changes += 1
	}
	if other.Max > b.Max {
		b.Max = other.Max
		changes += 1
	}

	return changes != 0
}

// GetMaxMinBoundsFloat skips NaN values; an empty or all-NaN input yields NaN bounds.
func GetMaxMinBoundsFloat[T NumericTypes](arr []T) BoundsFloat {

	resultBounds := BoundsFloat{Min: math.NaN(), Max: math.NaN()}
	seen := false

	for _, it := range arr {
		v := float64(it)
		if math.IsNaN(v) {
			continue
		}
		if !seen {
			resultBounds.Min, resultBounds.Max = v, v
			seen = true
			continue
		}
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}

	return resultBounds
}
