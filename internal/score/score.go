package score

import (
	"math"
	"strconv"
)

// Score is either null (no opinion) or a real number. The zero value is null.
type Score struct {
	value float64
	real  bool
}

// Zero is an explicit scored zero; unlike Null it counts as an opinion.
var Zero = Of(0)

// Null returns the score carrying no information.
func Null() Score { return Score{} }

// Of wraps a real value. NaN is treated as no opinion.
func Of(value float64) Score {
	if math.IsNaN(value) {
		return Score{}
	}
	return Score{value: value, real: true}
}

// IsReal reports whether the score carries a value.
func (s Score) IsReal() bool { return s.real }

// IsNull reports whether the score carries no information.
func (s Score) IsNull() bool { return !s.real }

// Value returns the real value, or 0 for null.
func (s Score) Value() float64 {
	if !s.real {
		return 0
	}
	return s.value
}

// Add sums two scores. Null is the identity; null plus null stays null.
func (s Score) Add(other Score) Score {
	switch {
	case !s.real:
		return other
	case !other.real:
		return s
	default:
		return Of(s.value + other.value)
	}
}

// Average divides the score by count. Null stays null and a non-positive
// count leaves the score unchanged.
func (s Score) Average(count int) Score {
	if !s.real || count <= 0 {
		return s
	}
	return Of(s.value / float64(count))
}

// Equal compares null-ness and value exactly.
func (s Score) Equal(other Score) bool {
	return s.real == other.real && s.value == other.value
}

// GreaterThan reports whether s is real and strictly above threshold.
func (s Score) GreaterThan(threshold float64) bool {
	return s.real && s.value > threshold
}

// AtLeast reports whether s is real and at or above threshold.
func (s Score) AtLeast(threshold float64) bool {
	return s.real && s.value >= threshold
}

func (s Score) String() string {
	if !s.real {
		return "null"
	}
	return strconv.FormatFloat(s.value, 'f', -1, 64)
}

// Compare orders scores descending with null after every real score. It
// returns a negative number when a sorts before b.
func Compare(a, b Score) int {
	switch {
	case a.real && !b.real:
		return -1
	case !a.real && b.real:
		return 1
	case !a.real && !b.real:
		return 0
	case a.value > b.value:
		return -1
	case a.value < b.value:
		return 1
	default:
		return 0
	}
}
