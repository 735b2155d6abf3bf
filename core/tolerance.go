package core

import (
	"fmt"
	"math"
)

// Tolerance decides whether an approximate value is acceptably close to a
// reference value. Describe returns the human-readable form recorded in case
// results.
type Tolerance interface {
	Check(estimate, reference float64) bool
	Describe() string
}

// SignificantDigits compares two values after scaling them by the decade of
// their mean magnitude. Two values agree to d significant digits when the
// scaled difference is below 1.5*10^(1-d).
type SignificantDigits struct {
	Digits int
}

func (t SignificantDigits) Check(estimate, reference float64) bool {
	if estimate == reference {
		return true
	}
	if math.IsNaN(estimate) || math.IsNaN(reference) {
		return false
	}
	scale := 0.5 * (math.Abs(estimate) + math.Abs(reference))
	if scale == 0 {
		return true
	}
	decade := math.Pow(10, math.Floor(math.Log10(scale)))
	diff := math.Abs(estimate/decade - reference/decade)
	return diff < 1.5*math.Pow(10, float64(1-t.Digits))
}

func (t SignificantDigits) Describe() string {
	return fmt.Sprintf("%d significant digits", t.Digits)
}

// AbsoluteTolerance is the opt-in absolute-error bound for callers who know
// the physical scale of the compared quantity.
type AbsoluteTolerance struct {
	Bound float64
}

func (t AbsoluteTolerance) Check(estimate, reference float64) bool {
	if math.IsNaN(estimate) || math.IsNaN(reference) {
		return false
	}
	return math.Abs(estimate-reference) <= t.Bound
}

func (t AbsoluteTolerance) Describe() string {
	return fmt.Sprintf("absolute error <= %g", t.Bound)
}
