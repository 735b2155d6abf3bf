package operator

import (
	"fmt"
	"math"
	"strings"
)

// GuardDigits is the extra resolution used when encoding a reference value
// for comparison against a phase readout label.
const GuardDigits = 3

// BinaryFraction encodes the fractional part of a value in [0, 1) as a
// binary string with the given number of digits.
func BinaryFraction(value float64, digits int) (string, error) {
	if value < 0 || value >= 1 {
		return "", fmt.Errorf("value %g is outside [0, 1)", value)
	}
	if digits <= 0 {
		return "", fmt.Errorf("digits must be positive, got %d", digits)
	}
	var b strings.Builder
	frac := value
	for i := 0; i < digits; i++ {
		frac *= 2
		if frac >= 1 {
			b.WriteByte('1')
			frac -= 1
		} else {
			b.WriteByte('0')
		}
	}
	return b.String(), nil
}

// FromBinaryFraction decodes a binary fraction string back to a value in
// [0, 1).
func FromBinaryFraction(label string) (float64, error) {
	if label == "" {
		return 0, fmt.Errorf("empty binary fraction")
	}
	value := 0.0
	for i, r := range label {
		switch r {
		case '1':
			value += math.Pow(2, -float64(i+1))
		case '0':
		default:
			return 0, fmt.Errorf("invalid binary fraction %q", label)
		}
	}
	return value, nil
}
