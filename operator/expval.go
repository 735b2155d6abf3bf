package operator

import (
	"fmt"
	"math"
	"strconv"
)

// Expectation computes the expectation value and the standard deviation of
// the mean of a diagonal sum from Z-basis measurement counts. Keys are
// bitstrings with the qubit-0 bit first, matching label positions.
func Expectation(s *Sum, counts map[string]uint32) (expval, stddev float64, err error) {
	if !s.IsDiagonal() {
		return 0, 0, fmt.Errorf("expectation from Z-basis counts needs a diagonal operator")
	}
	if len(counts) == 0 {
		return 0, 0, fmt.Errorf("empty counts")
	}
	var shots uint32
	for _, c := range counts {
		shots += c
	}
	if shots == 0 {
		return 0, 0, fmt.Errorf("zero total shots")
	}
	for label, c := range counts {
		basis, parseErr := parseBitstring(label, s.qubits)
		if parseErr != nil {
			return 0, 0, parseErr
		}
		v, dErr := s.DiagonalValue(basis)
		if dErr != nil {
			return 0, 0, dErr
		}
		expval += v * float64(c) / float64(shots)
	}
	variance := 0.0
	for label, c := range counts {
		basis, _ := parseBitstring(label, s.qubits)
		v, _ := s.DiagonalValue(basis)
		variance += (v - expval) * (v - expval) * float64(c) / float64(shots)
	}
	stddev = math.Sqrt(variance / float64(shots))
	return expval, stddev, nil
}

// MostLikely returns the basis index with the largest count. Ties break
// toward the smaller index to keep the result deterministic.
func MostLikely(counts map[string]uint32, qubits int) (int, error) {
	if len(counts) == 0 {
		return 0, fmt.Errorf("empty counts")
	}
	best := -1
	var bestCount uint32
	for label, c := range counts {
		basis, err := parseBitstring(label, qubits)
		if err != nil {
			return 0, err
		}
		if c > bestCount || (c == bestCount && (best == -1 || basis < best)) {
			best = basis
			bestCount = c
		}
	}
	return best, nil
}

func parseBitstring(label string, qubits int) (int, error) {
	if len(label) != qubits {
		return 0, fmt.Errorf("bitstring %q has %d bits, want %d", label, len(label), qubits)
	}
	basis, err := strconv.ParseInt(label, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bitstring %q: %w", label, err)
	}
	return int(basis), nil
}
