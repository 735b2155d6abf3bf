// Package operator holds the weighted Pauli-string representation shared by
// every solver in the engine.
package operator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Term is one weighted Pauli string. The label has one character per qubit
// out of I, X, Y, Z; position i addresses qubit i.
type Term struct {
	Pauli string  `json:"pauli"`
	Coeff float64 `json:"coeff"`
}

// Sum is a real-weighted sum of Pauli strings over a fixed qubit count.
// Immutable after construction; all transforms return a new Sum.
type Sum struct {
	terms  []Term
	qubits int
}

func validLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty pauli label")
	}
	for _, r := range label {
		switch r {
		case 'I', 'X', 'Y', 'Z':
		default:
			return fmt.Errorf("invalid pauli label %q: unknown character %q", label, r)
		}
	}
	return nil
}

// NewSum validates, merges duplicate labels and drops zero terms. All labels
// must have the same length.
func NewSum(terms []Term) (*Sum, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms")
	}
	qubits := len(terms[0].Pauli)
	merged := make(map[string]float64, len(terms))
	order := []string{}
	for _, t := range terms {
		if err := validLabel(t.Pauli); err != nil {
			return nil, err
		}
		if len(t.Pauli) != qubits {
			return nil, fmt.Errorf("label %q has %d qubits, want %d", t.Pauli, len(t.Pauli), qubits)
		}
		if _, ok := merged[t.Pauli]; !ok {
			order = append(order, t.Pauli)
		}
		merged[t.Pauli] += t.Coeff
	}
	out := make([]Term, 0, len(order))
	for _, label := range order {
		if merged[label] == 0 {
			continue
		}
		out = append(out, Term{Pauli: label, Coeff: merged[label]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("all terms cancelled")
	}
	return &Sum{terms: out, qubits: qubits}, nil
}

func (s *Sum) Qubits() int {
	return s.qubits
}

func (s *Sum) Terms() []Term {
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// Truncate drops terms whose coefficient magnitude is below threshold.
func (s *Sum) Truncate(threshold float64) (*Sum, error) {
	kept := []Term{}
	for _, t := range s.terms {
		if math.Abs(t.Coeff) < threshold {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("truncation at %g removed every term", threshold)
	}
	return NewSum(kept)
}

// IsDiagonal reports whether every term is built from I and Z only.
func (s *Sum) IsDiagonal() bool {
	for _, t := range s.terms {
		if strings.ContainsAny(t.Pauli, "XY") {
			return false
		}
	}
	return true
}

// CoeffBound is the sum of coefficient magnitudes, an upper bound on the
// operator spectral radius.
func (s *Sum) CoeffBound() float64 {
	bound := 0.0
	for _, t := range s.terms {
		bound += math.Abs(t.Coeff)
	}
	return bound
}

// DiagonalValue evaluates a diagonal sum on the computational basis state
// with the given index. Bit i of the label position i is read from the high
// end of the index.
func (s *Sum) DiagonalValue(basis int) (float64, error) {
	if !s.IsDiagonal() {
		return 0, fmt.Errorf("operator is not diagonal")
	}
	value := 0.0
	for _, t := range s.terms {
		sign := 1.0
		for i, r := range t.Pauli {
			if r != 'Z' {
				continue
			}
			if basis>>(s.qubits-1-i)&1 == 1 {
				sign = -sign
			}
		}
		value += sign * t.Coeff
	}
	return value, nil
}

// Equal compares label/coefficient sets up to ordering and tolerance.
func (s *Sum) Equal(o *Sum, tol float64) bool {
	if s.qubits != o.qubits || len(s.terms) != len(o.terms) {
		return false
	}
	a := s.Terms()
	b := o.Terms()
	sort.Slice(a, func(i, j int) bool { return a[i].Pauli < a[j].Pauli })
	sort.Slice(b, func(i, j int) bool { return b[i].Pauli < b[j].Pauli })
	for i := range a {
		if a[i].Pauli != b[i].Pauli || math.Abs(a[i].Coeff-b[i].Coeff) > tol {
			return false
		}
	}
	return true
}

func (s *Sum) String() string {
	st, err := jsonIter.Marshal(s.terms)
	if err != nil {
		zap.L().Error("Failed to marshal operator.Sum")
		return ""
	}
	return string(st)
}

// FromJSON parses the wire form of a sum, a JSON array of
// {"pauli": ..., "coeff": ...} objects.
func FromJSON(data string) (*Sum, error) {
	terms := []Term{}
	if err := jsonIter.Unmarshal([]byte(data), &terms); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal operator terms from :%s/reason:%s",
			data, err.Error()))
		return nil, err
	}
	return NewSum(terms)
}
