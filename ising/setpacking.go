// Package ising turns combinatorial instances into diagonal qubit operators.
package ising

import (
	"fmt"
	"math/bits"
	"os"
	"strings"

	"github.com/eigenbench-team/eigenbench/harness/operator"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Penalty and reward weights of the cost operator. The penalty must exceed
// the reward so no overlapping selection can ever beat a disjoint one.
const (
	DefaultPenalty = 10.0
	DefaultReward  = 1.0
)

// SetPacking is one instance of the maximum set packing problem. Subset i is
// represented by qubit i; elements are opaque integers.
type SetPacking struct {
	subsets [][]int
}

// ParseSetPacking decodes the wire form of an instance, a JSON array of
// element arrays.
func ParseSetPacking(data []byte) (*SetPacking, error) {
	d := jx.DecodeBytes(data)
	subsets := [][]int{}
	if err := d.Arr(func(d *jx.Decoder) error {
		subset := []int{}
		if err := d.Arr(func(d *jx.Decoder) error {
			elem, err := d.Int()
			if err != nil {
				return err
			}
			subset = append(subset, elem)
			return nil
		}); err != nil {
			return err
		}
		subsets = append(subsets, subset)
		return nil
	}); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode set packing instance/reason:%s", err))
		return nil, errors.Wrap(err, "decode set packing instance")
	}
	return &SetPacking{subsets: subsets}, nil
}

// Load reads an instance from a fixture file.
func Load(path string) (*SetPacking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read set packing fixture %s/reason:%s", path, err))
		return nil, errors.Wrap(err, "read set packing fixture")
	}
	return ParseSetPacking(data)
}

func (sp *SetPacking) Size() int {
	return len(sp.subsets)
}

func (sp *SetPacking) Subsets() [][]int {
	out := make([][]int, len(sp.subsets))
	for i, s := range sp.subsets {
		out[i] = append([]int{}, s...)
	}
	return out
}

// Overlaps reports whether subsets i and j share an element.
func (sp *SetPacking) Overlaps(i, j int) bool {
	for _, a := range sp.subsets[i] {
		for _, b := range sp.subsets[j] {
			if a == b {
				return true
			}
		}
	}
	return false
}

func zLabel(n int, positions ...int) string {
	label := []byte(strings.Repeat("I", n))
	for _, p := range positions {
		label[p] = 'Z'
	}
	return string(label)
}

// CostOperator builds the diagonal Hamiltonian whose ground states are the
// maximum packings. Selection variables enter as x = (1 - Z) / 2, so the
// pair penalty expands to (1 - Z_i - Z_j + Z_i Z_j) / 4.
func (sp *SetPacking) CostOperator(penalty, reward float64) (*operator.Sum, error) {
	n := sp.Size()
	if n == 0 {
		return nil, fmt.Errorf("set packing instance is empty")
	}
	if penalty <= reward {
		return nil, fmt.Errorf("penalty %g must exceed reward %g", penalty, reward)
	}
	terms := []operator.Term{}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !sp.Overlaps(i, j) {
				continue
			}
			terms = append(terms,
				operator.Term{Pauli: zLabel(n), Coeff: penalty / 4},
				operator.Term{Pauli: zLabel(n, i), Coeff: -penalty / 4},
				operator.Term{Pauli: zLabel(n, j), Coeff: -penalty / 4},
				operator.Term{Pauli: zLabel(n, i, j), Coeff: penalty / 4},
			)
		}
	}
	for i := 0; i < n; i++ {
		terms = append(terms,
			operator.Term{Pauli: zLabel(n), Coeff: -reward / 2},
			operator.Term{Pauli: zLabel(n, i), Coeff: reward / 2},
		)
	}
	return operator.NewSum(terms)
}

// Decode maps a computational basis index to the selection vector. Bit i of
// the index, read from the high end, selects subset i.
func (sp *SetPacking) Decode(basis int) []int {
	n := sp.Size()
	selection := make([]int, n)
	for i := 0; i < n; i++ {
		selection[i] = basis >> (n - 1 - i) & 1
	}
	return selection
}

// IsDisjoint reports whether the selected subsets are pairwise disjoint.
func (sp *SetPacking) IsDisjoint(selection []int) bool {
	n := sp.Size()
	for i := 0; i < n; i++ {
		if selection[i] == 0 {
			continue
		}
		for j := i + 1; j < n; j++ {
			if selection[j] == 1 && sp.Overlaps(i, j) {
				return false
			}
		}
	}
	return true
}

// Oracle scans every selection and returns the maximum disjoint subset
// count.
func (sp *SetPacking) Oracle() int {
	n := sp.Size()
	best := 0
	for mask := 0; mask < 1<<n; mask++ {
		if count := bits.OnesCount(uint(mask)); count > best && sp.IsDisjoint(sp.Decode(mask)) {
			best = count
		}
	}
	return best
}
