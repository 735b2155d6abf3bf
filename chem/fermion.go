package chem

import "fmt"

// Ladder is a single creation or annihilation operator on one fermionic mode.
type Ladder struct {
	Mode     int
	Creation bool
}

func Raise(mode int) Ladder {
	return Ladder{Mode: mode, Creation: true}
}

func Lower(mode int) Ladder {
	return Ladder{Mode: mode, Creation: false}
}

type fermionTerm struct {
	ops   []Ladder
	coeff float64
}

// FermionOp is a real-weighted sum of ladder operator products over a fixed
// mode count, plus a constant shift.
type FermionOp struct {
	terms    []fermionTerm
	modes    int
	constant float64
}

func NewFermionOp(modes int, constant float64) *FermionOp {
	return &FermionOp{modes: modes, constant: constant}
}

// Add appends one weighted product of ladder operators, in the given order.
func (f *FermionOp) Add(coeff float64, ops ...Ladder) {
	if coeff == 0 {
		return
	}
	f.terms = append(f.terms, fermionTerm{ops: ops, coeff: coeff})
}

func (f *FermionOp) Modes() int {
	return f.modes
}

func (f *FermionOp) Constant() float64 {
	return f.constant
}

func (f *FermionOp) TermCount() int {
	return len(f.terms)
}

func (f *FermionOp) validate() error {
	if f.modes <= 0 {
		return fmt.Errorf("fermion operator has non-positive mode count %d", f.modes)
	}
	for _, t := range f.terms {
		for _, op := range t.ops {
			if op.Mode < 0 || op.Mode >= f.modes {
				return fmt.Errorf("ladder operator mode %d is outside [0, %d)", op.Mode, f.modes)
			}
		}
	}
	return nil
}
