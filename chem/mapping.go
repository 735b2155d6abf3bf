package chem

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
)

// MappingKind selects the fermion-to-qubit encoding.
type MappingKind string

const (
	JordanWigner MappingKind = "jordan_wigner"
	Parity       MappingKind = "parity"
)

// DefaultTruncation drops the float residue terms a mapping leaves behind.
const DefaultTruncation = 1e-10

func ToMappingKind(s string) (MappingKind, error) {
	switch MappingKind(s) {
	case JordanWigner, Parity:
		return MappingKind(s), nil
	default:
		return "", fmt.Errorf("unknown mapping kind %q", s)
	}
}

// cterm is a complex-weighted Pauli string used only while a mapping is in
// flight. Position i of the label addresses qubit i.
type cterm struct {
	label []byte
	coeff complex128
}

func identity(qubits int) cterm {
	label := make([]byte, qubits)
	for i := range label {
		label[i] = 'I'
	}
	return cterm{label: label, coeff: 1}
}

func mulPauli(a, b byte) (byte, complex128) {
	if a == 'I' {
		return b, 1
	}
	if b == 'I' {
		return a, 1
	}
	if a == b {
		return 'I', 1
	}
	switch {
	case a == 'X' && b == 'Y':
		return 'Z', complex(0, 1)
	case a == 'Y' && b == 'X':
		return 'Z', complex(0, -1)
	case a == 'Y' && b == 'Z':
		return 'X', complex(0, 1)
	case a == 'Z' && b == 'Y':
		return 'X', complex(0, -1)
	case a == 'Z' && b == 'X':
		return 'Y', complex(0, 1)
	default: // a == 'X' && b == 'Z'
		return 'Y', complex(0, -1)
	}
}

func mulTerm(a, b cterm) cterm {
	out := cterm{label: make([]byte, len(a.label)), coeff: a.coeff * b.coeff}
	for i := range a.label {
		p, phase := mulPauli(a.label[i], b.label[i])
		out.label[i] = p
		out.coeff *= phase
	}
	return out
}

func mulList(a, b []cterm) []cterm {
	out := make([]cterm, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, mulTerm(x, y))
		}
	}
	return out
}

// jordanWignerLadder is (X_j -+ iY_j)/2 with a Z chain on every mode below j.
func jordanWignerLadder(op Ladder, qubits int) []cterm {
	x := identity(qubits)
	y := identity(qubits)
	for k := 0; k < op.Mode; k++ {
		x.label[k] = 'Z'
		y.label[k] = 'Z'
	}
	x.label[op.Mode] = 'X'
	y.label[op.Mode] = 'Y'
	x.coeff = 0.5
	if op.Creation {
		y.coeff = complex(0, -0.5)
	} else {
		y.coeff = complex(0, 0.5)
	}
	return []cterm{x, y}
}

// parityLadder is (Z_{j-1}X_j -+ iY_j)/2 with an X chain on every mode
// above j.
func parityLadder(op Ladder, qubits int) []cterm {
	x := identity(qubits)
	y := identity(qubits)
	for k := op.Mode + 1; k < qubits; k++ {
		x.label[k] = 'X'
		y.label[k] = 'X'
	}
	if op.Mode > 0 {
		x.label[op.Mode-1] = 'Z'
	}
	x.label[op.Mode] = 'X'
	y.label[op.Mode] = 'Y'
	x.coeff = 0.5
	if op.Creation {
		y.coeff = complex(0, -0.5)
	} else {
		y.coeff = complex(0, 0.5)
	}
	return []cterm{x, y}
}

// MapToQubits encodes a fermion operator as a real-weighted Pauli sum. Terms
// below DefaultTruncation are dropped.
func MapToQubits(f *FermionOp, kind MappingKind) (*operator.Sum, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	var ladder func(Ladder, int) []cterm
	switch kind {
	case JordanWigner:
		ladder = jordanWignerLadder
	case Parity:
		ladder = parityLadder
	default:
		return nil, fmt.Errorf("unknown mapping kind %q", kind)
	}
	qubits := f.modes
	acc := make(map[string]complex128)
	acc[string(identity(qubits).label)] = complex(f.constant, 0)
	for _, t := range f.terms {
		expanded := []cterm{identity(qubits)}
		for _, op := range t.ops {
			expanded = mulList(expanded, ladder(op, qubits))
		}
		for _, ct := range expanded {
			acc[string(ct.label)] += complex(t.coeff, 0) * ct.coeff
		}
	}
	terms := make([]operator.Term, 0, len(acc))
	for label, coeff := range acc {
		if cmplx.Abs(coeff) < DefaultTruncation {
			continue
		}
		if imagPart := imag(coeff); imagPart > 1e-8 || imagPart < -1e-8 {
			return nil, fmt.Errorf("mapping produced non-Hermitian term %s with coefficient %v",
				label, coeff)
		}
		terms = append(terms, operator.Term{Pauli: label, Coeff: real(coeff)})
	}
	sum, err := operator.NewSum(terms)
	if err != nil {
		return nil, err
	}
	zap.L().Debug(fmt.Sprintf("%s mapping produced %d terms over %d qubits",
		kind, len(sum.Terms()), qubits))
	return sum, nil
}

// ReduceTwoQubits removes the two parity-encoded symmetry qubits, valid only
// for a parity-mapped operator that conserves particle number and spin. The
// removed qubits are n/2-1 (spin-up parity) and n-1 (total parity); their Z
// factors collapse to the eigenvalues of the particle sector. The sector
// signs assume the particles split evenly between the spin species, so only
// even particle counts are supported.
func ReduceTwoQubits(s *operator.Sum, particles int) (*operator.Sum, error) {
	n := s.Qubits()
	if n < 4 || n%2 != 0 {
		return nil, fmt.Errorf("two qubit reduction needs an even qubit count of at least 4, got %d", n)
	}
	if particles <= 0 || particles%2 != 0 {
		return nil, fmt.Errorf("two qubit reduction needs a positive even particle count, got %d", particles)
	}
	upMode := n/2 - 1
	topMode := n - 1
	upSign := 1.0
	if (particles/2)%2 == 1 {
		upSign = -1.0
	}
	topSign := 1.0
	reduced := make([]operator.Term, 0, len(s.Terms()))
	for _, t := range s.Terms() {
		coeff := t.Coeff
		var b strings.Builder
		for i, r := range t.Pauli {
			if i == upMode || i == topMode {
				switch r {
				case 'I':
				case 'Z':
					if i == upMode {
						coeff *= upSign
					} else {
						coeff *= topSign
					}
				default:
					return nil, fmt.Errorf("term %s breaks the parity symmetry on qubit %d", t.Pauli, i)
				}
				continue
			}
			b.WriteRune(r)
		}
		reduced = append(reduced, operator.Term{Pauli: b.String(), Coeff: coeff})
	}
	return operator.NewSum(reduced)
}

// QubitHamiltonian runs the full pipeline from integrals to a truncated
// qubit operator. The parity mapping with reduction yields the compact form
// used by the energy suite.
func QubitHamiltonian(is *IntegralSet, kind MappingKind, reduce bool) (*operator.Sum, error) {
	f, err := is.SecondQuantized()
	if err != nil {
		return nil, err
	}
	sum, err := MapToQubits(f, kind)
	if err != nil {
		return nil, err
	}
	if !reduce {
		return sum, nil
	}
	if kind != Parity {
		return nil, fmt.Errorf("two qubit reduction requires the parity mapping, got %s", kind)
	}
	return ReduceTwoQubits(sum, is.Particles)
}
