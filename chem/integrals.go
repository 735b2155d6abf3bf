package chem

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// IntegralSet holds the spatial orbital integrals of one molecular geometry.
// OneBody is h[p][q]; TwoBody is the chemist notation tensor (pq|rs). Both
// are indexed over spatial orbitals.
type IntegralSet struct {
	Molecule         string          `json:"molecule"`
	Distance         float64         `json:"distance"`
	Basis            string          `json:"basis"`
	Orbitals         int             `json:"orbitals"`
	Particles        int             `json:"particles"`
	NuclearRepulsion float64         `json:"nuclear_repulsion"`
	OneBody          [][]float64     `json:"one_body"`
	TwoBody          [][][][]float64 `json:"two_body"`
}

func (is *IntegralSet) Validate() error {
	m := is.Orbitals
	if m <= 0 {
		return fmt.Errorf("integral set has non-positive orbital count %d", m)
	}
	if is.Particles <= 0 || is.Particles > 2*m {
		return fmt.Errorf("integral set has %d particles for %d spin orbitals", is.Particles, 2*m)
	}
	if len(is.OneBody) != m {
		return fmt.Errorf("one body tensor has %d rows, want %d", len(is.OneBody), m)
	}
	for p, row := range is.OneBody {
		if len(row) != m {
			return fmt.Errorf("one body row %d has %d columns, want %d", p, len(row), m)
		}
	}
	if len(is.TwoBody) != m {
		return fmt.Errorf("two body tensor has %d entries on axis 0, want %d", len(is.TwoBody), m)
	}
	for p := range is.TwoBody {
		if len(is.TwoBody[p]) != m {
			return fmt.Errorf("two body tensor is not %d^4", m)
		}
		for q := range is.TwoBody[p] {
			if len(is.TwoBody[p][q]) != m {
				return fmt.Errorf("two body tensor is not %d^4", m)
			}
			for r := range is.TwoBody[p][q] {
				if len(is.TwoBody[p][q][r]) != m {
					return fmt.Errorf("two body tensor is not %d^4", m)
				}
			}
		}
	}
	return nil
}

// SpinOrbitals is the qubit count before any reduction, twice the spatial
// orbital count with spin-up modes first.
func (is *IntegralSet) SpinOrbitals() int {
	return 2 * is.Orbitals
}

// SecondQuantized expands the spatial integrals into the second quantized
// Hamiltonian over spin orbitals. The chemist notation two body part enters
// as (1/2) sum over (pq|rs) adag_{p,s1} adag_{r,s2} a_{s,s2} a_{q,s1}.
func (is *IntegralSet) SecondQuantized() (*FermionOp, error) {
	if err := is.Validate(); err != nil {
		return nil, err
	}
	m := is.Orbitals
	modes := 2 * m
	idx := func(orbital, spin int) int {
		return orbital + spin*m
	}
	op := NewFermionOp(modes, is.NuclearRepulsion)
	for spin := 0; spin < 2; spin++ {
		for p := 0; p < m; p++ {
			for q := 0; q < m; q++ {
				if is.OneBody[p][q] == 0 {
					continue
				}
				op.Add(is.OneBody[p][q],
					Raise(idx(p, spin)), Lower(idx(q, spin)))
			}
		}
	}
	for s1 := 0; s1 < 2; s1++ {
		for s2 := 0; s2 < 2; s2++ {
			for p := 0; p < m; p++ {
				for q := 0; q < m; q++ {
					for r := 0; r < m; r++ {
						for s := 0; s < m; s++ {
							g := is.TwoBody[p][q][r][s]
							if g == 0 {
								continue
							}
							op.Add(0.5*g,
								Raise(idx(p, s1)), Raise(idx(r, s2)),
								Lower(idx(s, s2)), Lower(idx(q, s1)))
						}
					}
				}
			}
		}
	}
	zap.L().Debug(fmt.Sprintf("second quantized %s at d=%.3f with %d terms over %d modes",
		is.Molecule, is.Distance, op.TermCount(), modes))
	return op, nil
}

// ParseIntegralSet decodes the wire form of an integral set.
func ParseIntegralSet(data []byte) (*IntegralSet, error) {
	is := &IntegralSet{}
	if err := jsonIter.Unmarshal(data, is); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal integral set/reason:%s", err))
		return nil, err
	}
	if err := is.Validate(); err != nil {
		return nil, err
	}
	return is, nil
}
