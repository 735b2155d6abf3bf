//go:build unit
// +build unit

package chem

import (
	"context"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/eigenbench-team/eigenbench/harness/eigen"
	"github.com/stretchr/testify/assert"
)

func TestParseIntegralSet(t *testing.T) {
	t.Run("parses a single orbital set", func(t *testing.T) {
		data := heredoc.Doc(`
			{
				"molecule": "He",
				"distance": 1.0,
				"basis": "sto-3g",
				"orbitals": 1,
				"particles": 2,
				"nuclear_repulsion": 0.0,
				"one_body": [[-1.0]],
				"two_body": [[[[0.5]]]]
			}`)
		is, err := ParseIntegralSet([]byte(data))
		assert.Nil(t, err)
		assert.Equal(t, 1, is.Orbitals)
		assert.Equal(t, 2, is.SpinOrbitals())
	})
	t.Run("rejects a shape mismatch", func(t *testing.T) {
		data := heredoc.Doc(`
			{
				"molecule": "He",
				"orbitals": 2,
				"particles": 2,
				"one_body": [[-1.0]],
				"two_body": [[[[0.5]]]]
			}`)
		_, err := ParseIntegralSet([]byte(data))
		assert.Error(t, err)
	})
	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := ParseIntegralSet([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestSecondQuantized(t *testing.T) {
	is := &IntegralSet{
		Molecule:  "He",
		Basis:     "sto-3g",
		Orbitals:  1,
		Particles: 2,
		OneBody:   [][]float64{{-1.0}},
		TwoBody:   [][][][]float64{{{{0.5}}}},
	}
	f, err := is.SecondQuantized()
	assert.Nil(t, err)
	assert.Equal(t, 2, f.Modes())
	// one body per spin plus two body over spin pairs
	assert.Equal(t, 6, f.TermCount())
}

// The full operator over four qubits and the parity-reduced operator over
// two qubits must agree on the ground energy of the two-particle sector.
func TestHamiltonianPipelineConsistency(t *testing.T) {
	driver := testFileDriver()
	solver := &eigen.ExactSolver{}
	for _, distance := range []float64{0.5, 0.735, 1.0} {
		mol := Hydrogen(distance)
		t.Run(mol.Key(), func(t *testing.T) {
			is, err := driver.Load(context.Background(), mol)
			assert.Nil(t, err)

			full, err := QubitHamiltonian(is, JordanWigner, false)
			assert.Nil(t, err)
			assert.Equal(t, 4, full.Qubits())

			reduced, err := QubitHamiltonian(is, Parity, true)
			assert.Nil(t, err)
			assert.Equal(t, 2, reduced.Qubits())

			fullRes, err := solver.Solve(context.Background(), full, 1)
			assert.Nil(t, err)
			reducedRes, err := solver.Solve(context.Background(), reduced, 1)
			assert.Nil(t, err)
			assert.InDelta(t, fullRes.GroundEnergy(), reducedRes.GroundEnergy(), 1e-8)
			assert.Less(t, reducedRes.GroundEnergy(), 0.0)
		})
	}
}

func TestQubitHamiltonianValidation(t *testing.T) {
	is := &IntegralSet{
		Molecule:  "He",
		Basis:     "sto-3g",
		Orbitals:  1,
		Particles: 2,
		OneBody:   [][]float64{{-1.0}},
		TwoBody:   [][][][]float64{{{{0.5}}}},
	}
	t.Run("reduction requires the parity mapping", func(t *testing.T) {
		_, err := QubitHamiltonian(is, JordanWigner, true)
		assert.Error(t, err)
	})
	t.Run("rejects an unknown mapping", func(t *testing.T) {
		_, err := QubitHamiltonian(is, MappingKind("unknown"), false)
		assert.Error(t, err)
	})
}
