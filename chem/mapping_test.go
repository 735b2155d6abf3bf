//go:build unit
// +build unit

package chem

import (
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/operator"
	"github.com/stretchr/testify/assert"
)

func TestMulPauli(t *testing.T) {
	testCases := []struct {
		name      string
		a, b      byte
		wantPauli byte
		wantCoeff complex128
	}{
		{name: "identity absorbs", a: 'I', b: 'X', wantPauli: 'X', wantCoeff: 1},
		{name: "squares to identity", a: 'Y', b: 'Y', wantPauli: 'I', wantCoeff: 1},
		{name: "XY", a: 'X', b: 'Y', wantPauli: 'Z', wantCoeff: complex(0, 1)},
		{name: "YX", a: 'Y', b: 'X', wantPauli: 'Z', wantCoeff: complex(0, -1)},
		{name: "YZ", a: 'Y', b: 'Z', wantPauli: 'X', wantCoeff: complex(0, 1)},
		{name: "ZX", a: 'Z', b: 'X', wantPauli: 'Y', wantCoeff: complex(0, 1)},
		{name: "XZ", a: 'X', b: 'Z', wantPauli: 'Y', wantCoeff: complex(0, -1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, c := mulPauli(tc.a, tc.b)
			assert.Equal(t, tc.wantPauli, p)
			assert.Equal(t, tc.wantCoeff, c)
		})
	}
}

func TestJordanWignerNumberOperator(t *testing.T) {
	f := NewFermionOp(2, 0)
	f.Add(1, Raise(0), Lower(0))
	sum, err := MapToQubits(f, JordanWigner)
	assert.Nil(t, err)
	want, err := operator.NewSum([]operator.Term{
		{Pauli: "II", Coeff: 0.5},
		{Pauli: "ZI", Coeff: -0.5},
	})
	assert.Nil(t, err)
	assert.True(t, sum.Equal(want, 1e-12))
}

func TestParityNumberOperator(t *testing.T) {
	f := NewFermionOp(2, 0)
	f.Add(1, Raise(1), Lower(1))
	sum, err := MapToQubits(f, Parity)
	assert.Nil(t, err)
	want, err := operator.NewSum([]operator.Term{
		{Pauli: "II", Coeff: 0.5},
		{Pauli: "ZZ", Coeff: -0.5},
	})
	assert.Nil(t, err)
	assert.True(t, sum.Equal(want, 1e-12))
}

func TestMapConstantShift(t *testing.T) {
	f := NewFermionOp(2, 0.75)
	f.Add(1, Raise(0), Lower(0))
	sum, err := MapToQubits(f, JordanWigner)
	assert.Nil(t, err)
	want, err := operator.NewSum([]operator.Term{
		{Pauli: "II", Coeff: 1.25},
		{Pauli: "ZI", Coeff: -0.5},
	})
	assert.Nil(t, err)
	assert.True(t, sum.Equal(want, 1e-12))
}

func TestReduceTwoQubits(t *testing.T) {
	t.Run("collapses Z on symmetry qubits", func(t *testing.T) {
		sum, err := operator.NewSum([]operator.Term{
			{Pauli: "IZIZ", Coeff: 1},
			{Pauli: "ZIII", Coeff: 2},
		})
		assert.Nil(t, err)
		reduced, err := ReduceTwoQubits(sum, 2)
		assert.Nil(t, err)
		// qubit 1 carries the spin-up parity eigenvalue -1, qubit 3 the
		// total parity eigenvalue +1
		want, err := operator.NewSum([]operator.Term{
			{Pauli: "II", Coeff: -1},
			{Pauli: "ZI", Coeff: 2},
		})
		assert.Nil(t, err)
		assert.True(t, reduced.Equal(want, 1e-12))
	})
	t.Run("rejects symmetry breaking terms", func(t *testing.T) {
		sum, err := operator.NewSum([]operator.Term{{Pauli: "IXII", Coeff: 1}})
		assert.Nil(t, err)
		_, err = ReduceTwoQubits(sum, 2)
		assert.Error(t, err)
	})
	t.Run("rejects odd qubit counts", func(t *testing.T) {
		sum, err := operator.NewSum([]operator.Term{{Pauli: "IZI", Coeff: 1}})
		assert.Nil(t, err)
		_, err = ReduceTwoQubits(sum, 2)
		assert.Error(t, err)
	})
	t.Run("rejects odd particle counts", func(t *testing.T) {
		sum, err := operator.NewSum([]operator.Term{{Pauli: "IZIZ", Coeff: 1}})
		assert.Nil(t, err)
		_, err = ReduceTwoQubits(sum, 3)
		assert.Error(t, err)
	})
}

func TestToMappingKind(t *testing.T) {
	kind, err := ToMappingKind("parity")
	assert.Nil(t, err)
	assert.Equal(t, Parity, kind)
	_, err = ToMappingKind("bravyi_kitaev")
	assert.Error(t, err)
}
