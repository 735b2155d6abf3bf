//go:build unit
// +build unit

package operator

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewSum(t *testing.T) {
	t.Run("merges duplicate labels and drops zeros", func(t *testing.T) {
		s, err := NewSum([]Term{
			{Pauli: "ZI", Coeff: 0.5},
			{Pauli: "ZI", Coeff: 0.25},
			{Pauli: "IZ", Coeff: 0.75},
			{Pauli: "IZ", Coeff: -0.75},
		})
		assert.Nil(t, err)
		assert.Equal(t, 2, s.Qubits())
		assert.Equal(t, []Term{{Pauli: "ZI", Coeff: 0.75}}, s.Terms())
	})
	t.Run("rejects mixed lengths", func(t *testing.T) {
		_, err := NewSum([]Term{
			{Pauli: "ZZ", Coeff: 1},
			{Pauli: "Z", Coeff: 1},
		})
		assert.Error(t, err)
	})
	t.Run("rejects unknown characters", func(t *testing.T) {
		_, err := NewSum([]Term{{Pauli: "ZA", Coeff: 1}})
		assert.Error(t, err)
	})
	t.Run("rejects a fully cancelled sum", func(t *testing.T) {
		_, err := NewSum([]Term{
			{Pauli: "XX", Coeff: 1},
			{Pauli: "XX", Coeff: -1},
		})
		assert.Error(t, err)
	})
}

func TestDiagonalValue(t *testing.T) {
	s, err := NewSum([]Term{
		{Pauli: "ZI", Coeff: 1},
		{Pauli: "IZ", Coeff: 2},
		{Pauli: "ZZ", Coeff: 4},
	})
	assert.Nil(t, err)
	testCases := []struct {
		name  string
		basis int
		want  float64
	}{
		{name: "00", basis: 0, want: 7},
		{name: "01", basis: 1, want: 1 - 2 - 4},
		{name: "10", basis: 2, want: -1 + 2 - 4},
		{name: "11", basis: 3, want: -1 - 2 + 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := s.DiagonalValue(tc.basis)
			assert.Nil(t, err)
			assert.InDelta(t, tc.want, v, 1e-12)
		})
	}
	t.Run("rejects a non diagonal sum", func(t *testing.T) {
		x, err := NewSum([]Term{{Pauli: "XI", Coeff: 1}})
		assert.Nil(t, err)
		_, err = x.DiagonalValue(0)
		assert.Error(t, err)
	})
}

func TestCoeffBoundAndTruncate(t *testing.T) {
	s, err := NewSum([]Term{
		{Pauli: "ZI", Coeff: -0.5},
		{Pauli: "XX", Coeff: 0.25},
		{Pauli: "YY", Coeff: 1e-12},
	})
	assert.Nil(t, err)
	assert.InDelta(t, 0.75+1e-12, s.CoeffBound(), 1e-15)

	truncated, err := s.Truncate(1e-8)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(truncated.Terms()))
	assert.False(t, truncated.IsDiagonal())

	_, err = s.Truncate(10)
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	data := heredoc.Doc(`
		[
			{"pauli": "ZI", "coeff": -1.25},
			{"pauli": "IZ", "coeff": 0.5}
		]`)
	s, err := FromJSON(data)
	assert.Nil(t, err)
	assert.Equal(t, 2, s.Qubits())
	want, err := NewSum([]Term{
		{Pauli: "ZI", Coeff: -1.25},
		{Pauli: "IZ", Coeff: 0.5},
	})
	assert.Nil(t, err)
	assert.True(t, s.Equal(want, 1e-12))

	_, err = FromJSON("not json")
	assert.Error(t, err)
}
