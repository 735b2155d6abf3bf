//go:build unit
// +build unit

package ising

import (
	"context"
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/eigen"
	"github.com/stretchr/testify/assert"
)

func sampleInstance(t *testing.T) *SetPacking {
	t.Helper()
	sp, err := Load("testdata/sample.setpacking")
	assert.Nil(t, err)
	return sp
}

func TestLoad(t *testing.T) {
	t.Run("reads the sample fixture", func(t *testing.T) {
		sp := sampleInstance(t)
		assert.Equal(t, 3, sp.Size())
		assert.Equal(t, [][]int{{1, 2}, {1}, {2}}, sp.Subsets())
	})
	t.Run("fails on a missing file", func(t *testing.T) {
		_, err := Load("testdata/no_such_file")
		assert.Error(t, err)
	})
	t.Run("fails on malformed json", func(t *testing.T) {
		_, err := ParseSetPacking([]byte("[[1, 2"))
		assert.Error(t, err)
	})
}

func TestOverlaps(t *testing.T) {
	sp := sampleInstance(t)
	assert.True(t, sp.Overlaps(0, 1))
	assert.True(t, sp.Overlaps(0, 2))
	assert.False(t, sp.Overlaps(1, 2))
}

func TestDecode(t *testing.T) {
	sp := sampleInstance(t)
	testCases := []struct {
		name  string
		basis int
		want  []int
	}{
		{name: "none", basis: 0, want: []int{0, 0, 0}},
		{name: "last two", basis: 3, want: []int{0, 1, 1}},
		{name: "first only", basis: 4, want: []int{1, 0, 0}},
		{name: "all", basis: 7, want: []int{1, 1, 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sp.Decode(tc.basis))
		})
	}
}

func TestIsDisjoint(t *testing.T) {
	sp := sampleInstance(t)
	assert.True(t, sp.IsDisjoint([]int{0, 0, 0}))
	assert.True(t, sp.IsDisjoint([]int{0, 1, 1}))
	assert.True(t, sp.IsDisjoint([]int{1, 0, 0}))
	assert.False(t, sp.IsDisjoint([]int{1, 1, 0}))
	assert.False(t, sp.IsDisjoint([]int{1, 1, 1}))
}

func TestOracle(t *testing.T) {
	t.Run("sample instance packs two subsets", func(t *testing.T) {
		assert.Equal(t, 2, sampleInstance(t).Oracle())
	})
	t.Run("empty instance packs nothing", func(t *testing.T) {
		sp, err := ParseSetPacking([]byte("[]"))
		assert.Nil(t, err)
		assert.Equal(t, 0, sp.Oracle())
	})
	t.Run("single subset packs itself", func(t *testing.T) {
		sp, err := ParseSetPacking([]byte("[[7]]"))
		assert.Nil(t, err)
		assert.Equal(t, 1, sp.Oracle())
	})
}

func TestCostOperator(t *testing.T) {
	sp := sampleInstance(t)
	op, err := sp.CostOperator(DefaultPenalty, DefaultReward)
	assert.Nil(t, err)
	assert.True(t, op.IsDiagonal())
	assert.Equal(t, 3, op.Qubits())

	t.Run("scores selections", func(t *testing.T) {
		testCases := []struct {
			name  string
			basis int
			want  float64
		}{
			{name: "optimum", basis: 3, want: -2},
			{name: "first only", basis: 4, want: -1},
			{name: "overlap penalized", basis: 6, want: 10 - 2},
			{name: "empty", basis: 0, want: 0},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				v, err := op.DiagonalValue(tc.basis)
				assert.Nil(t, err)
				assert.InDelta(t, tc.want, v, 1e-12)
			})
		}
	})

	t.Run("ground state is the maximum packing", func(t *testing.T) {
		solver := &eigen.ExactSolver{}
		res, err := solver.Solve(context.Background(), op, 1)
		assert.Nil(t, err)
		assert.Equal(t, 3, res.GroundIndex)
		selection := sp.Decode(res.GroundIndex)
		assert.Equal(t, []int{0, 1, 1}, selection)
		assert.True(t, sp.IsDisjoint(selection))
		count := 0
		for _, x := range selection {
			count += x
		}
		assert.Equal(t, sp.Oracle(), count)
	})

	t.Run("rejects an empty instance", func(t *testing.T) {
		empty, err := ParseSetPacking([]byte("[]"))
		assert.Nil(t, err)
		_, err = empty.CostOperator(DefaultPenalty, DefaultReward)
		assert.Error(t, err)
	})
	t.Run("rejects a dominated penalty", func(t *testing.T) {
		_, err := sp.CostOperator(1, 1)
		assert.Error(t, err)
	})
}
