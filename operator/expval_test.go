//go:build unit
// +build unit

package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectation(t *testing.T) {
	s, err := NewSum([]Term{{Pauli: "ZI", Coeff: 1}})
	assert.Nil(t, err)
	t.Run("averages over counts", func(t *testing.T) {
		counts := map[string]uint32{"00": 75, "10": 25}
		expval, stddev, err := Expectation(s, counts)
		assert.Nil(t, err)
		assert.InDelta(t, 0.5, expval, 1e-12)
		assert.Greater(t, stddev, 0.0)
	})
	t.Run("pure state has zero spread", func(t *testing.T) {
		counts := map[string]uint32{"10": 100}
		expval, stddev, err := Expectation(s, counts)
		assert.Nil(t, err)
		assert.InDelta(t, -1.0, expval, 1e-12)
		assert.InDelta(t, 0.0, stddev, 1e-12)
	})
	t.Run("rejects non diagonal operators", func(t *testing.T) {
		x, err := NewSum([]Term{{Pauli: "XI", Coeff: 1}})
		assert.Nil(t, err)
		_, _, err = Expectation(x, map[string]uint32{"00": 1})
		assert.Error(t, err)
	})
	t.Run("rejects malformed bitstrings", func(t *testing.T) {
		_, _, err := Expectation(s, map[string]uint32{"0": 1})
		assert.Error(t, err)
	})
}

func TestMostLikely(t *testing.T) {
	t.Run("picks the largest count", func(t *testing.T) {
		basis, err := MostLikely(map[string]uint32{"011": 60, "100": 30, "000": 10}, 3)
		assert.Nil(t, err)
		assert.Equal(t, 3, basis)
	})
	t.Run("ties break toward the smaller index", func(t *testing.T) {
		basis, err := MostLikely(map[string]uint32{"10": 50, "01": 50}, 2)
		assert.Nil(t, err)
		assert.Equal(t, 1, basis)
	})
	t.Run("rejects empty counts", func(t *testing.T) {
		_, err := MostLikely(map[string]uint32{}, 2)
		assert.Error(t, err)
	})
}

func TestBinaryFraction(t *testing.T) {
	testCases := []struct {
		name   string
		value  float64
		digits int
		want   string
	}{
		{name: "half", value: 0.5, digits: 4, want: "1000"},
		{name: "three quarters", value: 0.75, digits: 4, want: "1100"},
		{name: "zero", value: 0.0, digits: 3, want: "000"},
		{name: "non dyadic is truncated", value: 1.0 / 3.0, digits: 6, want: "010101"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BinaryFraction(tc.value, tc.digits)
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	t.Run("round trips dyadic values", func(t *testing.T) {
		label, err := BinaryFraction(0.6875, 8)
		assert.Nil(t, err)
		back, err := FromBinaryFraction(label)
		assert.Nil(t, err)
		assert.InDelta(t, 0.6875, back, 1e-12)
	})
	t.Run("rejects values outside the unit interval", func(t *testing.T) {
		_, err := BinaryFraction(1.0, 4)
		assert.Error(t, err)
		_, err = BinaryFraction(-0.1, 4)
		assert.Error(t, err)
	})
}
