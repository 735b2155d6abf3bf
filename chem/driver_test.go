//go:build unit
// +build unit

package chem

import (
	"context"
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/stretchr/testify/assert"
)

func testFileDriver() *FileDriver {
	return NewFileDriver(&core.Conf{IntegralDir: "testdata"})
}

func TestFileDriverLoad(t *testing.T) {
	driver := testFileDriver()
	t.Run("loads a known geometry", func(t *testing.T) {
		is, err := driver.Load(context.Background(), Hydrogen(0.735))
		assert.Nil(t, err)
		assert.Equal(t, "H2", is.Molecule)
		assert.Equal(t, 2, is.Orbitals)
		assert.Equal(t, 2, is.Particles)
		assert.InDelta(t, 0.719969, is.NuclearRepulsion, 1e-9)
		assert.InDelta(t, -1.252477, is.OneBody[0][0], 1e-9)
	})
	t.Run("fails on a missing geometry", func(t *testing.T) {
		_, err := driver.Load(context.Background(), Hydrogen(0.9))
		assert.Error(t, err)
	})
	t.Run("fails on an invalid molecule", func(t *testing.T) {
		_, err := driver.Load(context.Background(), Hydrogen(0))
		assert.Error(t, err)
	})
	t.Run("honors a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := driver.Load(ctx, Hydrogen(0.735))
		assert.Error(t, err)
	})
}

func TestFileDriverProbe(t *testing.T) {
	t.Run("up when the directory is readable", func(t *testing.T) {
		av := testFileDriver().Probe(context.Background())
		assert.True(t, av.Available)
	})
	t.Run("down when the directory is missing", func(t *testing.T) {
		driver := NewFileDriver(&core.Conf{IntegralDir: "testdata/no_such_dir"})
		av := driver.Probe(context.Background())
		assert.False(t, av.Available)
		assert.NotEmpty(t, av.Reason)
	})
}
