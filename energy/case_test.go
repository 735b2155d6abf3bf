//go:build unit
// +build unit

package energy

import (
	"context"
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/chem"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"github.com/eigenbench-team/eigenbench/harness/phase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupComponents(t *testing.T, integralDir string) {
	t.Helper()
	sc := core.SCWithDBContainer()
	assert.Nil(t, sc.Provide(func() chem.Driver {
		return chem.NewFileDriver(&core.Conf{IntegralDir: integralDir})
	}))
	assert.Nil(t, sc.Provide(func() phase.Estimator {
		return phase.NewIdealEstimator()
	}))
}

func newEnergyCase(t *testing.T, distance float64) core.Case {
	t.Helper()
	cm, err := core.NewCaseManager(&EnergyCase{})
	assert.Nil(t, err)
	cc, err := core.NewCaseContext()
	assert.Nil(t, err)
	cs, err := cm.NewCaseWithValidation(
		&core.CaseParam{
			CaseID:   uuid.NewString(),
			CaseType: ENERGY_CASE,
			Seed:     42,
			Params:   map[string]interface{}{"distance": distance},
		}, cc)
	assert.Nil(t, err)
	return cs
}

func TestEnergyCasePasses(t *testing.T) {
	setupComponents(t, "../chem/testdata")
	ctx := context.Background()
	for _, distance := range []float64{0.5, 0.735, 1.0} {
		cs := newEnergyCase(t, distance)
		cs.Prepare(ctx)
		assert.False(t, cs.IsFinished())
		cs.Execute(ctx)
		cs.Evaluate(ctx)
		assert.True(t, cs.IsFinished())

		cd := cs.CaseData()
		assert.Equal(t, core.PASSED, cd.Status, cd.Result.Message)
		assert.Less(t, cd.Result.Reference, 0.0)
		assert.Equal(t, 1, len(cd.Result.Diagnostics.Eigvals))
		assert.Equal(t, phase.DefaultConfig().AncillaBits, len(cd.Result.Diagnostics.TopLabel))
		assert.Equal(t, phase.DefaultConfig().AncillaBits+operator.GuardDigits,
			len(cd.Result.Diagnostics.RefLabel))
		assert.NotEmpty(t, cd.Result.Diagnostics.Counts)
		assert.Greater(t, cd.Result.Diagnostics.Stretch, 0.0)
	}
}

func TestEnergyCaseSkipsWhenDriverDown(t *testing.T) {
	setupComponents(t, "no_such_dir")
	cs := newEnergyCase(t, 0.735)
	ctx := context.Background()
	cs.Prepare(ctx)
	assert.True(t, cs.IsFinished())
	cd := cs.CaseData()
	assert.Equal(t, core.SKIPPED, cd.Status)
	assert.NotEmpty(t, cd.Result.Message)
}

func TestEnergyCaseFailsWithoutDistance(t *testing.T) {
	setupComponents(t, "../chem/testdata")
	cm, err := core.NewCaseManager(&EnergyCase{})
	assert.Nil(t, err)
	cc, err := core.NewCaseContext()
	assert.Nil(t, err)
	cs, err := cm.NewCaseWithValidation(
		&core.CaseParam{
			CaseID:   uuid.NewString(),
			CaseType: ENERGY_CASE,
		}, cc)
	assert.Nil(t, err)
	cs.Prepare(context.Background())
	assert.True(t, cs.IsFinished())
	assert.Equal(t, core.FAILED, cs.CaseData().Status)
}

func TestEnergyCaseClone(t *testing.T) {
	setupComponents(t, "../chem/testdata")
	cs := newEnergyCase(t, 0.735)
	cloned := cs.Clone()
	assert.Equal(t, cs.CaseData().ID, cloned.CaseData().ID)
	cloned.CaseData().Status = core.FAILED
	assert.NotEqual(t, cs.CaseData().Status, cloned.CaseData().Status)
}
