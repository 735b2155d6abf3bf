//go:build unit
// +build unit

package packing

import (
	"context"
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/common"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/vqe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func fixtureForTest(t *testing.T) string {
	t.Helper()
	path, err := common.GetAssetAbsPath("sample.setpacking")
	assert.Nil(t, err)
	return path
}

func setupComponents(t *testing.T, solver vqe.Solver) {
	t.Helper()
	sc := core.SCWithDBContainer()
	assert.Nil(t, sc.Provide(func() vqe.Solver { return solver }))
}

func newPackingCase(t *testing.T, caseType, fixture string) core.Case {
	t.Helper()
	return newPackingCaseWithParams(t, caseType,
		map[string]interface{}{"fixture_path": fixture})
}

func newPackingCaseWithParams(t *testing.T, caseType string, params map[string]interface{}) core.Case {
	t.Helper()
	cm, err := core.NewCaseManager(&PackingExactCase{}, &PackingVqeCase{})
	assert.Nil(t, err)
	cc, err := core.NewCaseContext()
	assert.Nil(t, err)
	cs, err := cm.NewCaseWithValidation(
		&core.CaseParam{
			CaseID:   uuid.NewString(),
			CaseType: caseType,
			Seed:     50,
			Params:   params,
		}, cc)
	assert.Nil(t, err)
	return cs
}

func runCase(ctx context.Context, cs core.Case) {
	cs.Prepare(ctx)
	cs.Execute(ctx)
	cs.Evaluate(ctx)
}

func TestPackingExactCasePasses(t *testing.T) {
	setupComponents(t, vqe.NewDummySolver())
	cs := newPackingCase(t, PACKING_EXACT_CASE, fixtureForTest(t))
	runCase(context.Background(), cs)

	cd := cs.CaseData()
	assert.Equal(t, core.PASSED, cd.Status, cd.Result.Message)
	assert.Equal(t, []int{0, 1, 1}, cd.Result.Selection)
	assert.InDelta(t, -2, cd.Result.Reference, 1e-12)
	assert.InDelta(t, -2, cd.Result.Estimate, 1e-9)
	assert.True(t, cs.IsFinished())
}

func TestPackingVqeCasePasses(t *testing.T) {
	setupComponents(t, vqe.NewDummySolver())
	cs := newPackingCase(t, PACKING_VQE_CASE, fixtureForTest(t))
	runCase(context.Background(), cs)

	cd := cs.CaseData()
	assert.Equal(t, core.PASSED, cd.Status, cd.Result.Message)
	assert.Equal(t, []int{0, 1, 1}, cd.Result.Selection)
	assert.InDelta(t, -2, cd.Result.Estimate, 1e-12)
	assert.NotEmpty(t, cd.Result.Diagnostics.Counts)
}

func TestPackingVqeCaseSkipsWhenSolverDown(t *testing.T) {
	setupComponents(t, &downSolver{})
	cs := newPackingCase(t, PACKING_VQE_CASE, fixtureForTest(t))
	runCase(context.Background(), cs)

	cd := cs.CaseData()
	assert.Equal(t, core.SKIPPED, cd.Status)
	assert.NotEmpty(t, cd.Result.Message)
}

func TestPackingExactCaseChecksExpectedSelection(t *testing.T) {
	setupComponents(t, vqe.NewDummySolver())
	cs := newPackingCaseWithParams(t, PACKING_EXACT_CASE, map[string]interface{}{
		"fixture_path":       fixtureForTest(t),
		"expected_selection": []int{1, 0, 0},
	})
	runCase(context.Background(), cs)

	cd := cs.CaseData()
	assert.Equal(t, core.FAILED, cd.Status)
	assert.Contains(t, cd.Result.Message, "differs from the expected [1 0 0]")
}

func TestPackingCaseFallsBackToShippedFixture(t *testing.T) {
	setupComponents(t, vqe.NewDummySolver())
	cs := newPackingCaseWithParams(t, PACKING_EXACT_CASE, map[string]interface{}{})
	runCase(context.Background(), cs)

	cd := cs.CaseData()
	assert.Equal(t, core.PASSED, cd.Status, cd.Result.Message)
	assert.Equal(t, []int{0, 1, 1}, cd.Result.Selection)
}

func TestToSelection(t *testing.T) {
	assert.Equal(t, []int{0, 1, 1}, toSelection([]int{0, 1, 1}))
	assert.Equal(t, []int{0, 1, 1}, toSelection([]interface{}{int64(0), int64(1), int64(1)}))
	assert.Equal(t, []int{1, 0}, toSelection([]interface{}{float64(1), 0}))
	assert.Nil(t, toSelection([]interface{}{"1"}))
	assert.Nil(t, toSelection("101"))
}

func TestPackingCaseFailsOnMissingFixture(t *testing.T) {
	setupComponents(t, vqe.NewDummySolver())
	cs := newPackingCase(t, PACKING_EXACT_CASE, "no_such_fixture")
	runCase(context.Background(), cs)
	assert.Equal(t, core.FAILED, cs.CaseData().Status)
}

// downSolver reports an unavailable backend without ever solving.
type downSolver struct {
	vqe.DummySolver
}

func (s *downSolver) Probe(ctx context.Context) core.Availability {
	return core.Down("solver backend is offline for maintenance")
}
