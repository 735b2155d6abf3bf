package packing

import (
	"context"
	"fmt"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/eigen"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

const PACKING_EXACT_CASE = "packing_exact_case"

// PackingExactCase diagonalizes the cost operator and checks the decoded
// ground state against the brute force oracle.
type PackingExactCase struct {
	setting     PackingSetting
	caseData    *core.CaseData
	caseContext *core.CaseContext

	inst      *instance
	selection []int
	expected  []int

	started  time.Time
	finished bool
}

func (c *PackingExactCase) New(cd *core.CaseData, cc *core.CaseContext) core.Case {
	return &PackingExactCase{
		setting:     packingSetting(),
		caseData:    cd,
		caseContext: cc,
		finished:    false,
	}
}

func packingSetting() PackingSetting {
	setting := NewPackingSetting()
	if s, ok := core.GetComponentSetting(PACKING_SETTING_KEY); ok {
		if mapped, ok := s.(map[string]interface{}); ok {
			if v, ok := mapped["penalty"].(float64); ok && v != 0 {
				setting.Penalty = v
			}
			if v, ok := mapped["reward"].(float64); ok && v != 0 {
				setting.Reward = v
			}
			if sel := toSelection(mapped["expected_selection"]); sel != nil {
				setting.Expected = sel
			}
		}
	}
	return setting
}

func (c *PackingExactCase) Prepare(ctx context.Context) {
	c.started = time.Now()
	cd := c.caseData
	cd.Status = core.RUNNING
	container := core.GetSystemComponents().Container
	if err := container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(cd)
		}); err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a case(%s). Reason:%s", cd.ID, err.Error()))
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	path, err := fixturePath(cd)
	if err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	inst, err := loadInstance(path, c.setting)
	if err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	c.inst = inst
	c.expected = expectedSelection(cd, c.setting)
	cd.Result.Reference = -c.setting.Reward * float64(inst.oracle)
}

func (c *PackingExactCase) Execute(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	solver := &eigen.ExactSolver{}
	res, err := solver.Solve(ctx, c.inst.cost, 1)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to execute a case(%s). Reason:%s", cd.ID, err.Error()))
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	c.selection = c.inst.packing.Decode(res.GroundIndex)
	cd.Result.Estimate = res.GroundEnergy()
	cd.Result.Selection = c.selection
	cd.Result.Diagnostics.Eigvals = res.Energies
	zap.L().Debug(fmt.Sprintf("case(%s) ground state basis:%d/selection:%v",
		cd.ID, res.GroundIndex, c.selection))
}

func (c *PackingExactCase) Evaluate(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	tolerance := core.AbsoluteTolerance{Bound: 1e-9}
	cd.Result.Tolerance = tolerance.Describe()
	cd.Result.ExecutionTime = time.Since(c.started)
	switch {
	case !c.inst.packing.IsDisjoint(c.selection):
		cd.Result.Message = fmt.Sprintf("ground state selection %v is not disjoint", c.selection)
		cd.Status = core.FAILED
	case selectionCount(c.selection) != c.inst.oracle:
		cd.Result.Message = fmt.Sprintf("ground state packs %d subsets, oracle packs %d",
			selectionCount(c.selection), c.inst.oracle)
		cd.Status = core.FAILED
	case !equalSelection(c.selection, c.expected):
		cd.Result.Message = fmt.Sprintf("ground state selection %v differs from the expected %v",
			c.selection, c.expected)
		cd.Status = core.FAILED
	case !tolerance.Check(cd.Result.Estimate, cd.Result.Reference):
		cd.Result.Message = fmt.Sprintf("ground energy %g misses the oracle energy %g",
			cd.Result.Estimate, cd.Result.Reference)
		cd.Status = core.FAILED
	default:
		cd.Result.Message = fmt.Sprintf("ground state packs the oracle optimum of %d subsets",
			c.inst.oracle)
		cd.Status = core.PASSED
	}
	cd.Ended = strfmt.DateTime(time.Now())
	c.finished = true
}

func (c *PackingExactCase) IsFinished() bool {
	return c.finished
}

func (c *PackingExactCase) CaseData() *core.CaseData {
	return c.caseData
}

func (c *PackingExactCase) CaseType() string {
	return PACKING_EXACT_CASE
}

func (c *PackingExactCase) CaseContext() *core.CaseContext {
	return c.caseContext
}

func (c *PackingExactCase) Clone() core.Case {
	return &PackingExactCase{
		setting:     c.setting,
		caseData:    c.caseData.Clone(),
		caseContext: c.caseContext,
		finished:    c.finished,
	}
}
