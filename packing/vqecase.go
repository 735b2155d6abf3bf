package packing

import (
	"context"
	"fmt"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"github.com/eigenbench-team/eigenbench/harness/vqe"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

const PACKING_VQE_CASE = "packing_vqe_case"

// PackingVqeCase runs a variational backend on the cost operator and checks
// the dominant readout against the brute force oracle.
type PackingVqeCase struct {
	setting     PackingSetting
	caseData    *core.CaseData
	caseContext *core.CaseContext

	inst      *instance
	selection []int

	started  time.Time
	finished bool
}

func (c *PackingVqeCase) New(cd *core.CaseData, cc *core.CaseContext) core.Case {
	return &PackingVqeCase{
		setting:     packingSetting(),
		caseData:    cd,
		caseContext: cc,
		finished:    false,
	}
}

func (c *PackingVqeCase) Prepare(ctx context.Context) {
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
	cd.Result.Reference = -c.setting.Reward * float64(inst.oracle)
}

func (c *PackingVqeCase) Execute(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	container := core.GetSystemComponents().Container
	var solver vqe.Solver
	if err := container.Invoke(
		func(s vqe.Solver) error {
			solver = s
			return nil
		}); err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	if av := solver.Probe(ctx); !av.Available {
		zap.L().Info(fmt.Sprintf("skipping case(%s): %s", cd.ID, av.Reason))
		core.SetSkip(cd, av.Reason)
		c.finished = true
		return
	}
	cfg := vqe.ConfigFromSetting()
	if cd.Seed != 0 {
		cfg.Seed = int(cd.Seed)
	}
	res, err := solver.Solve(ctx, c.inst.cost, cfg)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to execute a case(%s). Reason:%s", cd.ID, err.Error()))
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	basis, err := operator.MostLikely(res.Counts, c.inst.cost.Qubits())
	if err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	c.selection = c.inst.packing.Decode(basis)
	cd.Result.Estimate = res.Energy
	cd.Result.Selection = c.selection
	cd.Result.Diagnostics.Counts = core.Counts(res.Counts)
	zap.L().Debug(fmt.Sprintf("case(%s) dominant readout basis:%d/selection:%v",
		cd.ID, basis, c.selection))
}

func (c *PackingVqeCase) Evaluate(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	tolerance := core.AbsoluteTolerance{Bound: 1e-9}
	cd.Result.Tolerance = tolerance.Describe()
	cd.Result.ExecutionTime = time.Since(c.started)
	switch {
	case !c.inst.packing.IsDisjoint(c.selection):
		cd.Result.Message = fmt.Sprintf("dominant readout %v is not disjoint", c.selection)
		cd.Status = core.FAILED
	case selectionCount(c.selection) != c.inst.oracle:
		cd.Result.Message = fmt.Sprintf("dominant readout packs %d subsets, oracle packs %d",
			selectionCount(c.selection), c.inst.oracle)
		cd.Status = core.FAILED
	case !tolerance.Check(cd.Result.Estimate, cd.Result.Reference):
		cd.Result.Message = fmt.Sprintf("variational energy %g misses the oracle energy %g",
			cd.Result.Estimate, cd.Result.Reference)
		cd.Status = core.FAILED
	default:
		cd.Result.Message = fmt.Sprintf("variational readout packs the oracle optimum of %d subsets",
			c.inst.oracle)
		cd.Status = core.PASSED
	}
	cd.Ended = strfmt.DateTime(time.Now())
	c.finished = true
}

func (c *PackingVqeCase) IsFinished() bool {
	return c.finished
}

func (c *PackingVqeCase) CaseData() *core.CaseData {
	return c.caseData
}

func (c *PackingVqeCase) CaseType() string {
	return PACKING_VQE_CASE
}

func (c *PackingVqeCase) CaseContext() *core.CaseContext {
	return c.caseContext
}

func (c *PackingVqeCase) Clone() core.Case {
	return &PackingVqeCase{
		setting:     c.setting,
		caseData:    c.caseData.Clone(),
		caseContext: c.caseContext,
		finished:    c.finished,
	}
}
