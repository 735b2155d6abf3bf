// Package energy holds the conformance case of the bond distance sweep: a
// phase estimation readout must match exact diagonalization on the same
// molecular Hamiltonian.
package energy

import (
	"context"
	"fmt"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/chem"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/eigen"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"github.com/eigenbench-team/eigenbench/harness/phase"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

const (
	ENERGY_CASE        = "energy_case"
	ENERGY_SETTING_KEY = "energy"

	DEFAULT_MAPPING            = "parity"
	DEFAULT_SIGNIFICANT_DIGITS = 2
)

type EnergySetting struct {
	Mapping           string `toml:"mapping"`
	Reduce            bool   `toml:"reduce"`
	SignificantDigits int    `toml:"significant_digits"`
}

func NewEnergySetting() EnergySetting {
	return EnergySetting{
		Mapping:           DEFAULT_MAPPING,
		Reduce:            true,
		SignificantDigits: DEFAULT_SIGNIFICANT_DIGITS,
	}
}

type EnergyCase struct {
	setting     EnergySetting
	caseData    *core.CaseData
	caseContext *core.CaseContext

	molecule    *chem.Molecule
	hamiltonian *operator.Sum
	exact       *eigen.Result
	estimate    *phase.Result

	started  time.Time
	finished bool
}

func (c *EnergyCase) New(cd *core.CaseData, cc *core.CaseContext) core.Case {
	setting := NewEnergySetting()
	if s, ok := core.GetComponentSetting(ENERGY_SETTING_KEY); ok {
		if mapped, ok := s.(map[string]interface{}); ok {
			core.SetField("mapping", &setting.Mapping, mapped, setting.Mapping)
			if v, ok := mapped["reduce"].(bool); ok {
				setting.Reduce = v
			}
			if v, ok := mapped["significant_digits"].(int64); ok && v > 0 {
				setting.SignificantDigits = int(v)
			}
		}
	}
	return &EnergyCase{
		setting:     setting,
		caseData:    cd,
		caseContext: cc,
		finished:    false,
	}
}

func (c *EnergyCase) Prepare(ctx context.Context) {
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
	distance, ok := cd.Params["distance"].(float64)
	if !ok {
		core.SetFailure(cd, fmt.Errorf("case(%s) has no distance parameter", cd.ID))
		c.finished = true
		return
	}
	c.molecule = chem.Hydrogen(distance)

	var driver chem.Driver
	if err := container.Invoke(
		func(d chem.Driver) error {
			driver = d
			return nil
		}); err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	if av := driver.Probe(ctx); !av.Available {
		zap.L().Info(fmt.Sprintf("skipping case(%s): %s", cd.ID, av.Reason))
		core.SetSkip(cd, av.Reason)
		c.finished = true
		return
	}
	if err := c.prepareImpl(ctx, driver); err != nil {
		zap.L().Error(fmt.Sprintf("failed to prepare a case(%s). Reason:%s", cd.ID, err.Error()))
		core.SetFailure(cd, err)
		c.finished = true
	}
}

func (c *EnergyCase) prepareImpl(ctx context.Context, driver chem.Driver) error {
	integrals, err := driver.Load(ctx, c.molecule)
	if err != nil {
		return err
	}
	kind, err := chem.ToMappingKind(c.setting.Mapping)
	if err != nil {
		return err
	}
	c.hamiltonian, err = chem.QubitHamiltonian(integrals, kind, c.setting.Reduce)
	if err != nil {
		return err
	}
	solver := &eigen.ExactSolver{}
	c.exact, err = solver.Solve(ctx, c.hamiltonian, 1)
	if err != nil {
		return err
	}
	cd := c.caseData
	cd.Result.Reference = c.exact.GroundEnergy()
	cd.Result.Diagnostics.Eigvals = c.exact.Energies
	zap.L().Debug(fmt.Sprintf("case(%s) reference energy:%g at d=%.3f over %d qubits",
		cd.ID, cd.Result.Reference, c.molecule.Distance, c.hamiltonian.Qubits()))
	return nil
}

func (c *EnergyCase) Execute(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	container := core.GetSystemComponents().Container
	var estimator phase.Estimator
	if err := container.Invoke(
		func(e phase.Estimator) error {
			estimator = e
			return nil
		}); err != nil {
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	if av := estimator.Probe(ctx); !av.Available {
		zap.L().Info(fmt.Sprintf("skipping case(%s): %s", cd.ID, av.Reason))
		core.SetSkip(cd, av.Reason)
		c.finished = true
		return
	}
	cfg := phase.ConfigFromSetting()
	cfg.Seed = int(cd.Seed)
	res, err := estimator.Estimate(ctx, c.hamiltonian, cfg)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to execute a case(%s). Reason:%s", cd.ID, err.Error()))
		core.SetFailure(cd, err)
		c.finished = true
		return
	}
	c.estimate = res
	cd.Result.Estimate = res.Energy
	d := cd.Result.Diagnostics
	d.Stretch = res.Stretch
	d.Translation = res.Translation
	d.TopLabel = res.TopLabel
	d.TopDecimal = res.TopDecimal
	d.Counts = core.Counts(res.Counts)
	d.RefLabel = c.referenceLabel(cfg.AncillaBits)
}

// referenceLabel renders the exact reference as a readable phase with guard
// digits past the register resolution, for eyeballing readout drift.
func (c *EnergyCase) referenceLabel(ancillaBits int) string {
	if c.estimate == nil || c.exact == nil {
		return ""
	}
	phi := (c.exact.GroundEnergy() + c.estimate.Translation) * c.estimate.Stretch
	label, err := operator.BinaryFraction(phi, ancillaBits+operator.GuardDigits)
	if err != nil {
		zap.L().Debug(fmt.Sprintf("reference phase %g is not renderable: %s", phi, err))
		return ""
	}
	return label
}

func (c *EnergyCase) Evaluate(ctx context.Context) {
	if c.finished {
		return
	}
	cd := c.caseData
	tolerance := core.SignificantDigits{Digits: c.setting.SignificantDigits}
	cd.Result.Tolerance = tolerance.Describe()
	cd.Result.ExecutionTime = time.Since(c.started)
	if tolerance.Check(cd.Result.Estimate, cd.Result.Reference) {
		cd.Result.Message = fmt.Sprintf("estimate %g matches reference %g to %d significant digits",
			cd.Result.Estimate, cd.Result.Reference, c.setting.SignificantDigits)
		cd.Status = core.PASSED
	} else {
		cd.Result.Message = fmt.Sprintf("estimate %g misses reference %g at %d significant digits",
			cd.Result.Estimate, cd.Result.Reference, c.setting.SignificantDigits)
		cd.Status = core.FAILED
	}
	cd.Ended = strfmt.DateTime(time.Now())
	c.finished = true
}

func (c *EnergyCase) IsFinished() bool {
	return c.finished
}

func (c *EnergyCase) CaseData() *core.CaseData {
	return c.caseData
}

func (c *EnergyCase) CaseType() string {
	return ENERGY_CASE
}

func (c *EnergyCase) CaseContext() *core.CaseContext {
	return c.caseContext
}

func (c *EnergyCase) Clone() core.Case {
	return &EnergyCase{
		setting:     c.setting,
		caseData:    c.caseData.Clone(),
		caseContext: c.caseContext,
		finished:    c.finished,
	}
}
