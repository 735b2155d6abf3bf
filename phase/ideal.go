package phase

import (
	"context"
	"fmt"
	"math"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/eigen"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
)

// IdealEstimator models a noiseless phase estimation backend. The only error
// it keeps is the finite resolution of the ancilla register: the exact
// ground eigenvalue is rescaled into the unit interval, rounded to the
// nearest readable phase and mapped back.
type IdealEstimator struct {
	solver *eigen.ExactSolver
}

func NewIdealEstimator() *IdealEstimator {
	return &IdealEstimator{solver: &eigen.ExactSolver{}}
}

func (e *IdealEstimator) Name() string {
	return "ideal_estimator"
}

func (e *IdealEstimator) Estimate(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	exact, err := e.solver.Solve(ctx, op, 1)
	if err != nil {
		return nil, err
	}
	raw := exact.GroundEnergy()

	// Rescale the spectrum into [0, 1) so every eigenvalue is a readable
	// phase. CoeffBound dominates the spectral radius.
	bound := op.CoeffBound()
	if bound == 0 {
		return nil, fmt.Errorf("operator has zero coefficient bound")
	}
	translation := bound
	stretch := 0.5 / bound
	phi := (raw + translation) * stretch

	register := 1 << cfg.AncillaBits
	// A phase rounding up to 1.0 stays on the highest readable label
	// instead of wrapping to zero.
	m := int(math.Round(phi * float64(register)))
	if m >= register {
		m = register - 1
	}
	topDecimal := float64(m) / float64(register)
	topLabel, err := operator.BinaryFraction(topDecimal, cfg.AncillaBits)
	if err != nil {
		return nil, err
	}
	energy := topDecimal/stretch - translation

	counts := map[string]uint32{topLabel: uint32(cfg.Shots)}
	zap.L().Debug(fmt.Sprintf("ideal readout/raw:%g/phi:%g/label:%s/energy:%g",
		raw, phi, topLabel, energy))
	return &Result{
		Energy:      energy,
		EigvalRaw:   raw,
		Stretch:     stretch,
		Translation: translation,
		TopLabel:    topLabel,
		TopDecimal:  topDecimal,
		Counts:      counts,
	}, nil
}

// Probe always succeeds, the ideal backend has no external dependency.
func (e *IdealEstimator) Probe(ctx context.Context) core.Availability {
	return core.Up()
}
