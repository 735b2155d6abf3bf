package vqe

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
)

const DummySolverName = "dummy_solver"

// DummySolver stands in for a variational backend. It runs a seeded random
// search over the computational basis, which is exhaustive in practice on
// conformance sized instances, and samples its final state like a sampling
// backend would.
type DummySolver struct{}

func NewDummySolver() *DummySolver {
	return &DummySolver{}
}

func (s *DummySolver) Name() string {
	return DummySolverName
}

func (s *DummySolver) Solve(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !op.IsDiagonal() {
		return nil, fmt.Errorf("dummy solver needs a diagonal cost operator")
	}
	zap.L().Info(fmt.Sprintf("[Dummy] starting variational search/seed:%d/iters:%d",
		cfg.Seed, cfg.MaxIters))
	randGenerator := rand.New(rand.NewSource(int64(cfg.Seed)))
	dim := 1 << op.Qubits()

	best := randGenerator.Intn(dim)
	bestValue, err := op.DiagonalValue(best)
	if err != nil {
		return nil, err
	}
	for iter := 0; iter < cfg.MaxIters; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for eval := 0; eval < cfg.MaxEvalsGrouped; eval++ {
			candidate := randGenerator.Intn(dim)
			value, err := op.DiagonalValue(candidate)
			if err != nil {
				return nil, err
			}
			if value < bestValue {
				best = candidate
				bestValue = value
			}
		}
	}

	counts := s.sample(randGenerator, best, op.Qubits(), dim, cfg.Shots)
	zap.L().Info(fmt.Sprintf("[Dummy] finished variational search/energy:%g", bestValue))
	return &Result{Energy: bestValue, Counts: counts}, nil
}

// sample concentrates most shots on the optimized state with a thin tail of
// stray readouts, mimicking a sampling backend.
func (s *DummySolver) sample(randGenerator *rand.Rand, best, qubits, dim, shots int) map[string]uint32 {
	counts := make(map[string]uint32)
	for shot := 0; shot < shots; shot++ {
		basis := best
		if randGenerator.Intn(10) == 0 {
			basis = randGenerator.Intn(dim)
		}
		counts[bitstring(basis, qubits)]++
	}
	// the optimized state must always be present
	if counts[bitstring(best, qubits)] == 0 {
		counts[bitstring(best, qubits)] = 1
	}
	return counts
}

func bitstring(basis, qubits int) string {
	return fmt.Sprintf("%0*b", qubits, basis)
}

// Probe always succeeds, the dummy backend has no external dependency.
func (s *DummySolver) Probe(ctx context.Context) core.Availability {
	return core.Up()
}
