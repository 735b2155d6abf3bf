// Package eigen holds the exact classical reference solver.
package eigen

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Result is the reference output of an exact diagonalization. It is never
// mutated after Solve returns.
type Result struct {
	Energies    []float64 // ascending, len k
	GroundIndex int       // basis index of the dominant ground state amplitude
	GroundState []float64 // amplitude magnitudes over the computational basis
}

func (r *Result) GroundEnergy() float64 {
	return r.Energies[0]
}

// ExactSolver diagonalizes operators exactly. Diagonal sums are scanned over
// the computational basis; general Hermitian sums go through a dense
// symmetric eigendecomposition.
type ExactSolver struct{}

func (e *ExactSolver) Solve(ctx context.Context, op *operator.Sum, k int) (*Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("eigenvalue count must be positive, got %d", k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if op.IsDiagonal() {
		return solveDiagonal(op, k)
	}
	return solveDense(op, k)
}

func solveDiagonal(op *operator.Sum, k int) (*Result, error) {
	dim := 1 << op.Qubits()
	type entry struct {
		basis int
		value float64
	}
	entries := make([]entry, dim)
	for b := 0; b < dim; b++ {
		v, err := op.DiagonalValue(b)
		if err != nil {
			return nil, err
		}
		entries[b] = entry{basis: b, value: v}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value < entries[j].value
		}
		return entries[i].basis < entries[j].basis
	})
	if k > dim {
		k = dim
	}
	energies := make([]float64, k)
	for i := 0; i < k; i++ {
		energies[i] = entries[i].value
	}
	state := make([]float64, dim)
	state[entries[0].basis] = 1
	zap.L().Debug(fmt.Sprintf("diagonal scan ground state/basis:%d/energy:%g",
		entries[0].basis, energies[0]))
	return &Result{
		Energies:    energies,
		GroundIndex: entries[0].basis,
		GroundState: state,
	}, nil
}

func solveDense(op *operator.Sum, k int) (*Result, error) {
	dim := 1 << op.Qubits()
	var (
		sym      *mat.SymDense
		embedded bool
		err      error
	)
	if op.HasImaginaryPart() {
		sym, err = op.RealEmbedding()
		embedded = true
	} else {
		sym, err = op.RealSymmetric()
	}
	if err != nil {
		return nil, err
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("eigendecomposition failed")
	}
	values := eig.Values(nil) // ascending
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	stride := 1
	if embedded {
		// the embedding doubles every eigenvalue
		stride = 2
	}
	if k > dim {
		k = dim
	}
	energies := make([]float64, k)
	for i := 0; i < k; i++ {
		energies[i] = values[i*stride]
	}

	state := make([]float64, dim)
	groundIndex := 0
	best := -1.0
	for b := 0; b < dim; b++ {
		amp := vectors.At(b, 0)
		if embedded {
			im := vectors.At(dim+b, 0)
			amp = math.Hypot(amp, im)
		} else {
			amp = math.Abs(amp)
		}
		state[b] = amp
		if amp > best {
			best = amp
			groundIndex = b
		}
	}
	zap.L().Debug(fmt.Sprintf("dense ground state/basis:%d/energy:%g", groundIndex, energies[0]))
	return &Result{
		Energies:    energies,
		GroundIndex: groundIndex,
		GroundState: state,
	}, nil
}
