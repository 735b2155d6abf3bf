package phase

import (
	"context"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
)

// Result carries the energy readout of one estimation together with the
// scaling diagnostics needed to interpret the ancilla register.
type Result struct {
	Energy      float64           `json:"energy"`
	EigvalRaw   float64           `json:"eigval_raw"`
	Stretch     float64           `json:"stretch"`
	Translation float64           `json:"translation"`
	TopLabel    string            `json:"top_label"`
	TopDecimal  float64           `json:"top_decimal"`
	Counts      map[string]uint32 `json:"counts"`
}

// Estimator runs phase estimation on one operator. Implementations must be
// safe for sequential reuse across a sweep.
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error)
	Probe(ctx context.Context) core.Availability
}
