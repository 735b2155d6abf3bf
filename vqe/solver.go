// Package vqe solves diagonal cost operators with variational backends.
package vqe

import (
	"context"
	"fmt"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
)

const vqeSettingName = "vqe"

// Config drives one variational run. Depth and Entanglement shape the
// ansatz; MaxEvalsGrouped is the number of candidate evaluations batched
// per optimizer step.
type Config struct {
	Seed            int    `json:"seed"`
	Depth           int    `json:"depth"`
	Entanglement    string `json:"entanglement"`
	MaxIters        int    `json:"max_iters"`
	MaxEvalsGrouped int    `json:"max_evals_grouped"`
	Shots           int    `json:"shots"`
}

func DefaultConfig() Config {
	return Config{
		Seed:            50,
		Depth:           5,
		Entanglement:    "linear",
		MaxIters:        200,
		MaxEvalsGrouped: 2,
		Shots:           100,
	}
}

// ConfigFromSetting overlays the [com.vqe] block of the setting file on the
// defaults.
func ConfigFromSetting() Config {
	c := DefaultConfig()
	raw, ok := core.GetComponentSetting(vqeSettingName)
	if !ok {
		zap.L().Debug("no vqe setting found, using defaults")
		return c
	}
	pp, ok := raw.(map[string]interface{})
	if !ok {
		zap.L().Error(fmt.Sprintf("vqe setting has unexpected shape %T", raw))
		return c
	}
	core.SetField("entanglement", &c.Entanglement, pp, c.Entanglement)
	setIntField("seed", &c.Seed, pp)
	setIntField("depth", &c.Depth, pp)
	setIntField("max_iters", &c.MaxIters, pp)
	setIntField("max_evals_grouped", &c.MaxEvalsGrouped, pp)
	setIntField("shots", &c.Shots, pp)
	return c
}

func setIntField(key string, target *int, pp map[string]interface{}) {
	if v, ok := pp[key]; ok {
		if n, ok := v.(int64); ok && n != 0 {
			*target = int(n)
		}
	}
}

func (c Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("ansatz depth must be at least 1, got %d", c.Depth)
	}
	switch c.Entanglement {
	case "linear", "full":
	default:
		return fmt.Errorf("unknown entanglement %q", c.Entanglement)
	}
	if c.MaxIters < 1 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIters)
	}
	if c.MaxEvalsGrouped < 1 {
		return fmt.Errorf("grouped evaluations must be positive, got %d", c.MaxEvalsGrouped)
	}
	if c.Shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", c.Shots)
	}
	return nil
}

// Result is the outcome of one variational run. Counts hold the final
// sampling of the optimized state.
type Result struct {
	Energy float64           `json:"energy"`
	Counts map[string]uint32 `json:"counts"`
}

// Solver minimizes a diagonal cost operator. Implementations must be safe
// for sequential reuse across a sweep.
type Solver interface {
	Name() string
	Solve(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error)
	Probe(ctx context.Context) core.Availability
}
