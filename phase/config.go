// Package phase estimates ground state energies through quantum phase
// estimation backends.
package phase

import (
	"fmt"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/zap"
)

const phaseSettingName = "phase"

// Config drives one phase estimation run. AncillaBits fixes the readout
// resolution; the evolution is split into TimeSlices product formula steps
// of the given expansion.
type Config struct {
	TimeSlices     int    `json:"time_slices"`
	AncillaBits    int    `json:"ancilla_bits"`
	ExpansionMode  string `json:"expansion_mode"`
	ExpansionOrder int    `json:"expansion_order"`
	Shots          int    `json:"shots"`
	Seed           int    `json:"seed"`
	InitialState   string `json:"initial_state"`
	IQFT           string `json:"iqft"`
}

func DefaultConfig() Config {
	return Config{
		TimeSlices:     1,
		AncillaBits:    6,
		ExpansionMode:  "suzuki",
		ExpansionOrder: 2,
		Shots:          100,
		Seed:           0,
		InitialState:   "hartree_fock",
		IQFT:           "standard",
	}
}

// ConfigFromSetting overlays the [com.phase] block of the setting file on
// the defaults.
func ConfigFromSetting() Config {
	c := DefaultConfig()
	raw, ok := core.GetComponentSetting(phaseSettingName)
	if !ok {
		zap.L().Debug("no phase setting found, using defaults")
		return c
	}
	pp, ok := raw.(map[string]interface{})
	if !ok {
		zap.L().Error(fmt.Sprintf("phase setting has unexpected shape %T", raw))
		return c
	}
	core.SetField("expansion_mode", &c.ExpansionMode, pp, c.ExpansionMode)
	core.SetField("initial_state", &c.InitialState, pp, c.InitialState)
	core.SetField("iqft", &c.IQFT, pp, c.IQFT)
	setIntField("time_slices", &c.TimeSlices, pp)
	setIntField("ancilla_bits", &c.AncillaBits, pp)
	setIntField("expansion_order", &c.ExpansionOrder, pp)
	setIntField("shots", &c.Shots, pp)
	setIntField("seed", &c.Seed, pp)
	return c
}

// TOML integers decode as int64, so the generic field setter does not fit.
func setIntField(key string, target *int, pp map[string]interface{}) {
	if v, ok := pp[key]; ok {
		if n, ok := v.(int64); ok && n != 0 {
			*target = int(n)
		}
	}
}

func (c Config) Validate() error {
	if c.TimeSlices < 1 {
		return fmt.Errorf("time slices must be at least 1, got %d", c.TimeSlices)
	}
	if c.AncillaBits < 1 || c.AncillaBits > 20 {
		return fmt.Errorf("ancilla bits must be within [1, 20], got %d", c.AncillaBits)
	}
	switch c.ExpansionMode {
	case "trotter", "suzuki":
	default:
		return fmt.Errorf("unknown expansion mode %q", c.ExpansionMode)
	}
	if c.ExpansionMode == "suzuki" && c.ExpansionOrder%2 != 0 {
		return fmt.Errorf("suzuki expansion order must be even, got %d", c.ExpansionOrder)
	}
	if c.Shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", c.Shots)
	}
	switch c.InitialState {
	case "hartree_fock", "zero":
	default:
		return fmt.Errorf("unknown initial state %q", c.InitialState)
	}
	if c.IQFT != "standard" {
		return fmt.Errorf("unknown iqft form %q", c.IQFT)
	}
	return nil
}
