// Package packing holds the conformance cases of the set packing suite: the
// Ising cost operator ground state must reproduce the brute force optimum,
// both under exact diagonalization and under a variational backend.
package packing

import (
	"fmt"
	"sync"

	"github.com/eigenbench-team/eigenbench/harness/common"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/ising"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	"go.uber.org/zap"
)

const (
	PACKING_SETTING_KEY = "packing"

	DEFAULT_FIXTURE_ASSET = "sample.setpacking"
)

type PackingSetting struct {
	Penalty  float64 `toml:"penalty"`
	Reward   float64 `toml:"reward"`
	Expected []int   `toml:"expected_selection"`
}

func NewPackingSetting() PackingSetting {
	return PackingSetting{
		Penalty: ising.DefaultPenalty,
		Reward:  ising.DefaultReward,
		// the optimum of the shipped sample fixture
		Expected: []int{0, 1, 1},
	}
}

// instance caches one loaded fixture together with its cost operator and
// brute force optimum, shared by every case of a sweep.
type instance struct {
	packing *ising.SetPacking
	cost    *operator.Sum
	oracle  int
}

var (
	instanceMu    sync.Mutex
	instanceCache = make(map[string]*instance)
)

// loadInstance resolves a fixture once per path. The oracle scan is
// exponential, so sharing it across cases matters even on small instances.
func loadInstance(path string, setting PackingSetting) (*instance, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if inst, ok := instanceCache[path]; ok {
		return inst, nil
	}
	sp, err := ising.Load(path)
	if err != nil {
		return nil, err
	}
	cost, err := sp.CostOperator(setting.Penalty, setting.Reward)
	if err != nil {
		return nil, err
	}
	inst := &instance{
		packing: sp,
		cost:    cost,
		oracle:  sp.Oracle(),
	}
	zap.L().Debug(fmt.Sprintf("loaded set packing fixture %s/subsets:%d/oracle:%d",
		path, sp.Size(), inst.oracle))
	instanceCache[path] = inst
	return inst, nil
}

// fixturePath resolves the per-case override, falling back to the shipped
// sample fixture.
func fixturePath(cd *core.CaseData) (string, error) {
	if path, ok := cd.Params["fixture_path"].(string); ok && path != "" {
		return path, nil
	}
	return common.GetAssetAbsPath(DEFAULT_FIXTURE_ASSET)
}

// expectedSelection resolves the per-case override, falling back to the
// configured vector.
func expectedSelection(cd *core.CaseData, setting PackingSetting) []int {
	if v, ok := cd.Params["expected_selection"]; ok {
		if sel := toSelection(v); sel != nil {
			return sel
		}
	}
	return setting.Expected
}

// toSelection accepts the decoded forms a selection vector arrives in, TOML
// and JSON included.
func toSelection(v interface{}) []int {
	switch vv := v.(type) {
	case []int:
		return vv
	case []interface{}:
		out := make([]int, 0, len(vv))
		for _, x := range vv {
			switch n := x.(type) {
			case int64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			default:
				return nil
			}
		}
		return out
	}
	return nil
}

func equalSelection(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func selectionCount(selection []int) int {
	count := 0
	for _, x := range selection {
		count += x
	}
	return count
}
