package backend

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/common"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/zap"
)

type state int

const WatcherTaskName = "backend_watcher"

// ProbeName is the availability snapshot key of the watched backend.
const ProbeName = "backend"

const (
	WATCHING state = iota
	SUB_IDLE
	IDLE
)

const (
	DEFAULT_ENDPOINT      = "localhost:7081"
	DEFAULT_API_KEY       = "DefaultAPIKey"
	DEFAULT_MAX_RETRY     = 3
	DEFAULT_NORMAL_PERIOD = time.Duration(10) * time.Second
	DEFAULT_IDLE_PERIOD   = time.Duration(60) * time.Second
	DEFAULT_PROBE_TIMEOUT = time.Duration(10) * time.Second
)

func (s state) String() string {
	switch s {
	case WATCHING:
		return "WATCHING"
	case SUB_IDLE:
		return "SUB_IDLE"
	case IDLE:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// Watcher periodically probes the solver backend and refreshes the
// availability snapshot. An unreachable backend backs the probe period off
// to the idle period after MaxRetry consecutive misses.
type Watcher struct {
	Endpoint     string        `toml:"endpoint"`
	APIKey       string        `toml:"api_key"`
	MaxRetry     int           `toml:"max_retry"`
	NormalPeriod time.Duration `toml:"normal_period"`
	IdlePeriod   time.Duration `toml:"idle_period"`

	EnableDummy bool `toml:"enable_dummy"`

	client Client

	currentPeriod time.Duration
	missCount     int
	state         state

	mu       sync.RWMutex
	lastInfo *core.BackendInfo

	sysCom *core.SystemComponents
}

func (w *Watcher) GetEmptyParams() interface{} {
	return &Watcher{}
}

func (w *Watcher) SetParams(params interface{}) error {
	if params == nil {
		msg := "no params for backend watcher"
		zap.L().Debug(msg)
		return nil
	}
	pp, ok := params.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for backend watcher/params: %s", params)
		zap.L().Error(msg.Error())
		return msg
	}
	zap.L().Debug(fmt.Sprintf("Set params for backend watcher: %v", pp))
	core.SetField[string]("endpoint", &w.Endpoint, pp, DEFAULT_ENDPOINT)
	core.SetField[string]("api_key", &w.APIKey, pp, DEFAULT_API_KEY)
	core.SetField[bool]("enable_dummy", &w.EnableDummy, pp, false)
	setIntField("max_retry", &w.MaxRetry, pp, DEFAULT_MAX_RETRY)

	core.SetDurationField("normal_period", &w.NormalPeriod, pp, DEFAULT_NORMAL_PERIOD)
	core.SetDurationField("idle_period", &w.IdlePeriod, pp, DEFAULT_IDLE_PERIOD)

	return nil
}

// TOML integers decode as int64.
func setIntField(key string, target *int, pp map[string]interface{}, defaultVal int) {
	if v, ok := pp[key]; ok {
		if i, ok := v.(int64); ok && i != 0 {
			*target = int(i)
			return
		}
	}
	zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
	*target = defaultVal
}

func (w *Watcher) RequirePeriodUpdate() (bool, time.Duration) {
	return true, w.currentPeriod
}

func (w *Watcher) Setup() error {
	if w.EnableDummy {
		zap.L().Info("Set dummy backend client")
		w.client = &DummyClient{}
	} else {
		if w.Endpoint == "" {
			w.Endpoint = DEFAULT_ENDPOINT
		}
		host, port, err := net.SplitHostPort(w.Endpoint)
		if err != nil {
			zap.L().Error(fmt.Sprintf("Invalid backend endpoint %s/reason:%s", w.Endpoint, err))
			return err
		}
		addr, err := common.ValidAddress(host, port)
		if err != nil {
			zap.L().Error(fmt.Sprintf("Invalid backend endpoint %s/reason:%s", w.Endpoint, err))
			return err
		}
		zap.L().Info(fmt.Sprintf("Set HTTP backend client/endpoint:%s", addr))
		w.client = NewHTTPClient(addr, w.APIKey)
	}
	if w.NormalPeriod <= 0 {
		w.NormalPeriod = DEFAULT_NORMAL_PERIOD
	}
	if w.IdlePeriod <= 0 {
		w.IdlePeriod = DEFAULT_IDLE_PERIOD
	}
	if w.MaxRetry <= 0 {
		w.MaxRetry = DEFAULT_MAX_RETRY
	}
	w.currentPeriod = w.NormalPeriod
	w.missCount = 0
	w.state = WATCHING
	w.sysCom = core.GetSystemComponents()
	return nil
}

func (w *Watcher) Task() {
	zap.L().Debug("Backend watcher is probing the backend")
	if err := w.refresh(); err != nil {
		zap.L().Info(fmt.Sprintf("Failed to probe the backend. MissCount:%d, Reason:%s",
			w.missCount, err))
		switch w.state {
		case WATCHING:
			w.missCount = 1
			w.updateState(SUB_IDLE)
			zap.L().Debug(fmt.Sprintf("Transition to sub idle mode. Retry after %s", w.NormalPeriod))
		case SUB_IDLE:
			w.missCount++
			if w.missCount < w.MaxRetry {
				zap.L().Debug(fmt.Sprintf("Retry after %s", w.NormalPeriod))
			} else {
				zap.L().Info("Reached max retry. Transition to idle mode")
				w.missCount = 0
				w.updateState(IDLE)
				w.currentPeriod = w.IdlePeriod
			}
		case IDLE:
			zap.L().Debug(fmt.Sprintf("Already in idle mode. Retry after idle period %s", w.IdlePeriod))
		default:
			zap.L().Error(fmt.Sprintf("Unknown state %d", int(w.state)))
		}
		return
	}
	switch w.state {
	case WATCHING:
		zap.L().Debug("keep watching")
	case SUB_IDLE:
		zap.L().Info("Transition to watching mode from sub_idle state")
		w.updateState(WATCHING)
		w.missCount = 0
	case IDLE:
		zap.L().Info("Transition to watching mode from idle state")
		w.currentPeriod = w.NormalPeriod
		w.updateState(WATCHING)
		w.missCount = 0
	default:
		zap.L().Error(fmt.Sprintf("Unknown state %d", int(w.state)))
	}
}

func (w *Watcher) Cleanup() {
	zap.L().Info("Backend watcher is cleaning up")
}

// refresh probes the backend once and records the result in the snapshot.
func (w *Watcher) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), DEFAULT_PROBE_TIMEOUT)
	defer cancel()
	if err := w.client.GetHealth(ctx); err != nil {
		w.sysCom.Snapshot.Set(ProbeName, core.Downf("backend is not reachable: %s", err))
		return err
	}
	info, err := w.client.GetInfo(ctx)
	if err != nil {
		w.sysCom.Snapshot.Set(ProbeName, core.Downf("backend info is not readable: %s", err))
		return err
	}
	if info.Status != core.Available {
		w.sysCom.Snapshot.Set(ProbeName,
			core.Downf("backend reports status %s", info.Status))
	} else {
		w.sysCom.Snapshot.Set(ProbeName, core.Up())
	}
	w.mu.Lock()
	w.lastInfo = info
	w.mu.Unlock()
	zap.L().Debug(fmt.Sprintf("Backend info:%s", info.JSON()))
	return nil
}

func (w *Watcher) LastInfo() *core.BackendInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastInfo
}

func (w *Watcher) updateState(newState state) {
	w.state = newState
}
