//go:build unit
// +build unit

package backend

import (
	"fmt"
	"testing"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func watcherForTest(t *testing.T, c Client) *Watcher {
	t.Helper()
	core.SCWithDBContainer()
	w := &Watcher{EnableDummy: true}
	assert.Nil(t, w.Setup())
	w.client = c
	return w
}

func availableInfo() *core.BackendInfo {
	return &core.BackendInfo{
		BackendName: "statevector_sim",
		Status:      core.Available,
		MaxQubits:   24,
		CheckedAt:   time.Now().Format(time.RFC3339),
	}
}

func TestWatcherSetParams(t *testing.T) {
	w := &Watcher{}
	assert.Nil(t, w.SetParams(map[string]interface{}{
		"endpoint":      "solver.example.com:7081",
		"api_key":       "SecretKey",
		"max_retry":     int64(5),
		"normal_period": "5s",
		"idle_period":   "2m",
	}))
	assert.Equal(t, "solver.example.com:7081", w.Endpoint)
	assert.Equal(t, "SecretKey", w.APIKey)
	assert.Equal(t, 5, w.MaxRetry)
	assert.Equal(t, 5*time.Second, w.NormalPeriod)
	assert.Equal(t, 2*time.Minute, w.IdlePeriod)
}

func TestWatcherSetParamsDefaults(t *testing.T) {
	w := &Watcher{}
	assert.Nil(t, w.SetParams(map[string]interface{}{}))
	assert.Equal(t, DEFAULT_ENDPOINT, w.Endpoint)
	assert.Equal(t, DEFAULT_MAX_RETRY, w.MaxRetry)
	assert.Equal(t, DEFAULT_NORMAL_PERIOD, w.NormalPeriod)
	assert.Equal(t, DEFAULT_IDLE_PERIOD, w.IdlePeriod)
}

func TestWatcherSetupRejectsBadEndpoint(t *testing.T) {
	w := &Watcher{Endpoint: "bad^host:7081"}
	assert.Error(t, w.Setup())

	w = &Watcher{Endpoint: "no-port-at-all"}
	assert.Error(t, w.Setup())
}

func TestWatcherRefreshesSnapshot(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mock := NewMockClient(mockCtrl)
	mock.EXPECT().GetHealth(gomock.Any()).Return(nil)
	mock.EXPECT().GetInfo(gomock.Any()).Return(availableInfo(), nil)

	w := watcherForTest(t, mock)
	w.Task()

	av := core.GetSystemComponents().Snapshot.Get(ProbeName)
	assert.True(t, av.Available)
	assert.Equal(t, WATCHING, w.state)
	assert.Equal(t, "statevector_sim", w.LastInfo().BackendName)
	ok, period := w.RequirePeriodUpdate()
	assert.True(t, ok)
	assert.Equal(t, w.NormalPeriod, period)
}

func TestWatcherBacksOffToIdle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mock := NewMockClient(mockCtrl)
	mock.EXPECT().GetHealth(gomock.Any()).
		Return(fmt.Errorf("connection refused")).Times(4)

	w := watcherForTest(t, mock)
	w.MaxRetry = 3

	w.Task()
	assert.Equal(t, SUB_IDLE, w.state)
	assert.Equal(t, w.NormalPeriod, w.currentPeriod)
	w.Task()
	assert.Equal(t, SUB_IDLE, w.state)
	w.Task()
	assert.Equal(t, IDLE, w.state)
	assert.Equal(t, w.IdlePeriod, w.currentPeriod)
	w.Task()
	assert.Equal(t, IDLE, w.state)

	av := core.GetSystemComponents().Snapshot.Get(ProbeName)
	assert.False(t, av.Available)
	assert.NotEmpty(t, av.Reason)
}

func TestWatcherRecoversFromIdle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mock := NewMockClient(mockCtrl)
	gomock.InOrder(
		mock.EXPECT().GetHealth(gomock.Any()).Return(fmt.Errorf("down")).Times(3),
		mock.EXPECT().GetHealth(gomock.Any()).Return(nil),
	)
	mock.EXPECT().GetInfo(gomock.Any()).Return(availableInfo(), nil)

	w := watcherForTest(t, mock)
	w.MaxRetry = 3
	for i := 0; i < 3; i++ {
		w.Task()
	}
	assert.Equal(t, IDLE, w.state)

	w.Task()
	assert.Equal(t, WATCHING, w.state)
	assert.Equal(t, w.NormalPeriod, w.currentPeriod)
	assert.True(t, core.GetSystemComponents().Snapshot.Get(ProbeName).Available)
}

func TestWatcherReportsDownWhenBackendDegraded(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	mock := NewMockClient(mockCtrl)
	mock.EXPECT().GetHealth(gomock.Any()).Return(nil)
	degraded := availableInfo()
	degraded.Status = core.Degraded
	mock.EXPECT().GetInfo(gomock.Any()).Return(degraded, nil)

	w := watcherForTest(t, mock)
	w.Task()

	av := core.GetSystemComponents().Snapshot.Get(ProbeName)
	assert.False(t, av.Available)
	assert.Equal(t, WATCHING, w.state)
}
