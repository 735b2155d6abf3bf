//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/go-faster/jx"

	"github.com/stretchr/testify/assert"
)

func TestBackendInfoJSON(t *testing.T) {
	b := &BackendInfo{
		BackendName:  "statevector_sim",
		ProviderName: "inhouse",
		Type:         "simulator",
		Status:       Available,
		MaxQubits:    24,
		MaxShots:     100000,
		APIVersion:   "v1",
		CheckedAt:    "2026-08-24T10:00:00Z",
	}
	dec := jx.DecodeStr(b.JSON())
	got := map[string]string{}
	assert.Nil(t, dec.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "backend_name", "status":
			s, err := d.Str()
			got[key] = s
			return err
		default:
			return d.Skip()
		}
	}))
	assert.Equal(t, "statevector_sim", got["backend_name"])
	assert.Equal(t, "Available", got["status"])
}

func TestBackendStatusString(t *testing.T) {
	assert.Equal(t, "Available", Available.String())
	assert.Equal(t, "Unavailable", Unavailable.String())
	assert.Equal(t, "Degraded", Degraded.String())
	assert.Equal(t, "Unknown", BackendStatus(42).String())
}

func TestChannelsCheck(t *testing.T) {
	c := NewChannels()
	assert.Nil(t, c.Check())
	assert.NotNil(t, (&Channels{}).Check())
}

func TestSystemComponentsTally(t *testing.T) {
	s := SCWithDBContainer()
	assert.Equal(t, map[Status]int{}, s.GetTally())

	err := s.Invoke(func(d DBManager) error {
		return d.Insert(&CaseData{ID: "a", Status: PASSED, Result: NewCaseResult()})
	})
	assert.Nil(t, err)
	err = s.Invoke(func(d DBManager) error {
		return d.Insert(&CaseData{ID: "b", Status: PASSED, Result: NewCaseResult()})
	})
	assert.Nil(t, err)
	err = s.Invoke(func(d DBManager) error {
		return d.Insert(&CaseData{ID: "c", Status: FAILED, Result: NewCaseResult()})
	})
	assert.Nil(t, err)

	assert.Equal(t, map[Status]int{PASSED: 2, FAILED: 1}, s.GetTally())
	assert.Equal(t, 0, s.GetCurrentQueueSize())
}

func TestAvailabilitySnapshot(t *testing.T) {
	snap := NewAvailabilitySnapshot()
	assert.False(t, snap.Get("backend").Available)

	snap.Set("backend", Up())
	assert.True(t, snap.Get("backend").Available)

	snap.Set("backend", Down("maintenance window"))
	av := snap.Get("backend")
	assert.False(t, av.Available)
	assert.Equal(t, "maintenance window", av.Reason)
}
