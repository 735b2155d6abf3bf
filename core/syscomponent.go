package core

import (
	"fmt"

	"github.com/go-faster/jx"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

type ResultChan chan *CaseData

type Channels struct {
	ResultChan
	// when more channel is needed, add here
	// would use map[string]chan *CaseData
}

func NewChannels() *Channels {
	return &Channels{
		ResultChan: make(ResultChan),
	}
}

func (c *Channels) Close() {
	close(c.ResultChan)
}

func (c *Channels) Check() error {
	if c.ResultChan == nil {
		return fmt.Errorf("ResultChan is nil")
	}
	return nil
}

type BackendStatus int

const (
	Available BackendStatus = iota
	Unavailable
	Degraded
)

func (bs BackendStatus) String() string {
	switch bs {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case Degraded:
		return "Degraded"
	default:
		return "Unknown"
	}
}

// BackendInfo is the last known shape of a remote solver backend, refreshed
// by the backend watcher.
type BackendInfo struct {
	BackendName  string        `json:"backend_name"`
	ProviderName string        `json:"provider_name"`
	Type         string        `json:"type"`
	Status       BackendStatus `json:"status"`
	MaxQubits    int           `json:"max_qubits"`
	MaxShots     int           `json:"max_shots"`
	APIVersion   string        `json:"api_version"`
	CheckedAt    string        `json:"checked_at"`
}

func (b *BackendInfo) JSON() string {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("backend_name")
		e.Str(b.BackendName)
		e.FieldStart("provider_name")
		e.Str(b.ProviderName)
		e.FieldStart("type")
		e.Str(b.Type)
		e.FieldStart("status")
		e.Str(b.Status.String())
		e.FieldStart("max_qubits")
		e.Int(b.MaxQubits)
		e.FieldStart("max_shots")
		e.Int(b.MaxShots)
		e.FieldStart("api_version")
		e.Str(b.APIVersion)
		e.FieldStart("checked_at")
		e.Str(b.CheckedAt)
	})
	return e.String()
}

// CaseRunner owns the sequential execution of queued cases.
type CaseRunner interface {
	Setup(*Conf) error
	Start() error
	HandleCase(Case)
	HandleCaseAndWait(Case)
	// Queue Data Access
	GetCurrentQueueSize() int
}

// DBManager stores finished and in-flight case data for the sweep report.
type DBManager interface {
	Setup(ResultChan, *Conf) error
	Insert(*CaseData) error
	Get(string) (*CaseData, error)
	Update(*CaseData) error
	Delete(string) error
	List() []*CaseData
	Tally() map[Status]int
}

type SystemComponents struct {
	*dig.Container
	*Channels
	Snapshot *AvailabilitySnapshot
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		Container: con,
		Channels:  NewChannels(),
		Snapshot:  NewAvailabilitySnapshot(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	resultChan := s.ResultChan

	zap.L().Debug("Setting up DB")
	var err error
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(resultChan, conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up case runner")
	err = s.Invoke(
		func(r CaseRunner) error {
			return r.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(r CaseRunner) error {
			return r.Start()
		})
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(r CaseRunner) {
			size = r.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) GetTally() map[Status]int {
	var tally map[Status]int
	s.Invoke(
		func(d DBManager) {
			tally = d.Tally()
		})
	return tally
}
