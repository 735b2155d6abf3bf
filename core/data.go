package core

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Status int // Verdict lifecycle of a case known to the whole engine.
type Counts map[string]uint32

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	PENDING  Status = iota // In the case queue, not picked up by the runner yet.
	RUNNING                // Being driven through its phases by the runner.
	PASSED                 // Finished and the comparison held within tolerance.
	FAILED                 // Finished with a tolerance breach or an internal error.
	SKIPPED                // A required collaborator was unavailable. Not a defect.
	TIMEDOUT               // The per-case wall-clock bound expired.
)

func (s Status) String() string {
	switch s {
	case PENDING:
		return "pending"
	case RUNNING:
		return "running"
	case PASSED:
		return "passed"
	case FAILED:
		return "failed"
	case SKIPPED:
		return "skipped"
	case TIMEDOUT:
		return "timedout"
	default:
		return "unknown"
	}
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return PENDING, nil
	case "running":
		return RUNNING, nil
	case "passed":
		return PASSED, nil
	case "failed":
		return FAILED, nil
	case "skipped":
		return SKIPPED, nil
	case "timedout":
		return TIMEDOUT, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

// IsTerminal reports whether no further phase may run for this status.
func (s Status) IsTerminal() bool {
	switch s {
	case PASSED, FAILED, SKIPPED, TIMEDOUT:
		return true
	default:
		return false
	}
}

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

// Diagnostics carries the observability-only intermediate quantities of a
// case. None of these participate in the verdict.
type Diagnostics struct {
	Eigvals     []float64 `json:"eigvals"`
	Stretch     float64   `json:"stretch"`
	Translation float64   `json:"translation"`
	TopLabel    string    `json:"top_measurement_label"`
	TopDecimal  float64   `json:"top_measurement_decimal"`
	RefLabel    string    `json:"reference_label"`
	Counts      Counts    `json:"counts"`
}

type CaseResult struct {
	Reference     float64       `json:"reference"`
	Estimate      float64       `json:"estimate"`
	Tolerance     string        `json:"tolerance"`
	Selection     []int         `json:"selection"`
	Diagnostics   *Diagnostics  `json:"diagnostics"`
	Message       string        `json:"message"`
	ExecutionTime time.Duration `json:"execution_time"`
}

func NewCaseResult() *CaseResult {
	return &CaseResult{
		Diagnostics: &Diagnostics{},
	}
}

func (r *CaseResult) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.CaseResult")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

type CaseData struct {
	ID       string
	Status   Status
	CaseType string
	Seed     int64
	Params   map[string]interface{}
	Result   *CaseResult
	Created  strfmt.DateTime
	Ended    strfmt.DateTime
}

func NewCaseData() *CaseData {
	return &CaseData{
		Result:  NewCaseResult(),
		Params:  make(map[string]interface{}),
		Created: strfmt.DateTime(time.Now()),
	}
}

func (cd *CaseData) Clone() *CaseData {
	c := deepcopy.Copy(cd).(*CaseData)
	c.Created = *cd.Created.DeepCopy()
	c.Ended = *cd.Ended.DeepCopy()
	return c
}

// SetFailure marks the case FAILED and records the reason on the result.
func SetFailure(cd *CaseData, err error) (msg string) {
	msg = err.Error()
	cd.Result.Message = msg
	cd.Status = FAILED
	cd.Ended = strfmt.DateTime(time.Now())
	return msg
}

// SetSkip marks the case SKIPPED with the availability reason. A skip is an
// environment precondition, never a defect.
func SetSkip(cd *CaseData, reason string) {
	cd.Result.Message = reason
	cd.Status = SKIPPED
	cd.Ended = strfmt.DateTime(time.Now())
}
