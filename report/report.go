// Package report turns finished case data into the sweep report artifacts.
package report

import (
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the wire form of one finished case in the report file.
type Document struct {
	CaseID        string                 `json:"case_id"`
	CaseType      string                 `json:"case_type"`
	Status        string                 `json:"status"`
	Seed          int64                  `json:"seed"`
	Params        map[string]interface{} `json:"params,omitempty"`
	Reference     float64                `json:"reference"`
	Estimate      float64                `json:"estimate"`
	Tolerance     string                 `json:"tolerance,omitempty"`
	Selection     []int                  `json:"selection,omitempty"`
	Message       string                 `json:"message,omitempty"`
	ExecutionTime string                 `json:"execution_time,omitempty"`
	Created       strfmt.DateTime        `json:"created"`
	Ended         strfmt.DateTime        `json:"ended"`
}

func FromCaseData(cd *core.CaseData) *Document {
	d := &Document{
		CaseID:   cd.ID,
		CaseType: cd.CaseType,
		Status:   cd.Status.String(),
		Seed:     cd.Seed,
		Params:   cd.Params,
		Created:  cd.Created,
		Ended:    cd.Ended,
	}
	if cd.Result == nil {
		return d
	}
	d.Reference = cd.Result.Reference
	d.Estimate = cd.Result.Estimate
	d.Tolerance = cd.Result.Tolerance
	d.Selection = cd.Result.Selection
	d.Message = cd.Result.Message
	if cd.Result.ExecutionTime > 0 {
		d.ExecutionTime = cd.Result.ExecutionTime.String()
	}
	return d
}

func (d *Document) JSON() ([]byte, error) {
	return jsonIter.Marshal(d)
}

func (d *Document) Pretty() string {
	st, err := d.JSON()
	if err != nil {
		return ""
	}
	return string(pretty.Pretty(st))
}
