package report

import (
	"fmt"

	"github.com/eigenbench-team/eigenbench/harness/core"
)

// Summary is the verdict tally of one sweep.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Timedout int `json:"timedout"`
}

func Summarize(tally map[core.Status]int) Summary {
	s := Summary{
		Passed:   tally[core.PASSED],
		Failed:   tally[core.FAILED],
		Skipped:  tally[core.SKIPPED],
		Timedout: tally[core.TIMEDOUT],
	}
	for _, n := range tally {
		s.Total += n
	}
	return s
}

// ExitCode is nonzero when any case failed or timed out. Skips do not fail
// the sweep.
func (s Summary) ExitCode() int {
	if s.Failed > 0 || s.Timedout > 0 {
		return 1
	}
	return 0
}

func (s Summary) String() string {
	return fmt.Sprintf("total:%d passed:%d failed:%d skipped:%d timedout:%d",
		s.Total, s.Passed, s.Failed, s.Skipped, s.Timedout)
}
