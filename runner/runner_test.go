//go:build unit
// +build unit

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/dig"
)

// passCase ends PASSED in Evaluate without touching collaborators.
type passCase struct {
	caseData    *core.CaseData
	caseContext *core.CaseContext
}

func (c *passCase) New(cd *core.CaseData, cc *core.CaseContext) core.Case {
	return &passCase{caseData: cd, caseContext: cc}
}

func (c *passCase) Prepare(context.Context) {}
func (c *passCase) Execute(context.Context) {}
func (c *passCase) Evaluate(context.Context) {
	c.caseData.Status = core.PASSED
	c.caseData.Ended = strfmt.DateTime(time.Now())
}

func (c *passCase) IsFinished() bool {
	return c.caseData.Status.IsTerminal()
}

func (c *passCase) CaseData() *core.CaseData       { return c.caseData }
func (c *passCase) CaseType() string               { return "pass_case" }
func (c *passCase) CaseContext() *core.CaseContext { return c.caseContext }
func (c *passCase) Clone() core.Case {
	return &passCase{caseData: c.caseData.Clone(), caseContext: c.caseContext}
}

// stallCase blocks in Execute until the phase context expires.
type stallCase struct {
	passCase
}

func (c *stallCase) New(cd *core.CaseData, cc *core.CaseContext) core.Case {
	return &stallCase{passCase{caseData: cd, caseContext: cc}}
}

func (c *stallCase) Execute(ctx context.Context) {
	<-ctx.Done()
}

func (c *stallCase) Clone() core.Case {
	return &stallCase{passCase{caseData: c.caseData.Clone(), caseContext: c.caseContext}}
}

func setupRunner(t *testing.T, conf *core.Conf) *SequentialRunner {
	t.Helper()
	r := &SequentialRunner{}
	c := dig.New()
	assert.Nil(t, c.Provide(func() core.DBManager { return &core.MemoryDB{} }))
	assert.Nil(t, c.Provide(func() core.CaseRunner { return r }))
	sc := core.NewSystemComponents(c)
	assert.Nil(t, sc.Setup(conf))
	return r
}

func newTestCase(t *testing.T, proto core.Case, caseType string) core.Case {
	t.Helper()
	cc, err := core.NewCaseContext()
	assert.Nil(t, err)
	cd := core.NewCaseData()
	cd.ID = uuid.NewString()
	cd.CaseType = caseType
	return proto.New(cd, cc)
}

func statusInDB(caseID string) func() bool {
	return func() bool {
		cd := core.GetCaseResult(caseID)
		return cd != nil && cd.Status.IsTerminal()
	}
}

func TestRunnerPassesACase(t *testing.T) {
	r := setupRunner(t, &core.Conf{QueueMaxSize: 10, CaseTimeoutSec: 60})
	assert.Nil(t, r.Start())
	cs := newTestCase(t, &passCase{}, "pass_case")
	r.HandleCaseAndWait(cs)

	assert.Equal(t, core.PASSED, cs.CaseData().Status)
	assert.Eventually(t, statusInDB(cs.CaseData().ID), 2*time.Second, 10*time.Millisecond)
	stored := core.GetCaseResult(cs.CaseData().ID)
	assert.Equal(t, core.PASSED, stored.Status)
	assert.Equal(t, 0, r.GetCurrentQueueSize())
}

func TestRunnerTimesOutAStalledCase(t *testing.T) {
	r := setupRunner(t, &core.Conf{QueueMaxSize: 10, CaseTimeoutSec: 1})
	assert.Nil(t, r.Start())
	cs := newTestCase(t, &stallCase{}, "stall_case")
	started := time.Now()
	r.HandleCaseAndWait(cs)

	assert.Equal(t, core.TIMEDOUT, cs.CaseData().Status)
	assert.GreaterOrEqual(t, time.Since(started), time.Second)
	assert.Contains(t, cs.CaseData().Result.Message, "wall-clock bound")
}

func TestRunnerRejectsWhenQueueIsFull(t *testing.T) {
	r := setupRunner(t, &core.Conf{QueueMaxSize: 0, CaseTimeoutSec: 60})
	// runner not started, so nothing drains the queue
	cs := newTestCase(t, &passCase{}, "pass_case")
	r.HandleCaseAndWait(cs)
	assert.Equal(t, core.FAILED, cs.CaseData().Status)
	assert.Contains(t, cs.CaseData().Result.Message, "queue is full")
}

func TestHandleCaseIsAsynchronous(t *testing.T) {
	r := setupRunner(t, &core.Conf{QueueMaxSize: 10, CaseTimeoutSec: 60})
	assert.Nil(t, r.Start())
	cs := newTestCase(t, &passCase{}, "pass_case")
	r.HandleCase(cs)
	assert.Eventually(t, statusInDB(cs.CaseData().ID), 2*time.Second, 10*time.Millisecond)
}
