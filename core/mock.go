package core

import (
	"context"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const MockMaxShots int = 10000

type UnimplementedCase struct {
	caseData    *CaseData
	caseContext *CaseContext
}

func (c *UnimplementedCase) New(cd *CaseData, cc *CaseContext) Case {
	return &UnimplementedCase{
		caseData:    cd,
		caseContext: cc,
	}
}

func (c *UnimplementedCase) Prepare(context.Context)  {}
func (c *UnimplementedCase) Execute(context.Context)  {}
func (c *UnimplementedCase) Evaluate(context.Context) {}

func (c *UnimplementedCase) IsFinished() bool {
	return c.CaseData().Status.IsTerminal()
}

func (c *UnimplementedCase) CaseData() *CaseData {
	return c.caseData
}

func (c *UnimplementedCase) CaseType() string {
	return c.caseData.CaseType
}

func (c *UnimplementedCase) CaseContext() *CaseContext {
	return c.caseContext
}

func (c *UnimplementedCase) Clone() Case {
	cloned := &UnimplementedCase{
		caseData:    c.caseData.Clone(),
		caseContext: c.caseContext,
	}
	return cloned
}

// passCaseForTest ends PASSED in Evaluate without touching collaborators.
type passCaseForTest struct {
	UnimplementedCase
}

func (c *passCaseForTest) New(cd *CaseData, cc *CaseContext) Case {
	return &passCaseForTest{UnimplementedCase{caseData: cd, caseContext: cc}}
}

func (c *passCaseForTest) Evaluate(context.Context) {
	c.CaseData().Status = PASSED
}

func (c *passCaseForTest) Clone() Case {
	return &passCaseForTest{UnimplementedCase{
		caseData:    c.caseData.Clone(),
		caseContext: c.caseContext,
	}}
}

type unimplementedDB struct{}

func (u *unimplementedDB) Setup(ResultChan, *Conf) error { return nil }
func (u *unimplementedDB) Insert(*CaseData) error        { return nil }
func (u *unimplementedDB) Get(caseID string) (*CaseData, error) {
	return &CaseData{ID: caseID, Status: RUNNING, Result: NewCaseResult()}, nil
}
func (u *unimplementedDB) Update(*CaseData) error { return nil }
func (u *unimplementedDB) Delete(string) error    { return nil }
func (u *unimplementedDB) List() []*CaseData      { return nil }
func (u *unimplementedDB) Tally() map[Status]int  { return map[Status]int{} }

type unimplementedCaseRunner struct{}

func (u *unimplementedCaseRunner) Setup(*Conf) error        { return nil }
func (u *unimplementedCaseRunner) Start() error             { return nil }
func (u *unimplementedCaseRunner) HandleCase(_ Case)        {}
func (u *unimplementedCaseRunner) HandleCaseAndWait(_ Case) {}
func (u *unimplementedCaseRunner) GetCurrentQueueSize() int { return 0 }

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DBManager { return &unimplementedDB{} })
	c.Provide(func() CaseRunner { return &unimplementedCaseRunner{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithDBContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() CaseRunner { return &unimplementedCaseRunner{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithCaseRunner(r CaseRunner) *SystemComponents {
	c := dig.New()
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() CaseRunner { return r })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000, CaseTimeoutSec: 60})
	return s
}
