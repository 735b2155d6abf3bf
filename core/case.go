package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

var ErrorCaseIDConflict = errors.New("caseID is already used")
var caseManager *CaseManager

// Case is one verification unit. The runner drives it through
// Prepare -> Execute -> Evaluate until the status is terminal. A phase that
// cannot proceed sets a terminal status on the CaseData instead of returning
// an error.
type Case interface {
	// Case Control
	New(*CaseData, *CaseContext) Case
	Prepare(context.Context)
	Execute(context.Context)
	Evaluate(context.Context)
	IsFinished() bool

	// Data Access
	CaseData() *CaseData // Get mutable CaseData
	CaseType() string
	CaseContext() *CaseContext
	Clone() Case
}

type CaseContext struct {
	*Channels
}

func NewCaseContext() (*CaseContext, error) {
	s := GetSystemComponents()
	if s == nil {
		return nil, fmt.Errorf("system components is not initialized")
	}
	c := s.Channels
	if c == nil {
		return nil, fmt.Errorf("channels is not initialized")
	}
	return &CaseContext{
		Channels: GetSystemComponents().Channels,
	}, nil
}

type CaseParam struct {
	CaseID   string
	CaseType string
	Seed     int64
	Params   map[string]interface{}
}

func GetCaseResult(id string) (cd *CaseData) {
	cd = nil
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(d DBManager) error {
			var getErr error
			cd, getErr = d.Get(id)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a case(%s)", id))
		return nil
	}
	return cd
}

// factory pattern
type CaseManager struct {
	acceptableCases []Case //empty cases
}

func (c *CaseManager) RegisterCase(cases ...Case) error {
	for _, cs := range cases {
		// check if the case type is already registered
		for _, t := range c.acceptableCases {
			if reflect.TypeOf(t) == reflect.TypeOf(cs) {
				return fmt.Errorf("case:%s is already registered", cs.CaseType())
			}
		}
		zap.L().Debug(fmt.Sprintf("registering case type %s", cs.CaseType()))
		c.acceptableCases = append(c.acceptableCases, cs)
	}
	return nil
}

func (c *CaseManager) AcceptableCaseTypes() []string {
	types := []string{}
	for _, cs := range c.acceptableCases {
		types = append(types, cs.CaseType())
	}
	return types
}

func (c *CaseManager) NewCaseWithValidation(param *CaseParam, cc *CaseContext) (Case, error) {
	if err := validateCaseParam(param); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate case param. Reason:%s", err.Error()))
		return nil, err
	}
	return c.NewCase(param, cc)
}

func (c *CaseManager) NewCase(param *CaseParam, cc *CaseContext) (Case, error) {
	cd := NewCaseData()
	cd.ID = param.CaseID
	cd.CaseType = param.CaseType
	cd.Seed = param.Seed
	if param.Params != nil {
		cd.Params = param.Params
	}
	return c.NewCaseFromCaseData(cd, cc)
}

func (c *CaseManager) NewCaseFromCaseData(cd *CaseData, cc *CaseContext) (Case, error) {
	zap.L().Debug(fmt.Sprintf("creating a case from case data. Case ID:%s, Case Type:%s", cd.ID, cd.CaseType))
	for _, cs := range c.acceptableCases {
		if cs.CaseType() == cd.CaseType {
			// create a new case instance
			t := reflect.TypeOf(cs)
			newInstance := reflect.New(t).Elem().Interface()
			newCase := newInstance.(Case).New(cd, cc)
			return newCase, nil
		}
	}
	return nil, fmt.Errorf("case type %s is not registered", cd.CaseType)
}

func validateCaseParam(p *CaseParam) (err error) {
	err = nil
	if p.CaseID == "" {
		return fmt.Errorf("caseID is empty")
	}
	if p.CaseType == "" {
		return fmt.Errorf("caseType is empty")
	}
	return
}

func NewCaseManager(cases ...Case) (*CaseManager, error) {
	cm := &CaseManager{}
	for _, cs := range cases {
		zap.L().Debug(fmt.Sprintf("registering case type %s", cs.CaseType()))
		err := cm.RegisterCase(cs)
		if err != nil {
			return nil, err
		}
	}
	caseManager = cm
	return cm, nil
}

func GetCaseManager() *CaseManager {
	return caseManager
}
