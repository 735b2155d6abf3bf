package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type MemoryDB struct {
	dbMap      map[string]*CaseData
	resultChan <-chan *CaseData
	mu         sync.RWMutex
}

func (d *MemoryDB) Setup(rc ResultChan, c *Conf) error {
	d.dbMap = make(map[string]*CaseData)
	d.resultChan = rc
	go func() {
		for {
			cd := <-d.resultChan
			if cd == nil { //when resultChan is closed
				return
			}
			zap.L().Debug(fmt.Sprintf("[MemoryDB] Received %s", cd.ID))
			if err := d.Update(cd); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a case(%s). Reason:%s",
					cd.ID, err.Error()))
			}
		}
	}()
	return nil
}

func (d *MemoryDB) Insert(cd *CaseData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[cd.ID] = cd
	return nil
}

func (d *MemoryDB) Get(caseID string) (*CaseData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if val, ok := d.dbMap[caseID]; ok {
		return val, nil
	}
	err := fmt.Errorf("not found %s", caseID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return &CaseData{}, err
}

func (d *MemoryDB) Update(cd *CaseData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[cd.ID] = cd
	return nil
}

func (d *MemoryDB) Delete(caseID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[caseID]; ok {
		delete(d.dbMap, caseID)
		zap.L().Info(fmt.Sprintf("[MemoryDB] deleted %s from DB", caseID))
		return nil
	}
	err := fmt.Errorf("failed to find %s", caseID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return err
}

func (d *MemoryDB) List() []*CaseData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]*CaseData, 0, len(d.dbMap))
	for _, cd := range d.dbMap {
		list = append(list, cd)
	}
	return list
}

func (d *MemoryDB) Tally() map[Status]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tally := make(map[Status]int)
	for _, cd := range d.dbMap {
		tally[cd.Status]++
	}
	return tally
}
