// Package runner owns the sequential execution of queued cases.
package runner

import (
	"fmt"
	"sync"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/zap"
)

type queueChan chan *caseInRunner

type caseInRunner struct {
	cs       core.Case
	finished *sync.WaitGroup
}

type fifo interface {
	Enqueue(*caseInRunner) error
	Dequeue() (*caseInRunner, error)
	DequeueOrWaitForNextElement() (*caseInRunner, error)
	Get(index int) (*caseInRunner, error)
	GetLen() int
	Remove(index int) error
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(cr *caseInRunner) error {
	return c.FIFO.Enqueue(cr)
}

func (c *conqFIFO) Dequeue() (*caseInRunner, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*caseInRunner), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*caseInRunner, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*caseInRunner), nil
}

func (c *conqFIFO) Get(index int) (*caseInRunner, error) {
	tmp, err := c.FIFO.Get(index)
	if err != nil {
		return nil, err
	}
	return tmp.(*caseInRunner), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

func (c *conqFIFO) Remove(index int) error {
	return c.FIFO.Remove(index)
}

type CaseQueue struct {
	fifo       fifo
	maxSize    int
	queueChan  queueChan
	cancelChan chan struct{}
}

func (q *CaseQueue) Setup(conf *core.Conf) error {
	q.maxSize = conf.QueueMaxSize
	q.fifo = newConqFIFO()
	q.queueChan = make(queueChan)
	q.cancelChan = make(chan struct{})
	go func() {
		defer close(q.cancelChan)
		for {
			var cr *caseInRunner
			select {
			case <-q.cancelChan:
				return
			case cr = <-q.queueChan:
			}
			cd := cr.cs.CaseData()
			if q.maxSize <= q.fifo.GetLen() {
				zap.L().Info(fmt.Sprintf("Failed to put %s. Case queue is full.", cd.ID))
				core.SetFailure(cd, fmt.Errorf("case queue is full"))
				cr.finished.Done()
				continue
			}
			zap.L().Debug(fmt.Sprintf("Putting %s to case queue", cd.ID))
			if err := q.fifo.Enqueue(cr); err != nil {
				zap.L().Error(fmt.Sprintf("Failed to put %s to case queue. Reason:%s", cd.ID, err))
				core.SetFailure(cd, err)
				cr.finished.Done()
			}
		}
	}()
	return nil
}

func (q *CaseQueue) TearDown() {
	q.cancelChan <- struct{}{}
}

// Dequeue with wait blocks until the next case gets enqueued.
func (q *CaseQueue) Dequeue(wait bool) (cr *caseInRunner, err error) {
	if wait {
		cr, err = q.fifo.DequeueOrWaitForNextElement()
	} else {
		cr, err = q.fifo.Dequeue()
	}
	if err != nil {
		zap.L().Debug("no case in the queue.", zap.Error(err))
		return nil, err
	}
	zap.L().Debug(fmt.Sprintf("Dequeued case:%s", cr.cs.CaseData().ID))
	return cr, nil
}

func (q *CaseQueue) Delete(caseID string) error {
	zap.L().Debug(fmt.Sprintf("deleting %s from case queue", caseID))
	idx, err := q.getIdx(caseID)
	if err != nil {
		zap.L().Info(fmt.Sprintf("Failed to Delete %s. Reason:%s", caseID, err))
		return err
	}
	if err := q.fifo.Remove(idx); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to remove idx:%d. Reason:%s", idx, err))
		return err
	}
	return nil
}

func (q *CaseQueue) GetCurrentSize() int {
	return q.fifo.GetLen()
}

func (q *CaseQueue) getIdx(caseID string) (int, error) {
	for i := 0; i < q.fifo.GetLen(); i++ {
		cr, err := q.fifo.Get(i)
		if err == nil {
			if cr.cs.CaseData().ID == caseID {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("No entry")
}
