package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/go-openapi/strfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/eigenbench-team/eigenbench/harness/runner"

// SequentialRunner drives queued cases one at a time through their phases.
// One case at a time keeps seeded backends deterministic.
type SequentialRunner struct {
	queue   *CaseQueue
	timeout time.Duration

	tracer       trace.Tracer
	caseCounter  metric.Int64Counter
	phaseElapsed metric.Float64Histogram
}

func (r *SequentialRunner) Setup(conf *core.Conf) error {
	r.queue = &CaseQueue{}
	var err error
	err = multierr.Append(err, r.queue.Setup(conf))
	r.timeout = time.Duration(conf.CaseTimeoutSec) * time.Second
	if r.timeout <= 0 {
		r.timeout = 60 * time.Second
	}

	r.tracer = otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)
	caseCounter, cErr := meter.Int64Counter("eigenbench.cases",
		metric.WithDescription("finished cases by verdict"))
	err = multierr.Append(err, cErr)
	r.caseCounter = caseCounter
	phaseElapsed, hErr := meter.Float64Histogram("eigenbench.case.duration",
		metric.WithUnit("s"),
		metric.WithDescription("wall-clock seconds per finished case"))
	err = multierr.Append(err, hErr)
	r.phaseElapsed = phaseElapsed
	return err
}

func (r *SequentialRunner) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the case queue...")
			cr, err := r.queue.Dequeue(true)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to get a case from the queue. Reason:%s", err))
				continue
			}
			r.runCase(cr.cs)
			cr.finished.Done()
		}
	}()
	return nil
}

func (r *SequentialRunner) runCase(cs core.Case) {
	cd := cs.CaseData()
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	ctx, span := r.tracer.Start(ctx, "runner.case",
		trace.WithAttributes(
			attribute.String("case.id", cd.ID),
			attribute.String("case.type", cd.CaseType),
		))
	defer span.End()

	zap.L().Debug(fmt.Sprintf("processing case:%s", cd.ID))
	for _, phase := range []struct {
		name string
		run  func(context.Context)
	}{
		{name: "prepare", run: cs.Prepare},
		{name: "execute", run: cs.Execute},
		{name: "evaluate", run: cs.Evaluate},
	} {
		phase.run(ctx)
		cs.CaseContext().ResultChan <- cd.Clone()
		if r.expireIfOverdue(ctx, cd) || cs.IsFinished() {
			break
		}
		zap.L().Debug(fmt.Sprintf("case(%s) finished phase %s", cd.ID, phase.name))
	}
	if !cd.Status.IsTerminal() {
		// a case that stalls without a verdict counts against the sweep
		core.SetFailure(cd, fmt.Errorf("case ended without a terminal status"))
	}
	cs.CaseContext().ResultChan <- cd.Clone()
	elapsed := time.Since(started)
	r.caseCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", cd.Status.String())))
	r.phaseElapsed.Record(ctx, elapsed.Seconds())
	zap.L().Debug(fmt.Sprintf("finished to process case(%s), status:%s in %s",
		cd.ID, cd.Status, elapsed))
}

// expireIfOverdue converts a blown deadline into a TIMEDOUT verdict. The
// per-case bound is wall-clock; phases observe the same context.
func (r *SequentialRunner) expireIfOverdue(ctx context.Context, cd *core.CaseData) bool {
	if ctx.Err() == nil || cd.Status.IsTerminal() {
		return false
	}
	zap.L().Info(fmt.Sprintf("case(%s) hit the %s bound", cd.ID, r.timeout))
	cd.Result.Message = fmt.Sprintf("case exceeded the %s wall-clock bound", r.timeout)
	cd.Status = core.TIMEDOUT
	cd.Ended = strfmt.DateTime(time.Now())
	return true
}

func (r *SequentialRunner) HandleCase(cs core.Case) {
	cd := cs.CaseData()
	zap.L().Debug(fmt.Sprintf("starting to handle case(%s) in %s", cd.ID, cd.Status))
	go func() {
		var wg sync.WaitGroup
		wg.Add(1)
		r.queue.queueChan <- &caseInRunner{cs: cs, finished: &wg}
		wg.Wait()
	}()
}

// HandleCaseAndWait is the synchronous form used by sweeps that need the
// verdict before enqueueing more work.
func (r *SequentialRunner) HandleCaseAndWait(cs core.Case) {
	var wg sync.WaitGroup
	wg.Add(1)
	r.queue.queueChan <- &caseInRunner{cs: cs, finished: &wg}
	wg.Wait()
}

func (r *SequentialRunner) GetCurrentQueueSize() int {
	return r.queue.GetCurrentSize()
}
