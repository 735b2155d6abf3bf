package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/common"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Writer appends one JSON document per finished case to a sweep report file.
// One file per sweep, named by the sweep start time.
type Writer struct {
	dir  string
	path string

	mu   sync.Mutex
	file *os.File
}

func NewWriter(conf *core.Conf) *Writer {
	return &Writer{dir: conf.ReportDir}
}

func (w *Writer) Open() error {
	if err := common.IsDirWritable(w.dir); err != nil {
		zap.L().Error(fmt.Sprintf("failed to write to report dir %s/reason:%s", w.dir, err))
		return err
	}
	fileName := fmt.Sprintf("sweep-%s.jsonl", time.Now().Format("2006-01-02T15-04-05"))
	w.path = filepath.Join(w.dir, fileName)
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to open report file %s/reason:%s", w.path, err))
		return err
	}
	w.file = file
	zap.L().Info(fmt.Sprintf("writing sweep report to %s", w.path))
	return nil
}

func (w *Writer) Write(cd *core.CaseData) error {
	data, err := FromCaseData(cd).JSON()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal report document for case(%s)/reason:%s",
			cd.ID, err))
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return fmt.Errorf("report writer is not open")
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// WriteAll writes every case ordered by creation time, so report lines follow
// the sweep order rather than map iteration order. A failed line does not
// stop the rest; the errors come back aggregated.
func (w *Writer) WriteAll(list []*core.CaseData) error {
	sorted := make([]*core.CaseData, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		return time.Time(sorted[i].Created).Before(time.Time(sorted[j].Created))
	})
	var err error
	for _, cd := range sorted {
		err = multierr.Append(err, w.Write(cd))
	}
	return err
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
