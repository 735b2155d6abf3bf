package log

import (
	"github.com/eigenbench-team/eigenbench/harness/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Bench version:" + core.Version)
}
