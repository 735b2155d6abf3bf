package core

type NonSecretConf struct {
	DevMode            bool
	DisableStdoutLog   bool
	EnableFileLog      bool
	LogDir             string
	LogLevel           string
	LogRotationMaxDays int
	QueueMaxSize       int
	CaseTimeoutSec     int
	IntegralDir        string
	FixturePath        string
	ReportDir          string
	BackendEndpoint    string
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:            c.DevMode,
		DisableStdoutLog:   c.DisableStdoutLog,
		EnableFileLog:      c.EnableFileLog,
		LogDir:             c.LogDir,
		LogLevel:           c.LogLevel,
		LogRotationMaxDays: c.LogRotationMaxDays,
		QueueMaxSize:       c.QueueMaxSize,
		CaseTimeoutSec:     c.CaseTimeoutSec,
		IntegralDir:        c.IntegralDir,
		FixturePath:        c.FixturePath,
		ReportDir:          c.ReportDir,
		BackendEndpoint:    c.BackendEndpoint,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
