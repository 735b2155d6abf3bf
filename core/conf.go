package core

type Conf struct {
	Version            string `long:"version" description:"version of the bench engine" env:"EIGENBENCH_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"EIGENBENCH_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"EIGENBENCH_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"EIGENBENCH_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"EIGENBENCH_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"EIGENBENCH_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"EIGENBENCH_LOG_ROTATION_MAX_DAYS"`
	QueueMaxSize       int    `long:"queue-max-size" description:"case queue max size" default:"100" env:"EIGENBENCH_QUEUE_MAX_SIZE"`
	CaseTimeoutSec     int    `long:"case-timeout-sec" description:"wall-clock bound per case in seconds" default:"60" env:"EIGENBENCH_CASE_TIMEOUT_SEC"`
	IntegralDir        string `long:"integral-dir" description:"directory of precomputed integral files for the file driver" default:"./shares/integrals" env:"EIGENBENCH_INTEGRAL_DIR"`
	FixturePath        string `long:"fixture-path" description:"set packing fixture file path" default:"./shares/sample.setpacking" env:"EIGENBENCH_FIXTURE_PATH"`
	ReportDir          string `long:"report-dir" description:"sweep report output dir" default:"./shares/reports" env:"EIGENBENCH_REPORT_DIR"`
	BackendEndpoint    string `long:"backend-endpoint" description:"remote solver backend endpoint" default:"localhost:7081" env:"EIGENBENCH_BACKEND_ENDPOINT"`
	BackendAPIKey      string `long:"backend-api-key" description:"remote solver backend API key" default:"DefaultAPIKey" env:"EIGENBENCH_BACKEND_API_KEY"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"EIGENBENCH_SETTING_PATH"`
}
