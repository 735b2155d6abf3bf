package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/eigenbench-team/eigenbench/harness/backend"
	"github.com/eigenbench-team/eigenbench/harness/chem"
	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/energy"
	"github.com/eigenbench-team/eigenbench/harness/log"
	"github.com/eigenbench-team/eigenbench/harness/packing"
	"github.com/eigenbench-team/eigenbench/harness/phase"
	"github.com/eigenbench-team/eigenbench/harness/report"
	"github.com/eigenbench-team/eigenbench/harness/runner"
	"github.com/eigenbench-team/eigenbench/harness/vqe"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var bench *Bench

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	bench = &Bench{}
	setParser(bench)
}

type Bench struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	DBManager string `long:"db" description:"db" default:"memory" choice:"memory" env:"EIGENBENCH_DB_MANAGER_TYPE"`
	Driver    string `long:"driver" description:"integral-driver-type" default:"file" choice:"file" choice:"container" env:"EIGENBENCH_DRIVER_TYPE"`
	Estimator string `long:"estimator" description:"phase-estimator-type" default:"ideal" choice:"ideal" choice:"remote" env:"EIGENBENCH_ESTIMATOR_TYPE"`
	Solver    string `long:"solver" description:"vqe-solver-type" default:"dummy" choice:"dummy" choice:"remote" env:"EIGENBENCH_SOLVER_TYPE"`
}

func setParser(bench *Bench) {
	parser = flags.NewParser(bench, flags.Default)
	parser.ShortDescription = "eigenbench"
	parser.LongDescription = "the conformance sweep harness for quantum eigensolver backends."
	parser.AddCommand("sweep", "start sweep", "run the conformance sweep and write the report", newSweepCmd())
	parser.AddCommand("version", "show version", "print the bench version and exit", &versionCmd{})
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (b *Bench) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() (chem.Driver, error) {
		switch b.DIContainerParameters.Driver {
		case "file":
			return chem.NewFileDriver(b.Conf), nil
		case "container":
			return chem.NewContainerDriver()
		default:
			return chem.NewFileDriver(b.Conf), fmt.Errorf("%s is an unknown driver", b.DIContainerParameters.Driver)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (phase.Estimator, error) {
		switch b.DIContainerParameters.Estimator {
		case "ideal":
			return phase.NewIdealEstimator(), nil
		case "remote":
			return phase.NewRemoteEstimator(b.Conf), nil
		default:
			return phase.NewIdealEstimator(), fmt.Errorf("%s is an unknown estimator", b.DIContainerParameters.Estimator)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (vqe.Solver, error) {
		switch b.DIContainerParameters.Solver {
		case "dummy":
			return vqe.NewDummySolver(), nil
		case "remote":
			return vqe.NewRemoteSolver(b.Conf), nil
		default:
			return vqe.NewDummySolver(), fmt.Errorf("%s is an unknown solver", b.DIContainerParameters.Solver)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.DBManager, error) {
		switch b.DIContainerParameters.DBManager {
		case "memory":
			return &core.MemoryDB{}, nil
		default:
			return &core.MemoryDB{}, fmt.Errorf("%s is an unknown DB", b.DIContainerParameters.DBManager)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.CaseRunner { return &runner.SequentialRunner{} })
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func (b *Bench) startCore(conf *core.Conf) error {
	if _, err := core.NewCaseManager(
		&energy.EnergyCase{},
		&packing.PackingExactCase{},
		&packing.PackingVqeCase{},
	); err != nil {
		return err
	}
	err := core.GetSystemComponents().StartContainer()
	if err != nil {
		return err
	}
	core.SetInfo(conf)
	return nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "eigenbench-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type versionCmd struct{}

func (c *versionCmd) Execute(args []string) error {
	core.SetVersion(bench.Conf, versionByBuildFlag)
	fmt.Println(core.Version)
	return nil
}

type sweepCmd struct {
	Distances []float64 `long:"distance" description:"H2 bond distances in angstrom" default:"0.5" default:"0.735" default:"1.0"`
	Seed      int64     `long:"seed" description:"seed shared by every case in the sweep" default:"42"`

	exitCode int
}

func newSweepCmd() *sweepCmd {
	return &sweepCmd{}
}

func (c *sweepCmd) Execute(args []string) error {
	logger := setZap(bench.Conf)
	defer logger.Sync()

	core.ResetSetting()
	registerSetting()
	if err := core.ParseSettingFromPath(bench.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}

	s := setupSystemComponents(bench.Conf)
	defer s.TearDown()

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			backend.WatcherTaskName: &backend.Watcher{},
			log.VersionLogTaskName:  &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName:  &log.MetricsLogTaskImpl{},
		},
	}
	rc, err := core.NewRunContextWithSettingPath(bench.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	if err := bench.startCore(bench.Conf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to start core/reason:%s", err.Error()))
		return err
	}

	zap.L().Debug("Setting up run-group")
	if err := c.setupRunGroup(rc); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setup run group. Reason:%s", err))
		return err
	}

	if err := rc.Run(); err != nil {
		if _, ok := err.(sweepDone); !ok {
			fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
			os.Exit(1)
		}
	}
	os.Exit(c.exitCode)
	return nil
}

// sweepDone unwinds the run group once every case has a verdict.
type sweepDone struct{}

func (sweepDone) Error() string { return "sweep finished" }

func (c *sweepCmd) setupRunGroup(rc *core.RunContext) error {
	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	rc.Add(
		func() error {
			c.exitCode = c.runSweep()
			return sweepDone{}
		},
		func(error) {})
	core.SetRunContext(rc)
	return nil
}

func (c *sweepCmd) caseParams() []*core.CaseParam {
	params := []*core.CaseParam{}
	for _, d := range c.Distances {
		params = append(params, &core.CaseParam{
			CaseID:   uuid.NewString(),
			CaseType: energy.ENERGY_CASE,
			Seed:     c.Seed,
			Params:   map[string]interface{}{"distance": d},
		})
	}
	for _, caseType := range []string{packing.PACKING_EXACT_CASE, packing.PACKING_VQE_CASE} {
		params = append(params, &core.CaseParam{
			CaseID:   uuid.NewString(),
			CaseType: caseType,
			Seed:     c.Seed,
			Params:   map[string]interface{}{"fixture_path": bench.Conf.FixturePath},
		})
	}
	return params
}

func (c *sweepCmd) runSweep() int {
	s := core.GetSystemComponents()
	cm := core.GetCaseManager()
	cc, err := core.NewCaseContext()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to create case context/reason:%s", err))
		return 1
	}
	params := c.caseParams()
	caseIDs := []string{}
	err = s.Invoke(func(r core.CaseRunner) error {
		for _, p := range params {
			cs, err := cm.NewCaseWithValidation(p, cc)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to create case(%s)/reason:%s", p.CaseID, err))
				return err
			}
			zap.L().Info(fmt.Sprintf("running case(%s) type:%s", p.CaseID, p.CaseType))
			r.HandleCaseAndWait(cs)
			caseIDs = append(caseIDs, p.CaseID)
		}
		return nil
	})
	if err != nil {
		return 1
	}
	waitForVerdicts(caseIDs)
	c.writeReport(s)

	summary := report.Summarize(s.GetTally())
	zap.L().Info(fmt.Sprintf("sweep finished/%s", summary))
	return summary.ExitCode()
}

// waitForVerdicts waits out the small window between the runner finishing a
// case and the DB consuming its final result.
func waitForVerdicts(caseIDs []string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		settled := true
		for _, id := range caseIDs {
			cd := core.GetCaseResult(id)
			if cd == nil || !cd.Status.IsTerminal() {
				settled = false
				break
			}
		}
		if settled {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	zap.L().Info("some cases have no terminal verdict in the DB yet")
}

func (c *sweepCmd) writeReport(s *core.SystemComponents) {
	w := report.NewWriter(bench.Conf)
	if err := w.Open(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to open report file/reason:%s", err))
		return
	}
	defer w.Close()
	err := s.Invoke(func(d core.DBManager) error {
		return w.WriteAll(d.List())
	})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to write report/reason:%s", err))
		return
	}
	zap.L().Info(fmt.Sprintf("wrote sweep report to %s", w.Path()))
}

// TODO : move to log package
func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", bench.DIContainerParameters))

	container, err := bench.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}

func registerSetting() {
	core.RegisterSetting(energy.ENERGY_SETTING_KEY, energy.NewEnergySetting())
	core.RegisterSetting(packing.PACKING_SETTING_KEY, packing.NewPackingSetting())
}
