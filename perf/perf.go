package perf

import (
	"io"
	"log/slog"
	"os"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/cli"
	"github.com/wesleyorama2/perfkit/internal/config"
	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/output"
	"github.com/wesleyorama2/perfkit/internal/progress"
)

// Registration types.
type (
	Class    = bench.Class
	Callable = bench.Callable
	Role     = bench.Role
	Provider = bench.Provider
	Option   = bench.Option
)

// Hook roles.
const (
	RoleBench            = bench.RoleBench
	RoleBeforeBenchClass = bench.RoleBeforeBenchClass
	RoleBeforeFirstRun   = bench.RoleBeforeFirstRun
	RoleBeforeEachRun    = bench.RoleBeforeEachRun
	RoleAfterEachRun     = bench.RoleAfterEachRun
	RoleAfterLastRun     = bench.RoleAfterLastRun
	RoleAfterBenchClass  = bench.RoleAfterBenchClass
)

// Registration helpers.
var (
	Op           = bench.Op
	Hook         = bench.Hook
	StaticHook   = bench.StaticHook
	Func         = bench.Func
	WithRuns     = bench.WithRuns
	WithHooks    = bench.WithHooks
	WithProvider = bench.WithProvider
)

// Configuration and results.
type (
	Config          = config.BenchConfig
	MeterConfig     = config.MeterConfig
	ThresholdConfig = config.ThresholdConfig
	Result          = engine.Result
	ThresholdResult = engine.ThresholdResult
	Report          = output.Report
	Meter           = meter.Meter
	Counter         = meter.Counter
	Listener        = progress.Listener
)

var (
	// LoadConfig reads a yaml or json configuration file.
	LoadConfig = config.LoadConfig

	// NewCounter creates a meter ticked by benchmark code.
	NewCounter = meter.NewCounter

	// NewMeter creates a meter by type: time, memory, allocs or count.
	NewMeter = func(meterType, unit, name string) (Meter, error) {
		return meter.New(meter.Type(meterType), unit, name)
	}

	// NewReport converts a result into its exported form.
	NewReport = output.NewReport
)

// Runner runs registered classes once.
//
//	cfg, _ := perf.LoadConfig("bench.yaml")
//	result, _ := perf.NewRunner(cfg, classes...).Run()
type Runner struct {
	config    *Config
	classes   []*Class
	meters    []Meter
	listeners []Listener
	logger    *slog.Logger
}

// NewRunner creates a runner. A nil cfg uses the defaults.
func NewRunner(cfg *Config, classes ...*Class) *Runner {
	return &Runner{config: cfg, classes: classes}
}

// WithMeters adds meters the benchmark code ticks itself.
func (r *Runner) WithMeters(meters ...Meter) *Runner {
	r.meters = append(r.meters, meters...)
	return r
}

// WithListener attaches a progress listener.
func (r *Runner) WithListener(l Listener) *Runner {
	r.listeners = append(r.listeners, l)
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.logger = logger
	return r
}

// Run executes the benchmark. Failures of benchmark code are recorded in the
// result; the error reports configuration and setup problems.
func (r *Runner) Run() (*Result, error) {
	opts := []engine.Option{engine.WithMeters(r.meters...)}
	if r.logger != nil {
		opts = append(opts, engine.WithLogger(r.logger))
	}
	for _, l := range r.listeners {
		opts = append(opts, engine.WithListener(l))
	}

	eng, err := engine.NewEngine(r.config, r.classes, opts...)
	if err != nil {
		return nil, err
	}
	return eng.Run()
}

// Write renders result as text, json, yaml or junit.
func Write(w io.Writer, format string, result *Result) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	return output.Write(w, f, result)
}

// Main runs the perfkit command line over classes with os.Args and returns
// the exit code. meters are the counters the classes tick.
func Main(name string, classes []*Class, meters ...Meter) int {
	app := &cli.App{Name: name, Classes: classes, Meters: meters}
	return cli.Execute(app, os.Args[1:], os.Stdout, os.Stderr)
}
