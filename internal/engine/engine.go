// Package engine orchestrates a benchmark run: discovery, filtering,
// expansion, arrangement, execution and threshold evaluation.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/wesleyorama2/perfkit/internal/arrangement"
	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/config"
	"github.com/wesleyorama2/perfkit/internal/executor"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/progress"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// DefaultGCSeed seeds the source deciding which runs are preceded by a
// collection, so repeated runs collect before the same elements.
const DefaultGCSeed int64 = 0x6c_0ffee

// Engine is the main orchestrator of a benchmark run.
//
// Example usage:
//
//	cfg, _ := config.LoadConfig("bench.yaml")
//	engine, _ := NewEngine(cfg, classes)
//	result, _ := engine.Run()
//	fmt.Printf("Passed: %v\n", result.Passed)
type Engine struct {
	config   *config.BenchConfig
	classes  []*bench.Class
	meters   []meter.Meter
	arranger arrangement.Arrangement

	logger    *slog.Logger
	listeners *progress.Multi
	gcSeed    int64
	collect   func()
	now       func() time.Time
	runID     string

	ran bool
}

// Result contains the complete results of a run.
type Result struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Arrangement string        `json:"arrangement"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Duration    time.Duration `json:"duration"`

	// Elements is the number of elements executed
	Elements int `json:"elements"`

	// Collections is the number of elements preceded by a garbage collection
	Collections int `json:"collections"`

	// Meters lists the sampled meters in meter order
	Meters []meter.Key `json:"meters"`

	// Tree holds the frozen samples and failures
	Tree *result.BenchmarkResult `json:"-"`

	// Threshold evaluation
	Passed     bool              `json:"passed"`
	Thresholds []ThresholdResult `json:"thresholds,omitempty"`
}

// Failures returns every failure recorded during the run.
func (r *Result) Failures() []result.Failure {
	if r.Tree == nil {
		return nil
	}
	return r.Tree.Failures()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. It is also handed to the session.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithListener attaches a progress listener. Listeners that implement
// progress.SampleObserver also receive every sample and failure.
func WithListener(l progress.Listener) Option {
	return func(e *Engine) { e.listeners.Add(l) }
}

// WithMeters adds meters ahead of the configured ones. Meters supplied here
// win over configured meters with the same identity, so user code can tick
// counters it owns.
func WithMeters(meters ...meter.Meter) Option {
	return func(e *Engine) { e.meters = append(e.meters, meters...) }
}

// WithGCSeed overrides DefaultGCSeed.
func WithGCSeed(seed int64) Option {
	return func(e *Engine) { e.gcSeed = seed }
}

// WithCollector replaces runtime.GC as the collection trigger.
func WithCollector(fn func()) Option {
	return func(e *Engine) { e.collect = fn }
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run id instead of generating a random one.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// NewEngine creates an engine for classes.
//
// The configuration is validated and defaults are applied to a copy; the
// caller's value is not modified. Returns an error if the configuration is
// invalid.
func NewEngine(cfg *config.BenchConfig, classes []*bench.Class, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = &config.BenchConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := *cfg
	config.ApplyDefaults(&c)

	e := &Engine{
		config:    &c,
		classes:   classes,
		listeners: progress.NewMulti(),
		gcSeed:    DefaultGCSeed,
		collect:   runtime.GC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	configured, err := c.BuildMeters()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	e.meters = meter.Dedupe(append(e.meters, configured...))

	e.arranger, err = arrangement.NewFromString(c.Arrangement)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() *config.BenchConfig { return e.config }

// Meters returns the meters sampled by the engine in meter order.
func (e *Engine) Meters() []meter.Meter {
	out := make([]meter.Meter, len(e.meters))
	copy(out, e.meters)
	return out
}

// Plan discovers and filters the operations without running them.
// Validation errors are returned alongside the runnable methods.
func (e *Engine) Plan() ([]*bench.Method, []*bench.ValidationError) {
	methods, errs := bench.Discover(e.classes, e.config.Runs)
	return bench.Filter(methods, e.config.Include, e.config.Exclude), errs
}

// Run executes the benchmark once. The returned error reports misuse or
// setup problems; failures of benchmark code are recorded in the result.
func (e *Engine) Run() (*Result, error) {
	if e.ran {
		return nil, fmt.Errorf("engine: already run")
	}
	e.ran = true

	name := e.config.Name
	if name == "" {
		name = "benchmark"
	}
	id := e.runID
	if id == "" {
		id = uuid.NewString()
	}
	res := &Result{
		ID:          id,
		Name:        name,
		Description: e.config.Description,
		Arrangement: string(e.arranger.Kind()),
		Start:       e.now(),
		Tree:        result.NewBenchmarkResult(name),
	}

	session, err := executor.Initialize(executor.Settings{
		Runs:          e.config.Runs,
		Meters:        e.meters,
		GCProbability: e.config.GCProbability,
	}, res.Tree,
		executor.WithLogger(e.logger),
		executor.WithListener(e.listeners),
		executor.WithObserver(e.listeners),
		executor.WithID(res.ID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	for _, m := range session.Meters() {
		res.Meters = append(res.Meters, meter.KeyOf(m))
	}

	methods, err := session.Discover(e.classes)
	if err != nil {
		return nil, err
	}
	methods = bench.Filter(methods, e.config.Include, e.config.Exclude)
	if err := session.Validate(methods); err != nil {
		return nil, err
	}
	elements, err := session.Expand(methods)
	if err != nil {
		return nil, err
	}
	elements = e.arranger.Arrange(elements)

	totals := make(map[string]int, len(methods))
	for _, m := range methods {
		totals[m.ID()] = m.TotalRuns()
	}
	e.listeners.Init(totals)

	e.logger.Info("benchmark started",
		slog.String("run_id", res.ID),
		slog.String("name", name),
		slog.Int("operations", len(methods)),
		slog.Int("elements", len(elements)),
		slog.String("arrangement", res.Arrangement),
	)

	rng := rand.New(rand.NewSource(e.gcSeed))
	p := session.GCProbability()
	for _, el := range elements {
		if p > 0 && rng.Float64() < p {
			e.collect()
			res.Collections++
		}
		if err := session.Execute(el); err != nil {
			return nil, fmt.Errorf("failed to execute %s: %w", el.Name(), err)
		}
		res.Elements++
	}

	e.listeners.Finished()
	res.Tree.Freeze()
	res.End = e.now()
	res.Duration = res.End.Sub(res.Start)

	res.Thresholds = evaluateThresholds(e.config.Thresholds, res.Tree, res.Meters)
	res.Passed = true
	for _, t := range res.Thresholds {
		if !t.Passed {
			res.Passed = false
		}
	}

	e.logger.Info("benchmark finished",
		slog.String("run_id", res.ID),
		slog.Duration("duration", res.Duration),
		slog.Int("failures", len(res.Tree.Failures())),
		slog.Bool("passed", res.Passed),
	)
	return res, nil
}
