// Package executor runs arranged benchmark elements: it fires lifecycle
// hooks, samples meters around every operation call, and records samples
// and failures into a result tree without ever aborting the run.
package executor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/progress"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// ErrNotInitialized is returned by a Session that was not created with
// Initialize.
var ErrNotInitialized = errors.New("executor: session not initialized")

// DefaultRuns is used when Settings.Runs is zero.
const DefaultRuns = 10

// Settings is the run-wide configuration consumed by a session.
type Settings struct {
	// Runs is the default run count for operations that declare none.
	Runs int

	// Meters are sampled around every operation call.
	Meters []meter.Meter

	// GCProbability is the fraction of runs preceded by a collection. The
	// session only carries it; the scheduler applies it.
	GCProbability float64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithListener attaches an element-level progress listener.
func WithListener(l progress.Listener) Option {
	return func(s *Session) { s.listener = l }
}

// WithObserver attaches a sample-level observer.
func WithObserver(o progress.SampleObserver) Option {
	return func(s *Session) { s.observer = o }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session owns all mutable state of one benchmark run: the executor
// registry, the element sequencer, the meters and the per-class countdowns.
// A session is used from one goroutine and for exactly one run.
type Session struct {
	id       string
	settings Settings
	meters   []meter.Meter
	keys     []meter.Key
	root     *result.BenchmarkResult
	logger   *slog.Logger
	listener progress.Listener
	observer progress.SampleObserver

	registry map[*bench.Method]*Executor
	seq      *bench.Sequencer

	classPending map[*bench.Class]int
	classStarted map[*bench.Class]bool
	reported     map[reportKey]bool
}

type reportKey struct {
	class  *bench.Class
	method *bench.Method
	role   bench.Role
}

// Initialize creates a session that records into root.
func Initialize(settings Settings, root *result.BenchmarkResult, opts ...Option) (*Session, error) {
	if root == nil {
		return nil, fmt.Errorf("executor: result root is required")
	}
	if root.Frozen() {
		return nil, fmt.Errorf("executor: result root %q is frozen", root.Name())
	}
	if settings.Runs < 0 {
		return nil, fmt.Errorf("executor: default run count %d is negative", settings.Runs)
	}
	if settings.Runs == 0 {
		settings.Runs = DefaultRuns
	}
	if settings.GCProbability < 0 || settings.GCProbability > 1 {
		return nil, fmt.Errorf("executor: gc probability %g is outside [0, 1]", settings.GCProbability)
	}

	s := &Session{
		id:           uuid.NewString(),
		settings:     settings,
		meters:       meter.Dedupe(settings.Meters),
		root:         root,
		registry:     make(map[*bench.Method]*Executor),
		seq:          bench.NewSequencer(),
		classPending: make(map[*bench.Class]int),
		classStarted: make(map[*bench.Class]bool),
		reported:     make(map[reportKey]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.listener == nil {
		s.listener = progress.Nop{}
	}
	if s.observer == nil {
		s.observer = progress.Nop{}
	}
	s.keys = make([]meter.Key, len(s.meters))
	for i, m := range s.meters {
		s.keys[i] = meter.KeyOf(m)
	}

	s.logger.Debug("session initialized",
		slog.String("session_id", s.id),
		slog.Int("default_runs", settings.Runs),
		slog.Int("meters", len(s.meters)),
		slog.Float64("gc_probability", settings.GCProbability),
	)
	return s, nil
}

func (s *Session) ready() error {
	if s == nil || s.registry == nil {
		return ErrNotInitialized
	}
	return nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Root returns the result tree the session records into.
func (s *Session) Root() *result.BenchmarkResult { return s.root }

// DefaultRuns returns the run count for operations that declare none.
func (s *Session) DefaultRuns() int { return s.settings.Runs }

// GCProbability returns the configured collection hint unmodified.
func (s *Session) GCProbability() float64 { return s.settings.GCProbability }

// Meters returns the sampled meters in meter order.
func (s *Session) Meters() []meter.Meter {
	out := make([]meter.Meter, len(s.meters))
	copy(out, s.meters)
	return out
}

// Discover builds the methods of classes with the session's default run
// count. Validation errors are recorded as failures on the result tree.
func (s *Session) Discover(classes []*bench.Class) ([]*bench.Method, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	methods, errs := bench.Discover(classes, s.settings.Runs)
	for _, verr := range errs {
		s.RecordValidation(verr)
	}
	return methods, nil
}

// RecordValidation records err as a validation failure on the class node,
// or on the method node when the error names one.
func (s *Session) RecordValidation(err *bench.ValidationError) {
	f := result.ValidationFailure(err)
	class := s.root.Class(err.Class)
	if err.Method == "" {
		s.record(class, nil, f)
		return
	}
	s.record(class.Method(err.Class+"."+err.Method), nil, f)
}

// Expand turns methods into elements with session-unique sequence ids and
// registers them with the class countdowns. Every method gets a result node
// even if it never records a sample.
func (s *Session) Expand(methods []*bench.Method) ([]bench.Element, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	elements := bench.Expand(methods, s.seq)
	for _, m := range methods {
		s.node(m)
	}
	for _, el := range elements {
		s.classPending[el.Method.Class()]++
	}
	return elements, nil
}

// Validate resolves every hook role of methods up front so structural
// problems are reported before the first element runs.
func (s *Session) Validate(methods []*bench.Method) error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, m := range methods {
		for _, role := range bench.HookRoles {
			// Failures are recorded by hooks.
			_, _ = s.hooks(m, role, nil)
		}
	}
	return nil
}

// Executor returns the executor for m, creating it on first use.
func (s *Session) Executor(m *bench.Method) (*Executor, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("executor: method is nil")
	}
	e, ok := s.registry[m]
	if !ok {
		e = newExecutor(s, m)
		s.registry[m] = e
	}
	return e, nil
}

// Execute runs one element: class and one-time hooks when due, per-run
// hooks, and the measured operation call. Failures of user code are
// recorded, never returned; the returned error reports misuse of the
// session only.
func (s *Session) Execute(el bench.Element) error {
	if err := s.ready(); err != nil {
		return err
	}
	if el.Method == nil {
		return fmt.Errorf("executor: element %s has no method", el.Name())
	}
	class := el.Method.Class()
	if s.classPending[class] <= 0 {
		return fmt.Errorf("executor: element %s was not expanded by this session", el.Name())
	}
	e, err := s.Executor(el.Method)
	if err != nil {
		return err
	}
	if e.state == StateDrained {
		return fmt.Errorf("executor: %s has already run all %d elements", el.Method.ID(), el.Method.TotalRuns())
	}

	s.listener.Current(el.Name())

	if !s.classStarted[class] {
		s.classStarted[class] = true
		s.fire(el, bench.RoleBeforeBenchClass)
	}

	e.execute(el)

	s.classPending[class]--
	if s.classPending[class] == 0 {
		s.fire(el, bench.RoleAfterBenchClass)
	}
	return nil
}

// node returns the result node of m.
func (s *Session) node(m *bench.Method) *result.MethodResult {
	return s.root.Class(m.Class().Name).Method(m.ID())
}

// hooks resolves the hooks of m for role, recording a validation failure
// the first time resolution fails.
func (s *Session) hooks(m *bench.Method, role bench.Role, el *bench.Element) ([]*bench.Callable, error) {
	hooks, err := m.ResolveHooks(role)
	if err == nil {
		return hooks, nil
	}

	key := reportKey{method: m, role: role}
	if classLevel(role) {
		key = reportKey{class: m.Class(), role: role}
	}
	if !s.reported[key] {
		s.reported[key] = true
		var verr *bench.ValidationError
		if !errors.As(err, &verr) {
			verr = &bench.ValidationError{Class: m.Class().Name, Method: m.Name(), Role: role, Reason: err.Error()}
		}
		s.record(s.target(m, role), el, result.ValidationFailure(verr))
	}
	return nil, err
}

func classLevel(role bench.Role) bool {
	return role == bench.RoleBeforeBenchClass || role == bench.RoleAfterBenchClass
}

// target returns the node failures of m in role are recorded on.
func (s *Session) target(m *bench.Method, role bench.Role) interface{ AddFailure(result.Failure) } {
	if classLevel(role) {
		return s.root.Class(m.Class().Name)
	}
	return s.node(m)
}

// fire invokes the hooks of role for el. Class-level failures are recorded
// on the class node, all others on the method node.
func (s *Session) fire(el bench.Element, role bench.Role) {
	hooks, err := s.hooks(el.Method, role, &el)
	if err != nil {
		return
	}

	m := el.Method
	method := m.Name()
	if classLevel(role) {
		method = ""
	}
	for _, hook := range hooks {
		var args []any
		if role.PerRun() {
			args = el.Args
		}
		if err := invoke(hook, args); err != nil {
			s.record(s.target(m, role), &el, result.InvocationFailure(m.Class().Name, method, role, hook.Name, err))
		}
	}
}

// record adds f to target and notifies observers.
func (s *Session) record(target interface{ AddFailure(result.Failure) }, el *bench.Element, f result.Failure) {
	target.AddFailure(f)
	s.observer.OnFailure(f)
	if el != nil {
		s.listener.Error(el.Name(), f.Kind)
	}
	s.logger.Warn("benchmark failure",
		slog.String("session_id", s.id),
		slog.String("kind", f.Kind.String()),
		slog.String("class", f.Class),
		slog.String("method", f.Method),
		slog.String("role", f.Role.String()),
		slog.String("hook", f.Hook),
		slog.String("error", f.Message),
	)
}
