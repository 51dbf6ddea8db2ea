package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/perfkit/internal/arrangement"
	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/result"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type counts map[string]int

// lifecycleClass records every hook and operation call in c.
func lifecycleClass(c counts, runs int) *bench.Class {
	hit := func(name string) func() { return func() { c[name]++ } }
	return &bench.Class{
		Name: "Lifecycle",
		Callables: []*bench.Callable{
			bench.Op("Run", hit("run"), bench.WithRuns(runs)),
			bench.StaticHook("SetupClass", hit("beforeClass"), bench.RoleBeforeBenchClass),
			bench.Hook("SetupFirst", hit("beforeFirst"), bench.RoleBeforeFirstRun),
			bench.Hook("SetupEach", hit("beforeEach"), bench.RoleBeforeEachRun),
			bench.Hook("TeardownEach", hit("afterEach"), bench.RoleAfterEachRun),
			bench.Hook("TeardownLast", hit("afterLast"), bench.RoleAfterLastRun),
			bench.Hook("TeardownClass", hit("afterClass"), bench.RoleAfterBenchClass),
		},
	}
}

// runAll discovers, expands, arranges and executes classes in a fresh
// session.
func runAll(t *testing.T, settings Settings, kind arrangement.Kind, classes ...*bench.Class) *Session {
	t.Helper()
	root := result.NewBenchmarkResult("suite")
	s, err := Initialize(settings, root, WithLogger(quiet))
	require.NoError(t, err)

	methods, err := s.Discover(classes)
	require.NoError(t, err)
	require.NoError(t, s.Validate(methods))
	elements, err := s.Expand(methods)
	require.NoError(t, err)

	a, err := arrangement.New(kind)
	require.NoError(t, err)
	for _, el := range a.Arrange(elements) {
		require.NoError(t, s.Execute(el))
	}
	root.Freeze()
	return s
}

func TestExecute_HookCounts(t *testing.T) {
	for _, runs := range []int{1, 2, 7} {
		t.Run(fmt.Sprintf("runs=%d", runs), func(t *testing.T) {
			c := counts{}
			s := runAll(t, Settings{}, arrangement.KindNone, lifecycleClass(c, runs))

			assert.Equal(t, counts{
				"run":         runs,
				"beforeClass": 1,
				"beforeFirst": 1,
				"beforeEach":  runs,
				"afterEach":   runs,
				"afterLast":   1,
				"afterClass":  1,
			}, c)
			assert.Empty(t, s.Root().Failures())
		})
	}
}

func TestExecute_HookOrder(t *testing.T) {
	var order []string
	log := func(name string) func() { return func() { order = append(order, name) } }
	class := &bench.Class{
		Name: "Order",
		Callables: []*bench.Callable{
			bench.Op("Run", log("run"), bench.WithRuns(2)),
			bench.StaticHook("A", log("beforeClass"), bench.RoleBeforeBenchClass),
			bench.Hook("B", log("beforeFirst"), bench.RoleBeforeFirstRun),
			bench.Hook("C", log("beforeEach"), bench.RoleBeforeEachRun),
			bench.Hook("D", log("afterEach"), bench.RoleAfterEachRun),
			bench.Hook("E", log("afterLast"), bench.RoleAfterLastRun),
			bench.Hook("F", log("afterClass"), bench.RoleAfterBenchClass),
		},
	}

	runAll(t, Settings{}, arrangement.KindNone, class)

	assert.Equal(t, []string{
		"beforeClass", "beforeFirst",
		"beforeEach", "run", "afterEach",
		"beforeEach", "run", "afterEach",
		"afterLast", "afterClass",
	}, order)
}

func TestExecute_ClassHooksOnceAcrossMethods(t *testing.T) {
	c := counts{}
	class := lifecycleClass(c, 3)
	class.Callables = append(class.Callables, bench.Op("Other", func() { c["other"]++ }, bench.WithRuns(2)))

	runAll(t, Settings{}, arrangement.KindInterleaved, class)

	assert.Equal(t, 1, c["beforeClass"])
	assert.Equal(t, 1, c["afterClass"])
	// One-time and per-run hooks are per operation.
	assert.Equal(t, 2, c["beforeFirst"])
	assert.Equal(t, 2, c["afterLast"])
	assert.Equal(t, 5, c["beforeEach"])
	assert.Equal(t, 2, c["other"])
}

func TestExecute_FailureIsolation(t *testing.T) {
	errBroken := errors.New("broken")
	class := &bench.Class{
		Name: "Suite",
		Callables: []*bench.Callable{
			bench.Op("First", func() {}, bench.WithRuns(4)),
			bench.Op("Broken", func() error { return errBroken }, bench.WithRuns(1)),
			bench.Op("Third", func() error { return nil }, bench.WithRuns(4)),
		},
	}
	ticks := meter.NewCounter("ticks", "", "")
	s := runAll(t, Settings{Meters: []meter.Meter{ticks}}, arrangement.KindShuffle, class)

	root := s.Root()
	key := meter.KeyOf(ticks)

	failures := root.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, result.KindInvocation, failures[0].Kind)
	assert.Equal(t, "Broken", failures[0].Method)
	assert.Equal(t, bench.RoleBench, failures[0].Role)
	assert.Same(t, errBroken, failures[0].Cause)

	cls := root.Class("Suite")
	assert.Equal(t, 0, cls.Method("Suite.Broken").ResultCount(key))
	assert.Equal(t, 4, cls.Method("Suite.First").ResultCount(key))
	assert.Equal(t, 4, cls.Method("Suite.Third").ResultCount(key))
}

func TestExecute_HookFailureDoesNotBlockRun(t *testing.T) {
	c := counts{}
	errSetup := errors.New("setup failed")
	class := &bench.Class{
		Name: "Flaky",
		Callables: []*bench.Callable{
			bench.Op("Run", func() { c["run"]++ }, bench.WithRuns(3)),
			bench.Hook("Setup", func() error { return errSetup }, bench.RoleBeforeEachRun),
			bench.Hook("Prepare", func() error { return errSetup }, bench.RoleBeforeFirstRun),
		},
	}

	s := runAll(t, Settings{Meters: []meter.Meter{meter.NewTime(meter.Microseconds)}}, arrangement.KindNone, class)

	assert.Equal(t, 3, c["run"])
	failures := s.Root().Failures()
	require.Len(t, failures, 4)
	assert.Equal(t, bench.RoleBeforeFirstRun, failures[0].Role)
	assert.Equal(t, "Prepare", failures[0].Hook)
	for _, f := range failures[1:] {
		assert.Equal(t, bench.RoleBeforeEachRun, f.Role)
		assert.ErrorIs(t, f, errSetup)
	}
	assert.Equal(t, 3, s.Root().ResultCount(meter.KeyOf(s.Meters()[0])))
}

func TestExecute_ValidationFailureRecordedOnce(t *testing.T) {
	c := counts{}
	class := &bench.Class{
		Name: "Ambiguous",
		Callables: []*bench.Callable{
			bench.Op("Run", func() { c["run"]++ }, bench.WithRuns(3)),
			bench.Hook("SetupA", func() { c["a"]++ }, bench.RoleBeforeEachRun),
			bench.Hook("SetupB", func() { c["b"]++ }, bench.RoleBeforeEachRun),
			bench.Hook("Broken", func() int { return 0 }, bench.RoleAfterBenchClass),
		},
	}

	s := runAll(t, Settings{}, arrangement.KindNone, class)

	assert.Equal(t, 3, c["run"])
	assert.Zero(t, c["a"]+c["b"])

	failures := result.FilterFailures(s.Root().Failures(), result.KindValidation)
	require.Len(t, failures, 2)

	// Class-level problems are recorded on the class node.
	classOnly := s.Root().Class("Ambiguous")
	var roles []bench.Role
	for _, f := range failures {
		roles = append(roles, f.Role)
	}
	assert.ElementsMatch(t, []bench.Role{bench.RoleBeforeEachRun, bench.RoleAfterBenchClass}, roles)
	assert.Len(t, classOnly.Method("Ambiguous.Run").Failures(), 1)
}

func TestExecute_DiscoveryErrorsRecorded(t *testing.T) {
	class := &bench.Class{
		Name: "Mixed",
		Callables: []*bench.Callable{
			bench.Op("Good", func() {}, bench.WithRuns(1)),
			bench.Op("Bad", func() int { return 1 }),
		},
	}

	s := runAll(t, Settings{}, arrangement.KindNone, class)

	failures := s.Root().Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, result.KindValidation, failures[0].Kind)
	assert.Equal(t, "Bad", failures[0].Method)
}

func TestExecute_PanicRecovered(t *testing.T) {
	c := counts{}
	class := &bench.Class{
		Name: "Panicky",
		Callables: []*bench.Callable{
			bench.Op("Boom", func() { panic("boom") }, bench.WithRuns(2)),
			bench.Op("Fine", func() { c["fine"]++ }, bench.WithRuns(2)),
		},
	}

	s := runAll(t, Settings{}, arrangement.KindNone, class)

	assert.Equal(t, 2, c["fine"])
	failures := s.Root().Failures()
	require.Len(t, failures, 2)
	var perr *PanicError
	require.ErrorAs(t, failures[0].Cause, &perr)
	assert.Equal(t, "boom", perr.Value)
	assert.Contains(t, perr.Error(), "Boom")
	assert.NotEmpty(t, perr.StackTrace())
	assert.Contains(t, fmt.Sprintf("%+v", perr), "invoke")
}

func TestExecute_PanicWithError(t *testing.T) {
	cause := errors.New("inner")
	err := invoke(bench.Func("Boom", func() { panic(cause) }), nil)

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, cause)
}

func TestExecute_Arguments(t *testing.T) {
	var seen []int
	var hookSeen []int
	class := &bench.Class{
		Name: "Sized",
		Callables: []*bench.Callable{
			bench.Op("Fill", func(n int) { seen = append(seen, n) }, bench.WithRuns(2), bench.WithProvider("sizes")),
			bench.Hook("Reset", func(n int) { hookSeen = append(hookSeen, n) }, bench.RoleBeforeEachRun),
		},
		Providers: map[string]bench.Provider{
			"sizes": func() [][]any { return [][]any{{10}, {20}} },
		},
	}

	s := runAll(t, Settings{}, arrangement.KindNone, class)

	assert.Equal(t, []int{10, 10, 20, 20}, seen)
	assert.Equal(t, seen, hookSeen)
	assert.Empty(t, s.Root().Failures())
}

func TestExecute_CounterMeterDelta(t *testing.T) {
	ops := meter.NewCounter("ops", "", "")
	class := &bench.Class{
		Name: "Ticking",
		Callables: []*bench.Callable{
			bench.Op("Three", func() { ops.Tick(); ops.Tick(); ops.Tick() }, bench.WithRuns(2)),
			// Ticks outside the operation body are not attributed to it.
			bench.Hook("Noise", func() { ops.Add(100) }, bench.RoleBeforeEachRun),
		},
	}

	s := runAll(t, Settings{Meters: []meter.Meter{ops}}, arrangement.KindNone, class)

	samples := s.Root().Samples(meter.KeyOf(ops))
	assert.Equal(t, result.Samples{3, 3}, samples)
}

func TestExecute_MetersSharingNameAndUnit(t *testing.T) {
	inserted := meter.NewCounter("items", "ticks", "inserted")
	deleted := meter.NewCounter("items", "ticks", "deleted")
	class := &bench.Class{
		Name: "Inventory",
		Callables: []*bench.Callable{
			bench.Op("Churn", func() { inserted.Add(3); deleted.Add(1) }, bench.WithRuns(2)),
		},
	}

	var s *Session
	require.NotPanics(t, func() {
		s = runAll(t, Settings{Meters: []meter.Meter{inserted, deleted}}, arrangement.KindNone, class)
	})
	require.Len(t, s.Meters(), 2)

	root := s.Root()
	assert.Equal(t, result.Samples{3, 3}, root.Samples(meter.KeyOf(inserted)))
	assert.Equal(t, result.Samples{1, 1}, root.Samples(meter.KeyOf(deleted)))
	assert.Empty(t, root.Failures())

	node, ok := root.Find("Inventory.Churn")
	require.True(t, ok)
	var names []string
	for _, leaf := range node.(*result.MethodResult).Children() {
		names = append(names, leaf.Name())
	}
	assert.ElementsMatch(t, []string{"items[ticks]", "items[ticks](inserted)"}, names)
}

func TestExecute_StateMachine(t *testing.T) {
	class := &bench.Class{Name: "States", Callables: []*bench.Callable{bench.Op("Run", func() {}, bench.WithRuns(2))}}
	s, err := Initialize(Settings{}, result.NewBenchmarkResult("suite"), WithLogger(quiet))
	require.NoError(t, err)
	methods, err := s.Discover([]*bench.Class{class})
	require.NoError(t, err)
	elements, err := s.Expand(methods)
	require.NoError(t, err)
	require.Len(t, elements, 2)

	e, err := s.Executor(methods[0])
	require.NoError(t, err)
	assert.Equal(t, StateFresh, e.State())
	assert.Equal(t, 2, e.Remaining())

	require.NoError(t, s.Execute(elements[0]))
	assert.Equal(t, StateRunning, e.State())
	assert.Equal(t, 1, e.Remaining())

	require.NoError(t, s.Execute(elements[1]))
	assert.Equal(t, StateDrained, e.State())
	assert.Equal(t, "drained", e.State().String())

	// An element beyond the expanded set is misuse.
	assert.Error(t, s.Execute(elements[1]))

	same, err := s.Executor(methods[0])
	require.NoError(t, err)
	assert.Same(t, e, same)
}

func TestSession_NotInitialized(t *testing.T) {
	var nilSession *Session
	assert.ErrorIs(t, nilSession.Execute(bench.Element{}), ErrNotInitialized)

	zero := &Session{}
	_, err := zero.Expand(nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = zero.Executor(nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = zero.Discover(nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		root     *result.BenchmarkResult
		wantErr  bool
	}{
		{name: "defaults", root: result.NewBenchmarkResult("r")},
		{name: "nil root", wantErr: true},
		{name: "negative runs", settings: Settings{Runs: -1}, root: result.NewBenchmarkResult("r"), wantErr: true},
		{name: "gc too large", settings: Settings{GCProbability: 1.5}, root: result.NewBenchmarkResult("r"), wantErr: true},
		{name: "gc negative", settings: Settings{GCProbability: -0.1}, root: result.NewBenchmarkResult("r"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Initialize(tt.settings, tt.root, WithLogger(quiet))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultRuns, s.DefaultRuns())
			assert.NotEmpty(t, s.ID())
		})
	}

	frozen := result.NewBenchmarkResult("r")
	frozen.Freeze()
	_, err := Initialize(Settings{}, frozen)
	assert.Error(t, err)
}

func TestInitialize_MetersSortedAndDeduped(t *testing.T) {
	count := meter.NewCounter("ops", "", "")
	time1 := meter.NewTime(meter.Milliseconds)
	time2 := meter.NewTime(meter.Milliseconds)

	s, err := Initialize(Settings{Meters: []meter.Meter{count, time1, time2}, GCProbability: 0.25},
		result.NewBenchmarkResult("r"), WithLogger(quiet), WithID("fixed"))
	require.NoError(t, err)

	ms := s.Meters()
	require.Len(t, ms, 2)
	assert.Equal(t, meter.KindTime, ms[0].Kind())
	assert.Equal(t, meter.KindCount, ms[1].Kind())
	assert.Equal(t, 0.25, s.GCProbability())
	assert.Equal(t, "fixed", s.ID())
}

type events struct {
	current  []string
	errors   []string
	samples  int
	failures int
}

func (e *events) Init(map[string]int) {}
func (e *events) Current(name string) { e.current = append(e.current, name) }
func (e *events) Error(name string, kind result.FailureKind) {
	e.errors = append(e.errors, name+":"+kind.String())
}
func (e *events) Finished()                           {}
func (e *events) OnSample(string, meter.Key, float64) { e.samples++ }
func (e *events) OnFailure(result.Failure)            { e.failures++ }

func TestExecute_NotifiesListeners(t *testing.T) {
	ev := &events{}
	class := &bench.Class{
		Name: "Notify",
		Callables: []*bench.Callable{
			bench.Op("Ok", func() {}, bench.WithRuns(2)),
			bench.Op("Fail", func() error { return errors.New("no") }, bench.WithRuns(1)),
		},
	}
	s, err := Initialize(Settings{Meters: []meter.Meter{meter.NewTime(meter.Nanoseconds)}},
		result.NewBenchmarkResult("r"), WithLogger(quiet), WithListener(ev), WithObserver(ev))
	require.NoError(t, err)
	methods, err := s.Discover([]*bench.Class{class})
	require.NoError(t, err)
	elements, err := s.Expand(methods)
	require.NoError(t, err)
	for _, el := range elements {
		require.NoError(t, s.Execute(el))
	}

	assert.Equal(t, []string{"Notify.Ok#1", "Notify.Ok#2", "Notify.Fail#1"}, ev.current)
	assert.Equal(t, []string{"Notify.Fail#1:invocation"}, ev.errors)
	assert.Equal(t, 2, ev.samples)
	assert.Equal(t, 1, ev.failures)
}
