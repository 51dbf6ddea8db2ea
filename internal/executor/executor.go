package executor

import (
	"fmt"
	"log/slog"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// State is the lifecycle state of an Executor.
type State int

const (
	// StateFresh executors have not run any element.
	StateFresh State = iota

	// StateRunning executors have elements left.
	StateRunning

	// StateDrained executors have run every element and fired their
	// one-time post hooks.
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateRunning:
		return "running"
	case StateDrained:
		return "drained"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Executor runs the elements of one method. It fires BeforeFirstRun hooks
// exactly once before the first element, per-run hooks around every element,
// and AfterLastRun hooks exactly once after the last.
type Executor struct {
	session *Session
	method  *bench.Method
	node    *result.MethodResult

	state       State
	beforeFired bool
	remaining   int

	// reused snapshot buffers
	before []float64
	after  []float64
}

func newExecutor(s *Session, m *bench.Method) *Executor {
	return &Executor{
		session:   s,
		method:    m,
		node:      s.node(m),
		state:     StateFresh,
		remaining: m.TotalRuns(),
		before:    make([]float64, len(s.meters)),
		after:     make([]float64, len(s.meters)),
	}
}

// Method returns the executed method.
func (e *Executor) Method() *bench.Method { return e.method }

// State returns the lifecycle state.
func (e *Executor) State() State { return e.state }

// Remaining returns the number of elements not yet executed.
func (e *Executor) Remaining() int { return e.remaining }

func (e *Executor) execute(el bench.Element) {
	s := e.session

	if !e.beforeFired {
		e.beforeFired = true
		e.state = StateRunning
		s.fire(el, bench.RoleBeforeFirstRun)
	}

	s.fire(el, bench.RoleBeforeEachRun)
	e.measure(el)
	s.fire(el, bench.RoleAfterEachRun)

	e.remaining--
	if e.remaining <= 0 {
		s.fire(el, bench.RoleAfterLastRun)
		e.state = StateDrained
		s.logger.Debug("operation drained",
			slog.String("session_id", s.id),
			slog.String("operation", e.method.ID()),
			slog.Int("failures", len(e.node.Failures())),
		)
	}
}

// measure snapshots every meter, calls the operation and snapshots again.
// Time meters sort first, so they are read closest to the call.
func (e *Executor) measure(el bench.Element) {
	s := e.session
	meters := s.meters

	for i := len(meters) - 1; i >= 0; i-- {
		e.before[i] = meters[i].Value()
	}
	err := invoke(e.method.Callable(), el.Args)
	for i := range meters {
		e.after[i] = meters[i].Value()
	}

	if err != nil {
		s.record(e.node, &el, result.InvocationFailure(e.method.Class().Name, e.method.Name(), bench.RoleBench, "", err))
		return
	}

	id := e.method.ID()
	for i, key := range s.keys {
		delta := e.after[i] - e.before[i]
		e.node.Append(delta, key)
		s.observer.OnSample(id, key, delta)
	}
}
