package bench

import (
	"fmt"
	"reflect"
	"strings"
)

// Method is a validated benchmark operation: one callable of a class, its
// resolved run count, its argument tuples, and its lazily resolved hooks.
//
// A Method's identity is its pointer; every map keyed by operation uses
// *Method.
type Method struct {
	class    *Class
	callable *Callable
	runs     int
	args     [][]any
	shape    []reflect.Type

	hooks    map[Role][]*Callable
	hookErrs map[Role]error
}

// NewMethod validates c as a benchmark operation of class and resolves its
// run count (method tag, then class, then defaultRuns) and argument tuples.
func NewMethod(class *Class, c *Callable, defaultRuns int) (*Method, error) {
	if class == nil || c == nil {
		return nil, fmt.Errorf("bench: class and callable are required")
	}
	invalid := func(reason string) error {
		return &ValidationError{Class: class.Name, Method: c.Name, Role: RoleBench, Reason: reason}
	}

	if !IsBenchmarkable(class, c) {
		shape := operationShape(c)
		if err := CheckExecutable(c, RoleBench, shape); err != nil {
			return nil, invalid(err.Error())
		}
		return nil, invalid("not a benchmark operation")
	}

	runs := defaultRuns
	if class.Runs < 0 {
		return nil, invalid(fmt.Sprintf("class run count %d is negative", class.Runs))
	}
	if class.Runs > 0 {
		runs = class.Runs
	}
	if c.Bench != nil {
		if c.Bench.Runs < 0 {
			return nil, invalid(fmt.Sprintf("run count %d is negative", c.Bench.Runs))
		}
		if c.Bench.Runs > 0 {
			runs = c.Bench.Runs
		}
	}
	if runs < 0 {
		return nil, invalid(fmt.Sprintf("default run count %d is negative", runs))
	}

	m := &Method{
		class:    class,
		callable: c,
		runs:     runs,
		shape:    operationShape(c),
		hooks:    make(map[Role][]*Callable),
		hookErrs: make(map[Role]error),
	}

	if m.shape != nil {
		provider, ok := class.Providers[c.Bench.Provider]
		if !ok || provider == nil {
			return nil, invalid(fmt.Sprintf("argument provider %q not found", c.Bench.Provider))
		}
		tuples := provider()
		for i, tuple := range tuples {
			if err := checkTuple(tuple, m.shape); err != nil {
				return nil, invalid(fmt.Sprintf("argument tuple %d: %v", i, err))
			}
		}
		m.args = tuples
	}

	return m, nil
}

// checkTuple verifies tuple can be passed to a function with params shape.
func checkTuple(tuple []any, shape []reflect.Type) error {
	if len(tuple) != len(shape) {
		return fmt.Errorf("has %d values, want %d", len(tuple), len(shape))
	}
	for i, v := range tuple {
		if v == nil {
			switch shape[i].Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
				continue
			}
			return fmt.Errorf("value %d is nil, want %s", i, shape[i])
		}
		if !reflect.TypeOf(v).AssignableTo(shape[i]) {
			return fmt.Errorf("value %d is %T, want %s", i, v, shape[i])
		}
	}
	return nil
}

// Class returns the declaring class.
func (m *Method) Class() *Class { return m.class }

// Callable returns the operation callable.
func (m *Method) Callable() *Callable { return m.callable }

// Name returns the operation name.
func (m *Method) Name() string { return m.callable.Name }

// Runs returns the resolved run count per argument tuple.
func (m *Method) Runs() int { return m.runs }

// Args returns the argument tuples; nil for parameterless operations.
func (m *Method) Args() [][]any { return m.args }

// Shape returns the operation's parameter types when it takes arguments.
func (m *Method) Shape() []reflect.Type { return m.shape }

// TotalRuns returns the number of elements the method expands into.
func (m *Method) TotalRuns() int {
	if m.shape != nil {
		return m.runs * len(m.args)
	}
	return m.runs
}

// ID returns "Class.Method" for parameterless operations and
// "Class.Method(T1, T2)" otherwise.
func (m *Method) ID() string {
	id := m.class.Name + "." + m.callable.Name
	if m.shape != nil {
		id += shapeString(m.shape)
	}
	return id
}

func (m *Method) String() string { return m.ID() }

// ResolveHooks returns the hooks for role in invocation order.
//
// When the operation names hooks for role, exactly those callables are
// resolved in the listed order and the class is not scanned. Otherwise the
// class is scanned for callables carrying role: none yields an empty list,
// more than one is a validation error. Results are cached.
func (m *Method) ResolveHooks(role Role) ([]*Callable, error) {
	if hooks, ok := m.hooks[role]; ok {
		return hooks, nil
	}
	if err, ok := m.hookErrs[role]; ok {
		return nil, err
	}

	hooks, err := m.resolve(role)
	if err != nil {
		m.hookErrs[role] = err
		return nil, err
	}
	m.hooks[role] = hooks
	return hooks, nil
}

func (m *Method) resolve(role Role) ([]*Callable, error) {
	invalid := func(hook, reason string) error {
		return &ValidationError{
			Class:  m.class.Name,
			Method: m.callable.Name,
			Role:   role,
			Hook:   hook,
			Reason: reason,
		}
	}

	var names string
	if m.callable.Bench != nil {
		names = m.callable.Bench.Hooks[role]
	}

	if strings.TrimSpace(names) != "" {
		var hooks []*Callable
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			hook, err := m.lookup(name, role)
			if err != nil {
				return nil, invalid(name, err.Error())
			}
			hooks = append(hooks, hook)
		}
		return hooks, nil
	}

	var found []*Callable
	for _, c := range m.class.Callables {
		if c.HasRole(role) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		if err := CheckExecutable(found[0], role, m.shape); err != nil {
			return nil, invalid(found[0].Name, err.Error())
		}
		return found, nil
	default:
		names := make([]string, len(found))
		for i, c := range found {
			names[i] = c.Name
		}
		return nil, invalid("", fmt.Sprintf("%d undesignated hooks (%s); name one explicitly", len(found), strings.Join(names, ", ")))
	}
}

// lookup finds the single callable called name that is executable in role.
func (m *Method) lookup(name string, role Role) (*Callable, error) {
	candidates := m.class.Lookup(name)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no callable named %q on %s", name, m.class.Name)
	}
	var lastErr error
	for _, c := range candidates {
		if err := CheckExecutable(c, role, m.shape); err != nil {
			lastErr = err
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("no callable named %q with a matching signature: %v", name, lastErr)
}
