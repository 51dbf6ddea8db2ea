package bench

// Provider yields the argument tuples for a parameterized operation. Every
// tuple produces its own set of runs.
type Provider func() [][]any

// Tag is the benchmark marker on a callable.
type Tag struct {
	// Runs is the declared run count. Zero means "not declared" and inherits
	// the class or process default; negative values are invalid.
	Runs int

	// Hooks names hooks explicitly per role as a comma-separated list of
	// callable names, e.g. {RoleBeforeEachRun: "setup,prime"}. A named role
	// disables the class-wide scan for that role.
	Hooks map[Role]string

	// Provider names the Class.Providers entry supplying argument tuples.
	Provider string
}

// Callable is one function handle produced by discovery.
type Callable struct {
	// Name is the callable's identifier on its class. Only exported names
	// are invokable.
	Name string

	// Fn is the function value. Accepted shapes are func(...) and
	// func(...) error.
	Fn any

	// Static is true when Fn is not bound to the class receiver.
	Static bool

	// Bench marks the callable as a benchmark operation.
	Bench *Tag

	// Skip excludes the callable from benchmarking.
	Skip bool

	// Roles are the hook roles the callable carries.
	Roles []Role
}

// HasRole reports whether c carries role r.
func (c *Callable) HasRole(r Role) bool {
	for _, role := range c.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// Class is a declaring type: a named group of callables sharing hooks and a
// default run count.
type Class struct {
	Name string

	// Bench marks every exported, executable callable without hook roles as
	// a benchmark operation.
	Bench bool

	// Runs is the class-level default run count (0 = not declared).
	Runs int

	Callables []*Callable

	Providers map[string]Provider
}

// Lookup returns the callables named name, in declaration order.
func (c *Class) Lookup(name string) []*Callable {
	var out []*Callable
	for _, callable := range c.Callables {
		if callable.Name == name {
			out = append(out, callable)
		}
	}
	return out
}

// Option configures a benchmark Tag.
type Option func(*Tag)

// WithRuns declares the run count.
func WithRuns(n int) Option {
	return func(t *Tag) { t.Runs = n }
}

// WithHooks names the hooks for role explicitly.
func WithHooks(role Role, names string) Option {
	return func(t *Tag) {
		if t.Hooks == nil {
			t.Hooks = make(map[Role]string)
		}
		t.Hooks[role] = names
	}
}

// WithProvider names the argument provider.
func WithProvider(name string) Option {
	return func(t *Tag) { t.Provider = name }
}

// Op creates a callable marked as a benchmark operation.
func Op(name string, fn any, opts ...Option) *Callable {
	tag := &Tag{}
	for _, opt := range opts {
		opt(tag)
	}
	return &Callable{Name: name, Fn: fn, Bench: tag}
}

// Hook creates a callable carrying the given hook roles.
func Hook(name string, fn any, roles ...Role) *Callable {
	return &Callable{Name: name, Fn: fn, Roles: roles}
}

// StaticHook creates a hook callable not bound to a receiver.
func StaticHook(name string, fn any, roles ...Role) *Callable {
	return &Callable{Name: name, Fn: fn, Static: true, Roles: roles}
}

// Func creates an unmarked callable; it is benchmarked only when its class
// carries the Bench marker.
func Func(name string, fn any) *Callable {
	return &Callable{Name: name, Fn: fn}
}
