// Package bench describes benchmark operations and their lifecycle hooks.
//
// Go has no annotations, so discovery is explicit: callers build Class values
// whose Callables carry role tags. This package validates those tags, resolves
// hooks, and expands every operation into uniquely sequenced Elements.
package bench

import "fmt"

// Role is the part a callable plays in a benchmark.
type Role int

const (
	// RoleBench marks the benchmark operation itself.
	RoleBench Role = iota

	// RoleBeforeBenchClass hooks run once per class, before any of its runs.
	RoleBeforeBenchClass

	// RoleBeforeFirstRun hooks run once per operation, before its first run.
	RoleBeforeFirstRun

	// RoleBeforeEachRun hooks run before every run of an operation.
	RoleBeforeEachRun

	// RoleAfterEachRun hooks run after every run of an operation.
	RoleAfterEachRun

	// RoleAfterLastRun hooks run once per operation, after its last run.
	RoleAfterLastRun

	// RoleAfterBenchClass hooks run once per class, after all of its runs.
	RoleAfterBenchClass
)

// HookRoles lists every hook role in firing order.
var HookRoles = []Role{
	RoleBeforeBenchClass,
	RoleBeforeFirstRun,
	RoleBeforeEachRun,
	RoleAfterEachRun,
	RoleAfterLastRun,
	RoleAfterBenchClass,
}

func (r Role) String() string {
	switch r {
	case RoleBench:
		return "bench"
	case RoleBeforeBenchClass:
		return "beforeBenchClass"
	case RoleBeforeFirstRun:
		return "beforeFirstRun"
	case RoleBeforeEachRun:
		return "beforeEachRun"
	case RoleAfterEachRun:
		return "afterEachRun"
	case RoleAfterLastRun:
		return "afterLastRun"
	case RoleAfterBenchClass:
		return "afterBenchClass"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// MarshalText renders the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// PerRun reports whether the role fires around every run.
func (r Role) PerRun() bool {
	return r == RoleBeforeEachRun || r == RoleAfterEachRun
}

// Hook reports whether the role is a hook role.
func (r Role) Hook() bool {
	return r > RoleBench && r <= RoleAfterBenchClass
}
