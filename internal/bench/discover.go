package bench

import (
	"errors"
	"path"
)

// Discover builds a Method for every benchmarkable callable of classes, in
// class and declaration order.
//
// Callables explicitly tagged as operations that fail validation are returned
// as errors instead of being dropped silently; unmarked callables that are
// not executable are skipped.
func Discover(classes []*Class, defaultRuns int) ([]*Method, []*ValidationError) {
	var methods []*Method
	var errs []*ValidationError

	for _, class := range classes {
		if class == nil {
			continue
		}
		for _, c := range class.Callables {
			if c == nil || c.Skip {
				continue
			}
			if !IsBenchmarkable(class, c) && c.Bench == nil {
				continue
			}
			m, err := NewMethod(class, c, defaultRuns)
			if err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					errs = append(errs, verr)
				} else {
					errs = append(errs, &ValidationError{Class: class.Name, Method: c.Name, Role: RoleBench, Reason: err.Error()})
				}
				continue
			}
			methods = append(methods, m)
		}
	}

	return methods, errs
}

// Filter keeps methods whose ID or "Class.Method" name matches any include
// pattern (all methods when include is empty) and no exclude pattern.
// Patterns use path.Match syntax; malformed patterns never match.
func Filter(methods []*Method, include, exclude []string) []*Method {
	var out []*Method
	for _, m := range methods {
		name := m.Class().Name + "." + m.Name()
		if len(include) > 0 && !matchAny(include, name, m.ID()) {
			continue
		}
		if matchAny(exclude, name, m.ID()) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchAny(patterns []string, names ...string) bool {
	for _, p := range patterns {
		for _, n := range names {
			if ok, err := path.Match(p, n); err == nil && ok {
				return true
			}
		}
	}
	return false
}
