package bench

import (
	"fmt"
	"go/token"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ValidationError reports a callable that does not satisfy the structural
// rules for its role.
type ValidationError struct {
	Class  string
	Method string
	Role   Role
	Hook   string
	Reason string
}

func (e *ValidationError) Error() string {
	target := e.Class + "." + e.Method
	if e.Method == "" {
		target = e.Class
	}
	if e.Hook != "" {
		return fmt.Sprintf("validation error on %s (%s %s): %s", target, e.Role, e.Hook, e.Reason)
	}
	return fmt.Sprintf("validation error on %s (%s): %s", target, e.Role, e.Reason)
}

// CheckExecutable returns nil when c can be invoked in role.
//
// A callable is executable when its name is exported, Fn is a non-nil
// function returning nothing or a single error, it is not variadic, it is not
// static (unless role is RoleBeforeBenchClass), and it takes no parameters.
// Parameters are accepted only for the operation itself and per-run hooks,
// and only when shape is non-nil; they must then match shape exactly.
func CheckExecutable(c *Callable, role Role, shape []reflect.Type) error {
	if c == nil {
		return fmt.Errorf("callable is nil")
	}
	if !token.IsExported(c.Name) {
		return fmt.Errorf("%q is not exported", c.Name)
	}
	if c.Fn == nil {
		return fmt.Errorf("%q has no function value", c.Name)
	}
	fnType := reflect.TypeOf(c.Fn)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("%q is a %s, not a function", c.Name, fnType.Kind())
	}
	if reflect.ValueOf(c.Fn).IsNil() {
		return fmt.Errorf("%q has a nil function value", c.Name)
	}
	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) != errorType {
			return fmt.Errorf("%q returns a value of type %s", c.Name, fnType.Out(0))
		}
	default:
		return fmt.Errorf("%q returns %d values", c.Name, fnType.NumOut())
	}
	if fnType.IsVariadic() {
		return fmt.Errorf("%q is variadic", c.Name)
	}
	if c.Static && role != RoleBeforeBenchClass {
		return fmt.Errorf("%q is static", c.Name)
	}
	if fnType.NumIn() == 0 {
		return nil
	}

	supportsArguments := shape != nil && (role == RoleBench || role.PerRun())
	if !supportsArguments {
		return fmt.Errorf("%q takes %d parameters, want none", c.Name, fnType.NumIn())
	}
	if fnType.NumIn() != len(shape) {
		return fmt.Errorf("%q takes %d parameters, want %d", c.Name, fnType.NumIn(), len(shape))
	}
	for i, want := range shape {
		if fnType.In(i) != want {
			return fmt.Errorf("%q parameter %d is %s, want %s", c.Name, i, fnType.In(i), want)
		}
	}
	return nil
}

// IsExecutable reports whether c can be invoked in role.
func IsExecutable(c *Callable, role Role, shape []reflect.Type) bool {
	return CheckExecutable(c, role, shape) == nil
}

// IsBenchmarkable reports whether c is a benchmark operation of class.
func IsBenchmarkable(class *Class, c *Callable) bool {
	if c == nil || c.Skip {
		return false
	}
	if len(c.Roles) > 0 && c.Bench == nil {
		return false
	}
	if c.Bench == nil && (class == nil || !class.Bench) {
		return false
	}
	return IsExecutable(c, RoleBench, operationShape(c))
}

// operationShape returns the parameter types of c when it declares an
// argument provider, and nil otherwise.
func operationShape(c *Callable) []reflect.Type {
	if c.Bench == nil || c.Bench.Provider == "" || c.Fn == nil {
		return nil
	}
	fnType := reflect.TypeOf(c.Fn)
	if fnType.Kind() != reflect.Func {
		return nil
	}
	shape := make([]reflect.Type, fnType.NumIn())
	for i := range shape {
		shape[i] = fnType.In(i)
	}
	return shape
}

// shapeString renders a parameter shape as "(int, string)".
func shapeString(shape []reflect.Type) string {
	s := "("
	for i, t := range shape {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}
