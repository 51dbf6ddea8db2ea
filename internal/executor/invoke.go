package executor

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/wesleyorama2/perfkit/internal/bench"
)

// PanicError is recorded when a callable panics. It carries the stack of
// the recovery point.
type PanicError struct {
	Value any
	err   error
}

func (e *PanicError) Error() string { return e.err.Error() }

// Unwrap returns the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StackTrace exposes the recovery stack to pkg/errors formatting.
func (e *PanicError) StackTrace() errors.StackTrace {
	if st, ok := e.err.(interface{ StackTrace() errors.StackTrace }); ok {
		return st.StackTrace()
	}
	return nil
}

// Format prints the stack with %+v.
func (e *PanicError) Format(s fmt.State, verb rune) {
	if f, ok := e.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, e.Error())
}

// invoke calls c with args. Arguments are dropped for callables that take
// no parameters. A returned error is passed through unmodified; a panic is
// converted to a *PanicError.
func invoke(c *bench.Callable, args []any) (err error) {
	fn := reflect.ValueOf(c.Fn)
	fnType := fn.Type()

	var in []reflect.Value
	if fnType.NumIn() > 0 {
		if len(args) != fnType.NumIn() {
			return fmt.Errorf("%s takes %d arguments, got %d", c.Name, fnType.NumIn(), len(args))
		}
		in = make([]reflect.Value, len(args))
		for i, arg := range args {
			if arg == nil {
				in[i] = reflect.Zero(fnType.In(i))
				continue
			}
			in[i] = reflect.ValueOf(arg)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, err: errors.Errorf("panic in %s: %v", c.Name, r)}
		}
	}()

	out := fn.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
