package result

import (
	"fmt"

	"github.com/wesleyorama2/perfkit/internal/bench"
)

// FailureKind classifies a recorded failure.
type FailureKind int

const (
	// KindValidation is a callable that does not satisfy the executability
	// rules for its role.
	KindValidation FailureKind = iota

	// KindInvocation is a callable that returned an error or panicked.
	KindInvocation
)

func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvocation:
		return "invocation"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// MarshalText renders the kind by name.
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Failure is a recorded problem with an operation or one of its hooks. It is
// a value stored in the result tree, never returned to the caller of a run.
type Failure struct {
	Kind FailureKind `json:"kind"`

	// Class and Method attribute the failure to an operation. Method is
	// empty for class-level hooks.
	Class  string `json:"class"`
	Method string `json:"method,omitempty"`

	// Role is RoleBench when the operation itself failed.
	Role bench.Role `json:"role"`

	// Hook names the failing hook callable, if any.
	Hook string `json:"hook,omitempty"`

	Message string `json:"message"`

	// Cause is the original error, unmodified.
	Cause error `json:"-"`
}

// Error implements error.
func (f Failure) Error() string {
	target := f.Class
	if f.Method != "" {
		target += "." + f.Method
	}
	if f.Hook != "" {
		return fmt.Sprintf("%s failure in %s (%s %s): %s", f.Kind, target, f.Role, f.Hook, f.Message)
	}
	return fmt.Sprintf("%s failure in %s (%s): %s", f.Kind, target, f.Role, f.Message)
}

// Unwrap returns the original cause.
func (f Failure) Unwrap() error { return f.Cause }

// ValidationFailure converts a validation error into a Failure.
func ValidationFailure(err *bench.ValidationError) Failure {
	return Failure{
		Kind:    KindValidation,
		Class:   err.Class,
		Method:  err.Method,
		Role:    err.Role,
		Hook:    err.Hook,
		Message: err.Reason,
		Cause:   err,
	}
}

// InvocationFailure records cause as the failure of hook (empty for the
// operation itself) in role.
func InvocationFailure(class, method string, role bench.Role, hook string, cause error) Failure {
	msg := "<nil>"
	if cause != nil {
		msg = cause.Error()
	}
	return Failure{
		Kind:    KindInvocation,
		Class:   class,
		Method:  method,
		Role:    role,
		Hook:    hook,
		Message: msg,
		Cause:   cause,
	}
}

// FilterFailures returns the failures of kind, in order.
func FilterFailures(failures []Failure, kind FailureKind) []Failure {
	var out []Failure
	for _, f := range failures {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
