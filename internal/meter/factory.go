package meter

import "fmt"

// Type identifies a configurable meter type.
type Type string

const (
	TypeTime   Type = "time"
	TypeMemory Type = "memory"
	TypeAllocs Type = "allocs"
	TypeCount  Type = "count"
)

// New creates a meter of the given type.
//
// Supported types:
//   - "time" - wall-clock time; units ns, us, ms, s (default ms)
//   - "memory" - allocated bytes; units b, kb, mb (default b)
//   - "allocs" - heap allocation count; unit is ignored
//   - "count" - explicitly ticked counter; requires a name
//
// An empty name keeps the type's default name.
func New(meterType Type, unit, name string) (Meter, error) {
	switch meterType {
	case TypeTime:
		u := Milliseconds
		if unit != "" {
			parsed, err := ParseTimeUnit(unit)
			if err != nil {
				return nil, err
			}
			u = parsed
		}
		if name == "" {
			return NewTime(u), nil
		}
		return NewNamedTime(name, u), nil
	case TypeMemory:
		u := Bytes
		if unit != "" {
			parsed, err := ParseMemoryUnit(unit)
			if err != nil {
				return nil, err
			}
			u = parsed
		}
		return NewMemory(u), nil
	case TypeAllocs:
		return NewAllocs(), nil
	case TypeCount:
		if name == "" {
			return nil, fmt.Errorf("count meter requires a name")
		}
		return NewCounter(name, unit, ""), nil
	default:
		return nil, fmt.Errorf("unknown meter type: %s", meterType)
	}
}

// IsValidType returns true if the type is a valid meter type.
func IsValidType(meterType string) bool {
	switch Type(meterType) {
	case TypeTime, TypeMemory, TypeAllocs, TypeCount:
		return true
	default:
		return false
	}
}
