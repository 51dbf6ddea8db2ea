// Package meter provides the measurement sources sampled around every
// benchmark run.
package meter

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a meter. Kinds are ordered: all time meters sort before
// memory meters, which sort before counting meters.
type Kind int

const (
	// KindTime meters read a monotonic clock.
	KindTime Kind = iota

	// KindMemory meters read cumulative allocated bytes.
	KindMemory

	// KindCount meters count discrete events.
	KindCount
)

// String returns the kind name used in configuration files.
func (k Kind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindMemory:
		return "memory"
	case KindCount:
		return "count"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Meter is a named, unit-tagged source of monotonic measurement values.
//
// The harness reads Value immediately before and after every invocation of a
// benchmark operation and records the difference as one sample. Meters hold
// private mutable state without synchronization and must only be read and
// ticked from one goroutine.
type Meter interface {
	// Name identifies the meter inside a result tree.
	Name() string

	// Unit is the short unit label, e.g. "ms" or "kb".
	Unit() string

	// Description is the long unit description, e.g. "milliseconds".
	Description() string

	// Kind classifies the meter for ordering.
	Kind() Kind

	// Value returns the current cumulative value in Unit.
	Value() float64
}

// Key is the comparable identity of a meter.
type Key struct {
	Name        string
	Unit        string
	Description string
}

// String renders the key as "name[unit]".
func (k Key) String() string {
	return k.Name + "[" + k.Unit + "]"
}

// Qualified renders the key as "name[unit](description)". It tells apart
// meters that share a name and unit.
func (k Key) Qualified() string {
	return k.String() + "(" + k.Description + ")"
}

// Labels returns a display label for every key: String when no other key
// shares its name and unit, Qualified otherwise.
func Labels(keys []Key) map[Key]string {
	shared := make(map[string]int, len(keys))
	for _, k := range keys {
		shared[k.String()]++
	}
	labels := make(map[Key]string, len(keys))
	for _, k := range keys {
		if shared[k.String()] > 1 {
			labels[k] = k.Qualified()
		} else {
			labels[k] = k.String()
		}
	}
	return labels
}

// KeyOf returns the identity of m.
func KeyOf(m Meter) Key {
	return Key{Name: m.Name(), Unit: m.Unit(), Description: m.Description()}
}

// Equal reports whether a and b have the same name, unit and description.
func Equal(a, b Meter) bool {
	if a == nil || b == nil {
		return a == b
	}
	return KeyOf(a) == KeyOf(b)
}

// Compare orders meters by kind first, then by name, unit and description.
// It returns a negative number when a sorts before b, zero when they are equal
// and a positive number otherwise.
func Compare(a, b Meter) int {
	if a.Kind() != b.Kind() {
		return int(a.Kind()) - int(b.Kind())
	}
	if c := strings.Compare(a.Name(), b.Name()); c != 0 {
		return c
	}
	if c := strings.Compare(a.Unit(), b.Unit()); c != 0 {
		return c
	}
	return strings.Compare(a.Description(), b.Description())
}

// Sort sorts meters in place using Compare. The sort is stable.
func Sort(meters []Meter) {
	sort.SliceStable(meters, func(i, j int) bool {
		return Compare(meters[i], meters[j]) < 0
	})
}

// Dedupe returns meters with duplicates (by Equal) removed, keeping the first
// occurrence, in sorted order.
func Dedupe(meters []Meter) []Meter {
	seen := make(map[Key]bool, len(meters))
	out := make([]Meter, 0, len(meters))
	for _, m := range meters {
		if m == nil {
			continue
		}
		k := KeyOf(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	Sort(out)
	return out
}
