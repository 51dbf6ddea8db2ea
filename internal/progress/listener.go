// Package progress reports a benchmark run while it executes: element-level
// events for remote viewers and sample-level callbacks for live renderers.
package progress

import (
	"strings"

	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// Listener receives the element-level events of a run.
//
// Init is called once with the total element count per operation, Current
// before every element, Error for every failure attributed to an element,
// and Finished once after the last element.
type Listener interface {
	Init(totals map[string]int)
	Current(name string)
	Error(name string, kind result.FailureKind)
	Finished()
}

// SampleObserver receives every recorded sample and failure as it happens.
type SampleObserver interface {
	OnSample(operation string, key meter.Key, value float64)
	OnFailure(f result.Failure)
}

// Operation strips the "#id" suffix from an element name.
func Operation(element string) string {
	if i := strings.LastIndexByte(element, '#'); i >= 0 {
		return element[:i]
	}
	return element
}

// Nop ignores every event.
type Nop struct{}

func (Nop) Init(map[string]int)                 {}
func (Nop) Current(string)                      {}
func (Nop) Error(string, result.FailureKind)    {}
func (Nop) Finished()                           {}
func (Nop) OnSample(string, meter.Key, float64) {}
func (Nop) OnFailure(result.Failure)            {}

// Multi fans events out to several listeners. Listeners that also implement
// SampleObserver receive samples and failures too.
type Multi struct {
	listeners []Listener
}

// NewMulti creates a fan-out over listeners, skipping nil entries.
func NewMulti(listeners ...Listener) *Multi {
	m := &Multi{}
	for _, l := range listeners {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
	return m
}

// Add appends l.
func (m *Multi) Add(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// Len returns the number of listeners.
func (m *Multi) Len() int { return len(m.listeners) }

func (m *Multi) Init(totals map[string]int) {
	for _, l := range m.listeners {
		l.Init(totals)
	}
}

func (m *Multi) Current(name string) {
	for _, l := range m.listeners {
		l.Current(name)
	}
}

func (m *Multi) Error(name string, kind result.FailureKind) {
	for _, l := range m.listeners {
		l.Error(name, kind)
	}
}

func (m *Multi) Finished() {
	for _, l := range m.listeners {
		l.Finished()
	}
}

func (m *Multi) OnSample(operation string, key meter.Key, value float64) {
	for _, l := range m.listeners {
		if o, ok := l.(SampleObserver); ok {
			o.OnSample(operation, key, value)
		}
	}
}

func (m *Multi) OnFailure(f result.Failure) {
	for _, l := range m.listeners {
		if o, ok := l.(SampleObserver); ok {
			o.OnFailure(f)
		}
	}
}
