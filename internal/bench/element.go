package bench

import "fmt"

// Element is one concrete invocation unit of a Method: a run with a unique,
// per-method sequence id and, for parameterized operations, one argument
// tuple.
type Element struct {
	Method *Method
	ID     int
	Args   []any
}

// Equal reports structural equality on (method, sequence id).
func (e Element) Equal(other Element) bool {
	return e.Method == other.Method && e.ID == other.ID
}

// Name renders the element as "Class.Method#id".
func (e Element) Name() string {
	if e.Method == nil {
		return fmt.Sprintf("<nil>#%d", e.ID)
	}
	return fmt.Sprintf("%s#%d", e.Method.ID(), e.ID)
}

func (e Element) String() string { return e.Name() }

// Sequencer hands out per-method sequence ids starting at 1. Ids are never
// reused, even when an element is later discarded.
type Sequencer struct {
	last map[*Method]int
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[*Method]int)}
}

// Next returns the next id for m.
func (s *Sequencer) Next(m *Method) int {
	s.last[m]++
	return s.last[m]
}

// Last returns the last id handed out for m, or 0.
func (s *Sequencer) Last(m *Method) int {
	return s.last[m]
}

// Expand turns methods into elements: Runs elements per parameterless
// method, or Runs elements per argument tuple. Elements of one method are
// contiguous and tuples keep their provider order.
func Expand(methods []*Method, seq *Sequencer) []Element {
	var elements []Element
	for _, m := range methods {
		if m.shape == nil {
			for i := 0; i < m.runs; i++ {
				elements = append(elements, Element{Method: m, ID: seq.Next(m)})
			}
			continue
		}
		for _, tuple := range m.args {
			for i := 0; i < m.runs; i++ {
				elements = append(elements, Element{Method: m, ID: seq.Next(m), Args: tuple})
			}
		}
	}
	return elements
}
