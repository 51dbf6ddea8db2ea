// Package arrangement orders the expanded benchmark elements into the
// sequence that is actually run.
package arrangement

import (
	"fmt"

	"github.com/wesleyorama2/perfkit/internal/bench"
)

// Kind identifies an arrangement strategy.
type Kind string

const (
	// KindNone keeps discovery order.
	KindNone Kind = "none"

	// KindShuffle permutes elements with a fixed-seed Fisher-Yates shuffle.
	KindShuffle Kind = "shuffle"

	// KindInterleaved spreads runs of one operation across the sequence.
	KindInterleaved Kind = "interleaved"
)

// Arrangement turns a set of elements into a run order. Implementations
// return a permutation of their input and never modify it.
type Arrangement interface {
	// Arrange returns elements in run order.
	Arrange(elements []bench.Element) []bench.Element

	// Kind returns the strategy kind.
	Kind() Kind
}

// New creates the arrangement for kind. An empty kind selects KindNone.
//
// Supported kinds:
//   - "none" - discovery order
//   - "shuffle" - deterministic pseudo-random order (seed DefaultSeed)
//   - "interleaved" - round-robin by operation, largest remaining first
func New(kind Kind) (Arrangement, error) {
	switch kind {
	case KindNone, "":
		return None{}, nil
	case KindShuffle:
		return NewShuffle(DefaultSeed), nil
	case KindInterleaved:
		return Interleaved{}, nil
	default:
		return nil, fmt.Errorf("unknown arrangement kind: %s", kind)
	}
}

// NewFromString is New for string input.
func NewFromString(kind string) (Arrangement, error) {
	return New(Kind(kind))
}

// IsValidKind returns true if kind names a supported arrangement.
func IsValidKind(kind string) bool {
	switch Kind(kind) {
	case KindNone, KindShuffle, KindInterleaved:
		return true
	default:
		return false
	}
}

// SupportedKinds returns every supported arrangement kind.
func SupportedKinds() []Kind {
	return []Kind{KindNone, KindShuffle, KindInterleaved}
}

// Describe returns a one-line description of kind, or "" if unknown.
func Describe(kind Kind) string {
	switch kind {
	case KindNone:
		return "Runs elements in discovery order; all runs of an operation are contiguous."
	case KindShuffle:
		return "Permutes elements with a fixed seed, so every invocation produces the same order."
	case KindInterleaved:
		return "Repeatedly takes one run from the operation with the most runs left, avoiding back-to-back repeats."
	default:
		return ""
	}
}

// None preserves input order.
type None struct{}

// Arrange returns a copy of elements.
func (None) Arrange(elements []bench.Element) []bench.Element {
	out := make([]bench.Element, len(elements))
	copy(out, elements)
	return out
}

// Kind returns KindNone.
func (None) Kind() Kind { return KindNone }
