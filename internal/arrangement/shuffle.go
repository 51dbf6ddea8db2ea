package arrangement

import (
	"math/rand"

	"github.com/wesleyorama2/perfkit/internal/bench"
)

// DefaultSeed seeds the shuffle arrangement. It is constant so repeated
// invocations run elements in the same order.
const DefaultSeed int64 = 0x5eed_cafe

// Shuffle permutes elements with a Fisher-Yates shuffle.
type Shuffle struct {
	seed int64
}

// NewShuffle creates a shuffle arrangement with the given seed.
func NewShuffle(seed int64) Shuffle {
	return Shuffle{seed: seed}
}

// Seed returns the shuffle seed.
func (s Shuffle) Seed() int64 { return s.seed }

// Arrange returns a shuffled copy of elements. The same seed and input
// always give the same output.
func (s Shuffle) Arrange(elements []bench.Element) []bench.Element {
	out := make([]bench.Element, len(elements))
	copy(out, elements)

	rng := rand.New(rand.NewSource(s.seed))
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Kind returns KindShuffle.
func (Shuffle) Kind() Kind { return KindShuffle }
