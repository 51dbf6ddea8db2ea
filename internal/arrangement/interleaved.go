package arrangement

import "github.com/wesleyorama2/perfkit/internal/bench"

// Interleaved groups elements by operation and repeatedly emits the next
// element of the group with the most elements left. Ties go to the group
// encountered first. The group emitted last is passed over while any other
// group has elements left, so two runs of one operation are adjacent only
// when nothing else remains.
type Interleaved struct{}

type group struct {
	elements []bench.Element
	next     int
}

func (g *group) remaining() int { return len(g.elements) - g.next }

// Arrange returns elements in interleaved order. Within a group, elements
// keep their input order.
func (Interleaved) Arrange(elements []bench.Element) []bench.Element {
	var groups []*group
	index := make(map[*bench.Method]*group)
	for _, el := range elements {
		g, ok := index[el.Method]
		if !ok {
			g = &group{}
			index[el.Method] = g
			groups = append(groups, g)
		}
		g.elements = append(g.elements, el)
	}

	out := make([]bench.Element, 0, len(elements))
	var last *group
	for len(out) < len(elements) {
		pick := largest(groups, last)
		if pick == nil {
			pick = last
		}
		out = append(out, pick.elements[pick.next])
		pick.next++
		last = pick
	}
	return out
}

// largest returns the first group with the most elements left, ignoring
// skip, or nil if every other group is exhausted.
func largest(groups []*group, skip *group) *group {
	var best *group
	for _, g := range groups {
		if g == skip || g.remaining() == 0 {
			continue
		}
		if best == nil || g.remaining() > best.remaining() {
			best = g
		}
	}
	return best
}

// Kind returns KindInterleaved.
func (Interleaved) Kind() Kind { return KindInterleaved }
