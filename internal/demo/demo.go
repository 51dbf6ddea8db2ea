// Package demo holds the benchmark classes shipped with the perfkit binary.
// They show the registration API: class-wide markers, per-run and one-time
// hooks, argument providers and a user-ticked counter.
package demo

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/meter"
)

// ItemsMeter is the name of the counter the demo classes tick.
const ItemsMeter = "items"

// sink keeps results alive so the compiler cannot drop the work.
var sink any

// Suite is the set of demo classes and the meters they tick.
type Suite struct {
	Classes []*bench.Class
	Meters  []meter.Meter

	items *meter.Counter
}

// New builds the demo suite. Every Suite has its own state, so two runs do
// not share buffers or counters.
func New() *Suite {
	items := meter.NewCounter(ItemsMeter, ItemsMeter, "items processed")
	s := &Suite{Meters: []meter.Meter{items}, items: items}
	s.Classes = []*bench.Class{
		s.stringsClass(),
		s.sortingClass(),
		s.mapsClass(),
	}
	return s
}

// stringsClass compares ways of building a string. Every exported function
// without a hook role is an operation.
func (s *Suite) stringsClass() *bench.Class {
	const parts = 64
	var words []string

	return &bench.Class{
		Name:  "Strings",
		Bench: true,
		Runs:  20,
		Callables: []*bench.Callable{
			bench.StaticHook("Words", func() {
				words = make([]string, parts)
				for i := range words {
					words[i] = strconv.Itoa(i)
				}
			}, bench.RoleBeforeBenchClass),
			bench.Func("Builder", func() {
				var sb strings.Builder
				for _, w := range words {
					sb.WriteString(w)
				}
				sink = sb.String()
				s.items.Add(parts)
			}),
			bench.Func("Concat", func() {
				out := ""
				for _, w := range words {
					out += w
				}
				sink = out
				s.items.Add(parts)
			}),
			bench.Func("Join", func() {
				sink = strings.Join(words, "")
				s.items.Add(parts)
			}),
		},
	}
}

// sortingClass sorts slices of every provided size. The per-run hook receives
// the same arguments as the operation.
func (s *Suite) sortingClass() *bench.Class {
	rng := rand.New(rand.NewSource(1))
	var data []int

	return &bench.Class{
		Name: "Sorting",
		Runs: 5,
		Callables: []*bench.Callable{
			bench.Hook("Fill", func(n int) {
				if cap(data) < n {
					data = make([]int, n)
				}
				data = data[:n]
				for i := range data {
					data[i] = rng.Int()
				}
			}, bench.RoleBeforeEachRun),
			bench.Op("Ints", func(n int) error {
				sort.Ints(data)
				if !sort.IntsAreSorted(data) {
					return fmt.Errorf("%d ints not sorted", n)
				}
				s.items.Add(uint64(n))
				return nil
			}, bench.WithProvider("sizes")),
		},
		Providers: map[string]bench.Provider{
			"sizes": func() [][]any { return [][]any{{100}, {1000}} },
		},
	}
}

// mapsClass measures lookups and inserts on a map built once per class.
func (s *Suite) mapsClass() *bench.Class {
	const size = 1024
	var table map[string]int
	next := 0

	return &bench.Class{
		Name: "Maps",
		Runs: 10,
		Callables: []*bench.Callable{
			bench.StaticHook("Build", func() {
				table = make(map[string]int, size)
				for i := 0; i < size; i++ {
					table[strconv.Itoa(i)] = i
				}
			}, bench.RoleBeforeBenchClass),
			bench.Hook("Reset", func() { next = 0 }, bench.RoleBeforeFirstRun),
			bench.Op("Lookup", func() error {
				for i := 0; i < size; i++ {
					if _, ok := table[strconv.Itoa(i)]; !ok {
						return fmt.Errorf("key %d missing", i)
					}
				}
				s.items.Add(size)
				return nil
			}),
			bench.Op("Insert", func() {
				for i := 0; i < 16; i++ {
					table["k"+strconv.Itoa(next)] = next
					next++
				}
				s.items.Add(16)
			}),
			bench.Hook("Drop", func() {
				for k := range table {
					if strings.HasPrefix(k, "k") {
						delete(table, k)
					}
				}
			}, bench.RoleAfterLastRun),
		},
	}
}
