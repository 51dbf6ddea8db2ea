// Package result accumulates samples and failures of a benchmark run in a
// four-level tree: suite, class, method and one leaf per (method, meter).
//
// Statistics on any node are computed over the samples of all descendant
// leaves for the requested meter. Once frozen, the tree is read-only and any
// write panics.
package result

import (
	"fmt"

	"github.com/wesleyorama2/perfkit/internal/meter"
)

// Node is the read-only view shared by every level of the tree.
type Node interface {
	Name() string
	Samples(key meter.Key) Samples
	Meters() []meter.Key
	Failures() []Failure
}

type node interface {
	Node
	collect(key meter.Key, dst Samples) Samples
	keys(seen map[meter.Key]bool, dst []meter.Key) []meter.Key
	collectFailures(dst []Failure) []Failure
	freeze()
}

func panicFrozen(name string) {
	panic(fmt.Sprintf("result: write to frozen node %q", name))
}

// aggregate provides the statistics of a node over a sample source.
type aggregate struct {
	source func(meter.Key) Samples
}

// Samples returns every sample recorded for key below this node.
func (a aggregate) Samples(key meter.Key) Samples { return a.source(key) }

// ResultCount returns the number of samples recorded for key.
func (a aggregate) ResultCount(key meter.Key) int { return len(a.source(key)) }

func (a aggregate) Sum(key meter.Key) (float64, error)       { return a.source(key).Sum() }
func (a aggregate) SquareSum(key meter.Key) (float64, error) { return a.source(key).SquareSum() }
func (a aggregate) Mean(key meter.Key) (float64, error)      { return a.source(key).Mean() }
func (a aggregate) Avg(key meter.Key) (float64, error)       { return a.source(key).Avg() }
func (a aggregate) Variance(key meter.Key) (float64, error)  { return a.source(key).Variance() }

func (a aggregate) StandardDeviation(key meter.Key) (float64, error) {
	return a.source(key).StandardDeviation()
}

func (a aggregate) Confidence95(key meter.Key) (float64, error) {
	return a.source(key).Confidence95()
}

func (a aggregate) Confidence99(key meter.Key) (float64, error) {
	return a.source(key).Confidence99()
}

func (a aggregate) Min(key meter.Key) float64    { return a.source(key).Min() }
func (a aggregate) Max(key meter.Key) float64    { return a.source(key).Max() }
func (a aggregate) Median(key meter.Key) float64 { return a.source(key).Median() }

// Percentile returns the value at quantile q (0-100) for key.
func (a aggregate) Percentile(key meter.Key, q float64) (float64, error) {
	return a.source(key).Percentile(q)
}

// container holds the ordered, uniquely named children and the failures of
// an internal node.
type container[C node] struct {
	name     string
	children []C
	index    map[string]C
	failures []Failure
	frozen   bool
}

func newContainer[C node](name string) container[C] {
	return container[C]{name: name, index: make(map[string]C)}
}

// Name returns the node name.
func (c *container[C]) Name() string { return c.name }

// Children returns the children in insertion order.
func (c *container[C]) Children() []C {
	out := make([]C, len(c.children))
	copy(out, c.children)
	return out
}

// Child returns the child called name.
func (c *container[C]) Child(name string) (C, bool) {
	child, ok := c.index[name]
	return child, ok
}

// AppendChild adds child. Names are unique within a node; appending a second
// child with the same name panics.
func (c *container[C]) AppendChild(child C) {
	if c.frozen {
		panicFrozen(c.name)
	}
	if _, dup := c.index[child.Name()]; dup {
		panic(fmt.Sprintf("result: duplicate child %q in %q", child.Name(), c.name))
	}
	c.children = append(c.children, child)
	c.index[child.Name()] = child
}

// AddFailure records f on this node.
func (c *container[C]) AddFailure(f Failure) {
	if c.frozen {
		panicFrozen(c.name)
	}
	c.failures = append(c.failures, f)
}

// Failures returns the failures recorded on this node followed by those of
// its descendants, each in recording order.
func (c *container[C]) Failures() []Failure {
	return c.collectFailures(nil)
}

// Meters returns the meters with samples below this node, in first-seen
// order.
func (c *container[C]) Meters() []meter.Key {
	return c.keys(make(map[meter.Key]bool), nil)
}

// Frozen reports whether the node is read-only.
func (c *container[C]) Frozen() bool { return c.frozen }

func (c *container[C]) samples(key meter.Key) Samples {
	return c.collect(key, nil)
}

func (c *container[C]) collect(key meter.Key, dst Samples) Samples {
	for _, child := range c.children {
		dst = child.collect(key, dst)
	}
	return dst
}

func (c *container[C]) keys(seen map[meter.Key]bool, dst []meter.Key) []meter.Key {
	for _, child := range c.children {
		dst = child.keys(seen, dst)
	}
	return dst
}

func (c *container[C]) collectFailures(dst []Failure) []Failure {
	dst = append(dst, c.failures...)
	for _, child := range c.children {
		dst = child.collectFailures(dst)
	}
	return dst
}

func (c *container[C]) freeze() {
	c.frozen = true
	for _, child := range c.children {
		child.freeze()
	}
}

// BenchmarkResult is the root of a result tree.
type BenchmarkResult struct {
	container[*ClassResult]
	aggregate
}

// NewBenchmarkResult creates an empty suite node.
func NewBenchmarkResult(name string) *BenchmarkResult {
	r := &BenchmarkResult{container: newContainer[*ClassResult](name)}
	r.aggregate = aggregate{source: r.samples}
	return r
}

// Class returns the class node called name, creating it if needed.
func (r *BenchmarkResult) Class(name string) *ClassResult {
	if c, ok := r.Child(name); ok {
		return c
	}
	c := NewClassResult(name)
	r.AppendChild(c)
	return c
}

// Freeze makes the whole tree read-only.
func (r *BenchmarkResult) Freeze() { r.freeze() }

// Find returns the node called target: the suite for "", a class by name, or
// a method by its full name.
func (r *BenchmarkResult) Find(target string) (Node, bool) {
	if target == "" || target == r.Name() {
		return r, true
	}
	for _, c := range r.children {
		if c.Name() == target {
			return c, true
		}
		if m, ok := c.Child(target); ok {
			return m, true
		}
	}
	return nil, false
}

// ClassResult groups the methods of one class.
type ClassResult struct {
	container[*MethodResult]
	aggregate
}

// NewClassResult creates an empty class node.
func NewClassResult(name string) *ClassResult {
	c := &ClassResult{container: newContainer[*MethodResult](name)}
	c.aggregate = aggregate{source: c.samples}
	return c
}

// Method returns the method node called name, creating it if needed.
func (c *ClassResult) Method(name string) *MethodResult {
	if m, ok := c.Child(name); ok {
		return m
	}
	m := NewMethodResult(name)
	c.AppendChild(m)
	return m
}

// MethodResult holds one leaf per meter for a single operation.
type MethodResult struct {
	container[*SingleResult]
	aggregate
}

// NewMethodResult creates an empty method node.
func NewMethodResult(name string) *MethodResult {
	m := &MethodResult{container: newContainer[*SingleResult](name)}
	m.aggregate = aggregate{source: m.samples}
	return m
}

// Append records one sample for key, creating the leaf if needed.
func (m *MethodResult) Append(sample float64, key meter.Key) {
	m.Single(key).Append(sample)
}

// Single returns the leaf for key, creating it if needed. Leaves are matched
// on the full key; a new leaf whose "name[unit]" is already taken by a
// sibling is named key.Qualified() instead.
func (m *MethodResult) Single(key meter.Key) *SingleResult {
	for _, s := range m.children {
		if s.meter == key {
			return s
		}
	}
	s := NewSingleResult(key)
	if _, taken := m.Child(s.name); taken {
		s.name = key.Qualified()
	}
	m.AppendChild(s)
	return s
}

// SingleResult is the ordered sample list of one (method, meter) pair.
type SingleResult struct {
	aggregate
	name   string
	meter  meter.Key
	values Samples
	frozen bool
}

// NewSingleResult creates an empty leaf for key.
func NewSingleResult(key meter.Key) *SingleResult {
	s := &SingleResult{name: key.String(), meter: key}
	s.aggregate = aggregate{source: func(k meter.Key) Samples {
		if k != s.meter {
			return nil
		}
		return s.Values()
	}}
	return s
}

// Name renders the meter as "name[unit]", or "name[unit](description)" when
// a sibling leaf already uses the short form.
func (s *SingleResult) Name() string { return s.name }

// Meter returns the leaf's meter.
func (s *SingleResult) Meter() meter.Key { return s.meter }

// Meters returns the leaf's meter when it holds samples.
func (s *SingleResult) Meters() []meter.Key {
	return s.keys(make(map[meter.Key]bool), nil)
}

// Append records one sample.
func (s *SingleResult) Append(sample float64) {
	if s.frozen {
		panicFrozen(s.Name())
	}
	s.values = append(s.values, sample)
}

// Values returns a copy of the samples in recording order.
func (s *SingleResult) Values() Samples {
	out := make(Samples, len(s.values))
	copy(out, s.values)
	return out
}

// Failures returns nil; failures are recorded on method and class nodes.
func (s *SingleResult) Failures() []Failure { return nil }

// Frozen reports whether the leaf is read-only.
func (s *SingleResult) Frozen() bool { return s.frozen }

func (s *SingleResult) collect(key meter.Key, dst Samples) Samples {
	if key != s.meter {
		return dst
	}
	return append(dst, s.values...)
}

func (s *SingleResult) keys(seen map[meter.Key]bool, dst []meter.Key) []meter.Key {
	if len(s.values) == 0 || seen[s.meter] {
		return dst
	}
	seen[s.meter] = true
	return append(dst, s.meter)
}

func (s *SingleResult) collectFailures(dst []Failure) []Failure { return dst }

func (s *SingleResult) freeze() { s.frozen = true }
