package output

import (
	"math"
	"time"

	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// Report is the exported form of a run. It is what the json and yaml
// formats serialize and what `perfkit query` reads back.
type Report struct {
	ID              string                   `json:"id" yaml:"id"`
	Name            string                   `json:"name" yaml:"name"`
	Description     string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Arrangement     string                   `json:"arrangement" yaml:"arrangement"`
	Start           time.Time                `json:"start" yaml:"start"`
	End             time.Time                `json:"end" yaml:"end"`
	DurationSeconds float64                  `json:"durationSeconds" yaml:"durationSeconds"`
	Elements        int                      `json:"elements" yaml:"elements"`
	Collections     int                      `json:"collections" yaml:"collections"`
	Passed          bool                     `json:"passed" yaml:"passed"`
	Meters          []string                 `json:"meters" yaml:"meters"`
	Stats           map[string]Stats         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Classes         []ClassReport            `json:"classes" yaml:"classes"`
	Thresholds      []engine.ThresholdResult `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Failures        []FailureReport          `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// ClassReport is one class of a Report. Failures holds the failures
// recorded on the class itself; method failures are listed on their method.
type ClassReport struct {
	Name     string           `json:"name" yaml:"name"`
	Stats    map[string]Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Methods  []MethodReport   `json:"methods" yaml:"methods"`
	Failures []FailureReport  `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// MethodReport is one operation of a Report.
type MethodReport struct {
	Name     string           `json:"name" yaml:"name"`
	Stats    map[string]Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Failures []FailureReport  `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// FailureReport is a serializable result.Failure.
type FailureReport struct {
	Kind    string `json:"kind" yaml:"kind"`
	Class   string `json:"class" yaml:"class"`
	Method  string `json:"method,omitempty" yaml:"method,omitempty"`
	Role    string `json:"role" yaml:"role"`
	Hook    string `json:"hook,omitempty" yaml:"hook,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Stats summarizes the samples of one meter on one node. Statistics that
// overflow are reported as 0 and named in Overflow.
type Stats struct {
	Count    int      `json:"count" yaml:"count"`
	Sum      float64  `json:"sum" yaml:"sum"`
	Mean     float64  `json:"mean" yaml:"mean"`
	StdDev   float64  `json:"stddev" yaml:"stddev"`
	Conf95   float64  `json:"conf95" yaml:"conf95"`
	Conf99   float64  `json:"conf99" yaml:"conf99"`
	Min      float64  `json:"min" yaml:"min"`
	Median   float64  `json:"median" yaml:"median"`
	P90      float64  `json:"p90" yaml:"p90"`
	P95      float64  `json:"p95" yaml:"p95"`
	P99      float64  `json:"p99" yaml:"p99"`
	Max      float64  `json:"max" yaml:"max"`
	Overflow []string `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// ComputeStats summarizes samples.
func ComputeStats(samples result.Samples) Stats {
	s := Stats{Count: samples.Count()}
	fallible := []struct {
		name string
		dst  *float64
		fn   func() (float64, error)
	}{
		{"sum", &s.Sum, samples.Sum},
		{"mean", &s.Mean, samples.Mean},
		{"stddev", &s.StdDev, samples.StandardDeviation},
		{"conf95", &s.Conf95, samples.Confidence95},
		{"conf99", &s.Conf99, samples.Confidence99},
		{"p90", &s.P90, func() (float64, error) { return samples.Percentile(90) }},
		{"p95", &s.P95, func() (float64, error) { return samples.Percentile(95) }},
		{"p99", &s.P99, func() (float64, error) { return samples.Percentile(99) }},
	}
	for _, f := range fallible {
		v, err := f.fn()
		if err != nil || !finite(v) {
			s.Overflow = append(s.Overflow, f.name)
			continue
		}
		*f.dst = v
	}

	plain := []struct {
		name string
		dst  *float64
		v    float64
	}{
		{"min", &s.Min, samples.Min()},
		{"median", &s.Median, samples.Median()},
		{"max", &s.Max, samples.Max()},
	}
	for _, p := range plain {
		if !finite(p.v) {
			s.Overflow = append(s.Overflow, p.name)
			continue
		}
		*p.dst = p.v
	}
	return s
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// NewReport builds the exported form of res.
func NewReport(res *engine.Result) *Report {
	r := &Report{
		ID:              res.ID,
		Name:            res.Name,
		Description:     res.Description,
		Arrangement:     res.Arrangement,
		Start:           res.Start,
		End:             res.End,
		DurationSeconds: res.Duration.Seconds(),
		Elements:        res.Elements,
		Collections:     res.Collections,
		Passed:          res.Passed,
		Classes:         []ClassReport{},
		Thresholds:      res.Thresholds,
	}
	labels := meter.Labels(res.Meters)
	for _, k := range res.Meters {
		r.Meters = append(r.Meters, labels[k])
	}
	if res.Tree != nil {
		result.Walk(res.Tree, &reportBuilder{report: r, res: res, labels: labels})
	}
	return r
}

// reportBuilder fills a Report while walking the result tree.
type reportBuilder struct {
	result.BaseVisitor
	report *Report
	res    *engine.Result
	labels map[meter.Key]string
}

func (b *reportBuilder) stats(node result.Node) map[string]Stats {
	out := make(map[string]Stats, len(b.res.Meters))
	for _, k := range b.res.Meters {
		samples := node.Samples(k)
		if samples.Count() == 0 {
			continue
		}
		out[b.labels[k]] = ComputeStats(samples)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (b *reportBuilder) VisitSuite(s *result.BenchmarkResult) {
	b.report.Stats = b.stats(s)
	b.report.Failures = failureReports(s.Failures())
}

func (b *reportBuilder) VisitClass(c *result.ClassResult) {
	// own failures come before those of the methods
	all := c.Failures()
	n := len(all)
	for _, m := range c.Children() {
		n -= len(m.Failures())
	}
	own := all[:n]
	b.report.Classes = append(b.report.Classes, ClassReport{
		Name:     c.Name(),
		Stats:    b.stats(c),
		Methods:  []MethodReport{},
		Failures: failureReports(own),
	})
}

func (b *reportBuilder) VisitMethod(m *result.MethodResult) {
	class := &b.report.Classes[len(b.report.Classes)-1]
	class.Methods = append(class.Methods, MethodReport{
		Name:     m.Name(),
		Stats:    b.stats(m),
		Failures: failureReports(m.Failures()),
	})
}

func failureReports(failures []result.Failure) []FailureReport {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailureReport, len(failures))
	for i, f := range failures {
		out[i] = FailureReport{
			Kind:    f.Kind.String(),
			Class:   f.Class,
			Method:  f.Method,
			Role:    f.Role.String(),
			Hook:    f.Hook,
			Message: f.Message,
		}
	}
	return out
}
