// Package config provides configuration parsing and validation for
// benchmark runs.
package config

import (
	"fmt"

	"github.com/wesleyorama2/perfkit/internal/meter"
)

// BenchConfig is the root configuration of a benchmark run.
//
// Example YAML:
//
//	name: "collections"
//	runs: 20
//	arrangement: interleaved
//	gcProbability: 0.1
//	meters:
//	  - type: time
//	    unit: us
//	  - type: allocs
//	include:
//	  - "Sort.*"
//	thresholds:
//	  - target: Sort.Ints
//	    meter: time
//	    expr: "p95 < 250"
type BenchConfig struct {
	// Name of the run (for reporting)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description of the run (optional)
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Runs is the default run count for operations that declare none
	Runs int `json:"runs,omitempty" yaml:"runs,omitempty"`

	// Arrangement is the ordering strategy: none, shuffle or interleaved
	Arrangement string `json:"arrangement,omitempty" yaml:"arrangement,omitempty"`

	// GCProbability is the fraction of runs preceded by a garbage collection
	GCProbability float64 `json:"gcProbability,omitempty" yaml:"gcProbability,omitempty"`

	// Meters are sampled around every operation call
	Meters []MeterConfig `json:"meters,omitempty" yaml:"meters,omitempty"`

	// Include and Exclude are glob patterns over "Class.Method"
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Thresholds define pass/fail criteria for the run
	Thresholds []ThresholdConfig `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// MeterConfig selects one meter.
type MeterConfig struct {
	// Type is time, memory, allocs or count
	Type string `json:"type" yaml:"type"`

	// Unit is the resolution; its meaning depends on Type
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Name overrides the default meter name; required for count meters
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ThresholdConfig is one pass/fail criterion.
type ThresholdConfig struct {
	// Target is "" for the whole run, a class name, or "Class.Method"
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Meter names the meter, either "name" or "name[unit]"; empty selects
	// the first meter
	Meter string `json:"meter,omitempty" yaml:"meter,omitempty"`

	// Expr is "<stat> <op> <number>", e.g. "p95 < 250"
	Expr string `json:"expr" yaml:"expr"`
}

// String renders the threshold for reports.
func (t ThresholdConfig) String() string {
	target := t.Target
	if target == "" {
		target = "*"
	}
	if t.Meter == "" {
		return fmt.Sprintf("%s: %s", target, t.Expr)
	}
	return fmt.Sprintf("%s %s: %s", target, t.Meter, t.Expr)
}

// BuildMeters creates the configured meters in declaration order.
func (c *BenchConfig) BuildMeters() ([]meter.Meter, error) {
	meters := make([]meter.Meter, 0, len(c.Meters))
	for i, mc := range c.Meters {
		m, err := meter.New(meter.Type(mc.Type), mc.Unit, mc.Name)
		if err != nil {
			return nil, fmt.Errorf("meters[%d]: %w", i, err)
		}
		meters = append(meters, m)
	}
	return meters, nil
}
