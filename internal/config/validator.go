package config

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/wesleyorama2/perfkit/internal/arrangement"
	"github.com/wesleyorama2/perfkit/internal/meter"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Stats usable on the left of a threshold expression.
var thresholdStats = []string{
	"min", "max", "avg", "med", "sum", "count",
	"stddev", "conf95", "conf99",
	"p50", "p90", "p95", "p99",
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>=!]+)\s*(.+)$`)

// IsValidStat returns true if stat may be used in a threshold.
func IsValidStat(stat string) bool {
	for _, s := range thresholdStats {
		if s == stat {
			return true
		}
	}
	return false
}

// SupportedStats returns the threshold statistics.
func SupportedStats() []string {
	out := make([]string, len(thresholdStats))
	copy(out, thresholdStats)
	return out
}

// ParseThresholdExpr parses an expression like "p95 < 250".
func ParseThresholdExpr(expr string) (stat, op string, value float64, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", "", 0, fmt.Errorf("threshold expression cannot be empty")
	}

	matches := thresholdPattern.FindStringSubmatch(expr)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid expression format: %s", expr)
	}
	stat, op = matches[1], matches[2]

	if !IsValidStat(stat) {
		return "", "", 0, fmt.Errorf("unknown statistic %q (valid: %s)", stat, strings.Join(thresholdStats, ", "))
	}
	switch op {
	case "<", "<=", ">", ">=", "==", "!=":
	default:
		return "", "", 0, fmt.Errorf("invalid operator %q (valid: <, <=, >, >=, ==, !=)", op)
	}

	value, err = strconv.ParseFloat(strings.TrimSpace(matches[3]), 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid threshold value %q: not a number", strings.TrimSpace(matches[3]))
	}
	return stat, op, value, nil
}

// Validate validates the entire benchmark configuration.
//
// Returns nil if valid, or a ValidationErrors containing all validation errors.
func (c *BenchConfig) Validate() error {
	errs := &ValidationErrors{}

	if c.Runs < 0 {
		errs.Add("runs", "must be non-negative")
	}

	if c.Arrangement != "" && !arrangement.IsValidKind(c.Arrangement) {
		errs.Add("arrangement", fmt.Sprintf("invalid arrangement '%s' (valid: %s)", c.Arrangement, kindList()))
	}

	if c.GCProbability < 0 || c.GCProbability > 1 {
		errs.Add("gcProbability", "must be between 0 and 1")
	}

	validateMeters(c.Meters, errs)
	validatePatterns("include", c.Include, errs)
	validatePatterns("exclude", c.Exclude, errs)
	validateThresholds(c.Thresholds, errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func kindList() string {
	kinds := arrangement.SupportedKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// validateMeters checks every meter can be built and that no two resolve
// to the same meter identity.
func validateMeters(meters []MeterConfig, errs *ValidationErrors) {
	seen := make(map[meter.Key]int)
	for i, mc := range meters {
		field := fmt.Sprintf("meters[%d]", i)

		if !meter.IsValidType(mc.Type) {
			errs.Add(field+".type", fmt.Sprintf("invalid meter type '%s' (valid: time, memory, allocs, count)", mc.Type))
			continue
		}
		if meter.Type(mc.Type) == meter.TypeCount && mc.Name == "" {
			errs.Add(field+".name", "is required for count meters")
			continue
		}

		m, err := meter.New(meter.Type(mc.Type), mc.Unit, mc.Name)
		if err != nil {
			errs.Add(field+".unit", err.Error())
			continue
		}
		key := meter.KeyOf(m)
		if prev, dup := seen[key]; dup {
			errs.Add(field, fmt.Sprintf("duplicates meters[%d] (%s)", prev, key))
			continue
		}
		seen[key] = i
	}
}

func validatePatterns(field string, patterns []string, errs *ValidationErrors) {
	for i, p := range patterns {
		if p == "" {
			errs.Add(fmt.Sprintf("%s[%d]", field, i), "pattern cannot be empty")
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			errs.Add(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("invalid pattern '%s': %v", p, err))
		}
	}
}

func validateThresholds(thresholds []ThresholdConfig, errs *ValidationErrors) {
	for i, t := range thresholds {
		if _, _, _, err := ParseThresholdExpr(t.Expr); err != nil {
			errs.Add(fmt.Sprintf("thresholds[%d].expr", i), err.Error())
		}
	}
}
