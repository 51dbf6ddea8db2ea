package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wesleyorama2/perfkit/internal/config"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// ThresholdResult contains the result of a threshold evaluation.
type ThresholdResult struct {
	Target     string `json:"target"`
	Meter      string `json:"meter"`
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Value      string `json:"value,omitempty"`
	Message    string `json:"message,omitempty"`
}

// evaluateThresholds evaluates all configured thresholds against the frozen
// tree.
func evaluateThresholds(thresholds []config.ThresholdConfig, tree *result.BenchmarkResult, meters []meter.Key) []ThresholdResult {
	if len(thresholds) == 0 {
		return nil
	}
	labels := meter.Labels(meters)
	results := make([]ThresholdResult, 0, len(thresholds))
	for _, t := range thresholds {
		results = append(results, evaluateThreshold(t, tree, meters, labels))
	}
	return results
}

func evaluateThreshold(t config.ThresholdConfig, tree *result.BenchmarkResult, meters []meter.Key, labels map[meter.Key]string) ThresholdResult {
	res := ThresholdResult{
		Target:     t.Target,
		Meter:      t.Meter,
		Expression: t.Expr,
	}

	stat, op, thresholdValue, err := config.ParseThresholdExpr(t.Expr)
	if err != nil {
		res.Message = fmt.Sprintf("failed to parse expression: %v", err)
		return res
	}

	key, ok := resolveMeter(t.Meter, meters)
	if !ok {
		res.Message = fmt.Sprintf("unknown meter: %s", t.Meter)
		return res
	}
	res.Meter = labels[key]

	node, ok := tree.Find(t.Target)
	if !ok {
		res.Message = fmt.Sprintf("unknown target: %s", t.Target)
		return res
	}

	samples := node.Samples(key)
	if samples.Count() == 0 && stat != "count" {
		res.Message = fmt.Sprintf("no samples for %s on %s", res.Meter, node.Name())
		return res
	}

	actualValue, err := Statistic(samples, stat)
	if err != nil {
		var overflow *result.OverflowError
		if errors.As(err, &overflow) {
			res.Message = fmt.Sprintf("%s overflowed over %d samples", stat, overflow.Count)
		} else {
			res.Message = fmt.Sprintf("failed to compute %s: %v", stat, err)
		}
		return res
	}

	res.Value = strconv.FormatFloat(actualValue, 'g', 6, 64)
	res.Passed = compareValues(actualValue, op, thresholdValue)

	if !res.Passed {
		res.Message = fmt.Sprintf("%s is %s, threshold: %s %g", stat, res.Value, op, thresholdValue)
	}

	return res
}

// resolveMeter finds the meter called name, matching "name[unit](description)",
// "name[unit]" or the bare name. An empty name selects the first meter.
func resolveMeter(name string, meters []meter.Key) (meter.Key, bool) {
	if len(meters) == 0 {
		return meter.Key{}, false
	}
	if name == "" {
		return meters[0], true
	}
	for _, k := range meters {
		if k.Qualified() == name {
			return k, true
		}
	}
	for _, k := range meters {
		if k.String() == name {
			return k, true
		}
	}
	for _, k := range meters {
		if k.Name == name {
			return k, true
		}
	}
	return meter.Key{}, false
}

// Statistic computes stat over samples. Stats are those accepted by
// config.ParseThresholdExpr.
func Statistic(samples result.Samples, stat string) (float64, error) {
	switch stat {
	case "min":
		return samples.Min(), nil
	case "max":
		return samples.Max(), nil
	case "avg":
		return samples.Mean()
	case "med":
		return samples.Median(), nil
	case "sum":
		return samples.Sum()
	case "count":
		return float64(samples.Count()), nil
	case "stddev":
		return samples.StandardDeviation()
	case "conf95":
		return samples.Confidence95()
	case "conf99":
		return samples.Confidence99()
	case "p50":
		return samples.Percentile(50)
	case "p90":
		return samples.Percentile(90)
	case "p95":
		return samples.Percentile(95)
	case "p99":
		return samples.Percentile(99)
	default:
		return 0, fmt.Errorf("unknown statistic: %s", stat)
	}
}

// compareValues compares two values using the given operator.
func compareValues(actual float64, op string, threshold float64) bool {
	switch op {
	case "<":
		return actual < threshold
	case "<=":
		return actual <= threshold
	case ">":
		return actual > threshold
	case ">=":
		return actual >= threshold
	case "==", "=":
		return actual == threshold
	case "!=", "<>":
		return actual != threshold
	default:
		return false
	}
}
