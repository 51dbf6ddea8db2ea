package result

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Confidence interval z-values.
const (
	Z95 = 1.96
	Z99 = 2.576
)

// Percentile histogram settings. Samples are recorded in thousandths of their
// unit with 3 significant figures.
const (
	percentileScale   = 1000
	percentileSigFigs = 3
	percentileMax     = int64(1) << 50
)

// ErrOverflow is wrapped by every OverflowError.
var ErrOverflow = errors.New("statistic overflow")

// OverflowError reports a statistic whose accumulation left the finite
// float64 range (about ±1.8e308). Samples are float64, so integer-valued
// sums past MaxInt64 lose precision without reporting an overflow.
type OverflowError struct {
	Statistic string
	Count     int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s over %d samples overflows", e.Statistic, e.Count)
}

// Unwrap returns ErrOverflow.
func (e *OverflowError) Unwrap() error { return ErrOverflow }

// Samples is the multiset of values recorded for one meter.
type Samples []float64

// Count returns the number of samples.
func (s Samples) Count() int { return len(s) }

// Sum returns the total of all samples.
func (s Samples) Sum() (float64, error) {
	var sum float64
	for _, v := range s {
		sum += v
	}
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return 0, &OverflowError{Statistic: "sum", Count: len(s)}
	}
	return sum, nil
}

// SquareSum returns the total of all squared samples.
func (s Samples) SquareSum() (float64, error) {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return 0, &OverflowError{Statistic: "square sum", Count: len(s)}
	}
	return sum, nil
}

// Mean returns Sum / Count, or 0 for an empty set.
func (s Samples) Mean() (float64, error) {
	if len(s) == 0 {
		return 0, nil
	}
	sum, err := s.Sum()
	if err != nil {
		return 0, &OverflowError{Statistic: "mean", Count: len(s)}
	}
	return sum / float64(len(s)), nil
}

// Avg is an alias of Mean.
func (s Samples) Avg() (float64, error) { return s.Mean() }

// Variance returns the population variance SquareSum/Count - Mean².
func (s Samples) Variance() (float64, error) {
	if len(s) == 0 {
		return 0, nil
	}
	squares, err := s.SquareSum()
	if err != nil {
		return 0, &OverflowError{Statistic: "variance", Count: len(s)}
	}
	mean, err := s.Mean()
	if err != nil {
		return 0, &OverflowError{Statistic: "variance", Count: len(s)}
	}
	variance := squares/float64(len(s)) - mean*mean
	if variance < 0 {
		// Rounding on near-constant samples.
		variance = 0
	}
	return variance, nil
}

// StandardDeviation returns the square root of Variance.
func (s Samples) StandardDeviation() (float64, error) {
	variance, err := s.Variance()
	if err != nil {
		return 0, &OverflowError{Statistic: "standard deviation", Count: len(s)}
	}
	return math.Sqrt(variance), nil
}

// Confidence95 returns the 95% confidence half-width of the mean.
func (s Samples) Confidence95() (float64, error) {
	return s.confidence(Z95, "confidence95")
}

// Confidence99 returns the 99% confidence half-width of the mean.
func (s Samples) Confidence99() (float64, error) {
	return s.confidence(Z99, "confidence99")
}

func (s Samples) confidence(z float64, name string) (float64, error) {
	if len(s) == 0 {
		return 0, nil
	}
	sd, err := s.StandardDeviation()
	if err != nil {
		return 0, &OverflowError{Statistic: name, Count: len(s)}
	}
	return z * sd / math.Sqrt(float64(len(s))), nil
}

// Min returns the smallest sample, or 0 for an empty set.
func (s Samples) Min() float64 {
	if len(s) == 0 {
		return 0
	}
	lo := s[0]
	for _, v := range s[1:] {
		if v < lo {
			lo = v
		}
	}
	return lo
}

// Max returns the largest sample, or 0 for an empty set.
func (s Samples) Max() float64 {
	if len(s) == 0 {
		return 0
	}
	hi := s[0]
	for _, v := range s[1:] {
		if v > hi {
			hi = v
		}
	}
	return hi
}

// Median returns the middle sample. For an even count it is the mean of the
// two centre samples, computed in extended precision so it cannot overflow.
// It returns 0 for an empty set.
func (s Samples) Median() float64 {
	if len(s) == 0 {
		return 0
	}
	sorted := s.sorted()
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	a, b := sorted[mid-1], sorted[mid]
	if math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsNaN(a) || math.IsNaN(b) {
		return a/2 + b/2
	}
	lo := new(big.Float).SetFloat64(a)
	hi := new(big.Float).SetFloat64(b)
	m, _ := lo.Add(lo, hi).Quo(lo, big.NewFloat(2)).Float64()
	return m
}

// Percentile returns the value at quantile q (0-100) using an HDR histogram.
// Negative samples are recorded as 0. It returns 0 for an empty set and an
// OverflowError when a sample is beyond the histogram's range.
func (s Samples) Percentile(q float64) (float64, error) {
	if len(s) == 0 {
		return 0, nil
	}
	top := s.Max()
	if math.IsInf(top, 0) || math.IsNaN(top) || top*percentileScale >= float64(percentileMax) {
		return 0, &OverflowError{Statistic: fmt.Sprintf("p%g", q), Count: len(s)}
	}

	highest := int64(math.Ceil(top*percentileScale)) + 1
	if highest < 2 {
		highest = 2
	}
	hist := hdrhistogram.New(1, highest, percentileSigFigs)
	for _, v := range s {
		scaled := int64(math.Round(v * percentileScale))
		if scaled < 0 {
			scaled = 0
		}
		if err := hist.RecordValue(scaled); err != nil {
			return 0, fmt.Errorf("record sample %g: %w", v, err)
		}
	}
	return float64(hist.ValueAtQuantile(q)) / percentileScale, nil
}

func (s Samples) sorted() Samples {
	out := make(Samples, len(s))
	copy(out, s)
	sort.Float64s(out)
	return out
}
