package hexgrid

import (
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBuckets matches the five-step sequential palette.
const DefaultBuckets = 5

// ComputeThresholds derives color-bucket breakpoints from a value
// distribution. Breakpoints come back strictly increasing; a zero-variance
// distribution collapses to a single all-encompassing bucket (empty
// breakpoints) instead of failing.
func ComputeThresholds(values []float64, buckets int, method ThresholdMethod, metric Metric) (ThresholdData, error) {
	td := ThresholdData{Method: method, Metric: metric}
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	if len(values) == 0 || buckets == 1 {
		return td, nil
	}

	minV, maxV := minMax(values)
	if maxV == minV && len(values) > 1 {
		// All-equal fallback: one bucket covering the whole range.
		return td, nil
	}

	var (
		raw []float64
		err error
	)
	switch method {
	case ThresholdPercentile:
		raw, err = percentileBreakpoints(values, buckets)
	case ThresholdQuantile:
		raw = quantileBreakpoints(values, buckets)
	case ThresholdEqual:
		raw = equalBreakpoints(minV, maxV, buckets)
	case ThresholdStdDev:
		raw, err = stddevBreakpoints(values, buckets)
	case ThresholdAdaptive:
		raw = adaptiveBreakpoints(values, buckets)
	default:
		return td, fmt.Errorf("unknown threshold method: %q", method)
	}
	if err != nil {
		return td, err
	}

	td.Breakpoints = strictlyIncreasing(raw)
	return td, nil
}

// percentileBreakpoints places breakpoints at the 100*i/buckets
// percentiles.
func percentileBreakpoints(values []float64, buckets int) ([]float64, error) {
	out := make([]float64, 0, buckets-1)
	for i := 1; i < buckets; i++ {
		p := 100 * float64(i) / float64(buckets)
		v, err := mstats.Percentile(values, p)
		if err != nil {
			return nil, fmt.Errorf("percentile %.1f: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// quantileBreakpoints is the quantile-function twin of
// percentileBreakpoints, computed with gonum's empirical quantile. The two
// differ only in interpolation and are documented separately for API
// clarity.
func quantileBreakpoints(values []float64, buckets int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := make([]float64, 0, buckets-1)
	for i := 1; i < buckets; i++ {
		p := float64(i) / float64(buckets)
		out = append(out, stat.Quantile(p, stat.Empirical, sorted, nil))
	}
	return out
}

// equalBreakpoints divides [min, max] into equal-width intervals.
func equalBreakpoints(minV, maxV float64, buckets int) []float64 {
	width := (maxV - minV) / float64(buckets)
	out := make([]float64, 0, buckets-1)
	for i := 1; i < buckets; i++ {
		out = append(out, minV+width*float64(i))
	}
	return out
}

// stddevBreakpoints places breakpoints at mean + k*std for the symmetric
// set of k induced by the bucket count (k = i - buckets/2 for i=1..n-1;
// five buckets give -1.5s, -0.5s, +0.5s, +1.5s).
func stddevBreakpoints(values []float64, buckets int) ([]float64, error) {
	mean, err := mstats.Mean(values)
	if err != nil {
		return nil, err
	}
	std, err := mstats.StandardDeviation(values)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, buckets-1)
	for i := 1; i < buckets; i++ {
		k := float64(i) - float64(buckets)/2
		out = append(out, mean+k*std)
	}
	return out, nil
}

// adaptiveBreakpoints greedily balances point counts per bucket: walk the
// sorted values filling each bucket to its fair share, placing breakpoints
// at the midpoint between the last value taken and the next one. Heuristic
// only; ties can still leave buckets uneven.
func adaptiveBreakpoints(values []float64, buckets int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	out := make([]float64, 0, buckets-1)
	taken := 0
	for b := 1; b < buckets; b++ {
		// Fair cumulative share for buckets 1..b.
		target := (n*b + buckets/2) / buckets
		if target <= taken {
			target = taken + 1
		}
		if target >= n {
			break
		}
		// Advance past ties so a breakpoint never splits equal values.
		for target < n && sorted[target] == sorted[target-1] {
			target++
		}
		if target >= n {
			break
		}
		out = append(out, (sorted[target-1]+sorted[target])/2)
		taken = target
	}
	return out
}

// strictlyIncreasing sorts and deduplicates breakpoints, enforcing the
// ThresholdData invariant.
func strictlyIncreasing(raw []float64) []float64 {
	if len(raw) == 0 {
		return nil
	}
	sorted := append([]float64(nil), raw...)
	sort.Float64s(sorted)

	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v > out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func minMax(values []float64) (minV, maxV float64) {
	minV, maxV = values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
