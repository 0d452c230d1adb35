package hexgrid

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// metricExtractors is the closed dispatch table for primary metric
// extraction. Adding a metric means adding an enum value and one entry
// here, not another string branch in the pipeline.
var metricExtractors = map[Metric]func(ColumnData) float64{
	MetricSynapseDensity: func(c ColumnData) float64 {
		neurons := c.NeuronCount
		if neurons < 1 {
			neurons = 1
		}
		return float64(c.TotalPre+c.TotalPost) / float64(neurons)
	},
	MetricCellCount: func(c ColumnData) float64 {
		return float64(c.NeuronCount)
	},
}

// PrimaryMetric extracts the per-column scalar for a metric. Unknown
// metrics yield 0.
func PrimaryMetric(col ColumnData, metric Metric) float64 {
	if extract, ok := metricExtractors[metric]; ok {
		return extract(col)
	}
	return 0
}

// LayerValues extracts the per-layer scalar series for a metric.
func LayerValues(col ColumnData, metric Metric) []float64 {
	out := make([]float64, len(col.Layers))
	for i, l := range col.Layers {
		switch metric {
		case MetricCellCount:
			out[i] = float64(l.NeuronCount)
		default:
			out[i] = float64(l.SynapseCount)
		}
	}
	return out
}

// Statistics summarizes a value distribution.
type Statistics struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// ComputeStatistics computes descriptive statistics for a value series.
// Empty input yields the zero Statistics.
func ComputeStatistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}

	mean, _ := mstats.Mean(values)
	median, _ := mstats.Median(values)
	std, _ := mstats.StandardDeviation(values)
	variance, _ := mstats.PopulationVariance(values)

	s := Statistics{Mean: mean, Median: median, Std: std, Variance: variance}
	if len(values) > 2 && std > 0 {
		s.Skewness = stat.Skew(values, nil)
		s.Kurtosis = stat.ExKurtosis(values, nil)
	}
	return s
}

// Normalizer maps raw metric values into [0, 1]. ZScore is the documented
// exception to the [0, 1] contract: its output is unbounded.
type Normalizer struct {
	min    float64
	max    float64
	mean   float64
	std    float64
	sorted []float64
}

// NewNormalizer captures the distribution once so every strategy,
// including percentile rank, can run on single values afterwards.
func NewNormalizer(values []float64) Normalizer {
	n := Normalizer{}
	if len(values) == 0 {
		return n
	}
	n.min, n.max = minMax(values)
	n.mean, _ = mstats.Mean(values)
	n.std, _ = mstats.StandardDeviation(values)
	n.sorted = append([]float64(nil), values...)
	sort.Float64s(n.sorted)
	return n
}

// Normalize maps one value under the chosen strategy.
func (n Normalizer) Normalize(v float64, strategy NormalizationStrategy) float64 {
	switch strategy {
	case NormalizeZScore:
		if n.std == 0 {
			return 0
		}
		return (v - n.mean) / n.std
	case NormalizePercentileRank:
		if len(n.sorted) == 0 {
			return 0
		}
		rank := sort.SearchFloat64s(n.sorted, math.Nextafter(v, math.Inf(1)))
		return float64(rank) / float64(len(n.sorted))
	default: // minmax
		if n.max == n.min {
			return 0
		}
		t := (v - n.min) / (n.max - n.min)
		return math.Min(1, math.Max(0, t))
	}
}

// ComputeMinMax records per-region extremes of the primary metric, used
// for cross-region normalization and legend labels.
func ComputeMinMax(groups map[Region][]ColumnData, metric Metric) MinMaxData {
	mm := MinMaxData{
		MinPerRegion: make(map[Region]float64, len(groups)),
		MaxPerRegion: make(map[Region]float64, len(groups)),
	}
	for region, cols := range groups {
		if len(cols) == 0 {
			continue
		}
		lo := PrimaryMetric(cols[0], metric)
		hi := lo
		for _, col := range cols[1:] {
			v := PrimaryMetric(col, metric)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		mm.MinPerRegion[region] = lo
		mm.MaxPerRegion[region] = hi
	}
	return mm
}
