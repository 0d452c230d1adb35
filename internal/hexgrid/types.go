// Package hexgrid implements the columnar hexagon grid pipeline: typed
// column records, validation, hex-address coordinate transforms, threshold
// and metric computation, and side/region organization of column sets.
package hexgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is an anatomical subdivision of the visual neuropil holding a
// columnar grid.
type Region string

const (
	RegionME  Region = "ME"
	RegionLO  Region = "LO"
	RegionLOP Region = "LOP"
)

// Regions lists the supported regions in display order.
var Regions = []Region{RegionME, RegionLO, RegionLOP}

// LayerCounts gives the configured number of depth layers per region.
var LayerCounts = map[Region]int{
	RegionME:  10,
	RegionLO:  7,
	RegionLOP: 4,
}

// ParseRegion parses a region name.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := LayerCounts[r]; !ok {
		return "", fmt.Errorf("unknown region: %q", s)
	}
	return r, nil
}

// Side is the soma side of a neuron, or a combined left+right view.
type Side string

const (
	SideLeft     Side = "L"
	SideRight    Side = "R"
	SideCombined Side = "COMBINED"
)

// ParseSide parses a soma side. Combined is only valid in a
// ProcessingConfig, not on a column record.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideLeft:
		return SideLeft, nil
	case SideRight:
		return SideRight, nil
	case SideCombined:
		return SideCombined, nil
	}
	return "", fmt.Errorf("unknown side: %q", s)
}

// Metric selects the per-column scalar being visualized.
type Metric string

const (
	MetricSynapseDensity Metric = "synapse_density"
	MetricCellCount      Metric = "cell_count"
)

// ParseMetric parses a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricSynapseDensity:
		return MetricSynapseDensity, nil
	case MetricCellCount:
		return MetricCellCount, nil
	}
	return "", fmt.Errorf("unknown metric: %q", s)
}

// ThresholdMethod selects how color-bucket breakpoints are derived from a
// value distribution.
type ThresholdMethod string

const (
	ThresholdPercentile ThresholdMethod = "percentile"
	ThresholdQuantile   ThresholdMethod = "quantile"
	ThresholdEqual      ThresholdMethod = "equal"
	ThresholdStdDev     ThresholdMethod = "stddev"
	ThresholdAdaptive   ThresholdMethod = "adaptive"
)

// ParseThresholdMethod parses a threshold method name.
func ParseThresholdMethod(s string) (ThresholdMethod, error) {
	switch ThresholdMethod(strings.ToLower(strings.TrimSpace(s))) {
	case ThresholdPercentile:
		return ThresholdPercentile, nil
	case ThresholdQuantile:
		return ThresholdQuantile, nil
	case ThresholdEqual:
		return ThresholdEqual, nil
	case ThresholdStdDev:
		return ThresholdStdDev, nil
	case ThresholdAdaptive:
		return ThresholdAdaptive, nil
	}
	return "", fmt.Errorf("unknown threshold method: %q", s)
}

// MergeStrategy selects how colliding coordinates combine when merging two
// column sets. There is no default: callers must choose explicitly.
type MergeStrategy string

const (
	MergePriority MergeStrategy = "priority"
	MergeSum      MergeStrategy = "sum"
	MergeAverage  MergeStrategy = "average"
)

// ColumnStatus classifies a coordinate relative to a region footprint.
// Membership alone decides the status; the metric value never does.
type ColumnStatus string

const (
	StatusNotInRegion ColumnStatus = "not_in_region"
	StatusNoData      ColumnStatus = "no_data"
	StatusHasData     ColumnStatus = "has_data"
)

// NormalizationStrategy selects how a raw metric value maps into [0, 1].
// ZScore is the documented exception: its output is unbounded.
type NormalizationStrategy string

const (
	NormalizeMinMax         NormalizationStrategy = "minmax"
	NormalizeZScore         NormalizationStrategy = "zscore"
	NormalizePercentileRank NormalizationStrategy = "percentile_rank"
)

// ColumnCoordinate is a retinotopic address. The hex strings are canonical;
// the decimal fields are derived and must equal the base-16 parse of the
// strings.
type ColumnCoordinate struct {
	Hex1    string `json:"hex1"`
	Hex2    string `json:"hex2"`
	Hex1Dec int    `json:"hex1_dec"`
	Hex2Dec int    `json:"hex2_dec"`
}

// NewColumnCoordinate parses the two hex address components and derives
// their decimal forms.
func NewColumnCoordinate(hex1, hex2 string) (ColumnCoordinate, error) {
	d1, err := strconv.ParseInt(strings.TrimSpace(hex1), 16, 32)
	if err != nil {
		return ColumnCoordinate{}, fmt.Errorf("hex1 %q is not hexadecimal: %w", hex1, err)
	}
	d2, err := strconv.ParseInt(strings.TrimSpace(hex2), 16, 32)
	if err != nil {
		return ColumnCoordinate{}, fmt.Errorf("hex2 %q is not hexadecimal: %w", hex2, err)
	}
	return ColumnCoordinate{
		Hex1:    strings.TrimSpace(hex1),
		Hex2:    strings.TrimSpace(hex2),
		Hex1Dec: int(d1),
		Hex2Dec: int(d2),
	}, nil
}

// Key returns the decimal coordinate pair, used as a map key within a
// (region, side) group.
func (c ColumnCoordinate) Key() CoordKey {
	return CoordKey{Hex1Dec: c.Hex1Dec, Hex2Dec: c.Hex2Dec}
}

func (c ColumnCoordinate) String() string {
	return c.Hex1 + "," + c.Hex2
}

// CoordKey is a comparable decimal coordinate pair.
type CoordKey struct {
	Hex1Dec int `json:"hex1_dec"`
	Hex2Dec int `json:"hex2_dec"`
}

// LayerData holds the per-layer counts of a column. LayerIndex is 1-based.
// Value is the metric-specific scalar for the layer.
type LayerData struct {
	LayerIndex   int     `json:"layer_index"`
	SynapseCount int     `json:"synapse_count"`
	NeuronCount  int     `json:"neuron_count"`
	Value        float64 `json:"value"`
}

// ColumnData is one validated, immutable column record. Layers has exactly
// the region's configured layer count and the coordinate is unique within
// its (region, side) group.
type ColumnData struct {
	Coordinate  ColumnCoordinate `json:"coordinate"`
	Region      Region           `json:"region"`
	Side        Side             `json:"side"`
	Layers      []LayerData      `json:"layers"`
	NeuronCount int              `json:"neuron_count"`
	TotalPre    int              `json:"total_pre"`
	TotalPost   int              `json:"total_post"`
}

// ThresholdData holds color-bucket breakpoints. Breakpoints are strictly
// increasing; an empty slice means a single all-encompassing bucket. The
// same ThresholdData is shared across the two sides of a metric+region so
// their colors stay comparable.
type ThresholdData struct {
	Breakpoints []float64       `json:"breakpoints"`
	Method      ThresholdMethod `json:"method"`
	Metric      Metric          `json:"metric"`
}

// Bucket returns the bucket index a value falls into.
func (t ThresholdData) Bucket(v float64) int {
	for i, bp := range t.Breakpoints {
		if v < bp {
			return i
		}
	}
	return len(t.Breakpoints)
}

// Buckets returns the number of buckets the breakpoints induce.
func (t ThresholdData) Buckets() int { return len(t.Breakpoints) + 1 }

// MinMaxData holds per-region value extremes for cross-region
// normalization and legend labels.
type MinMaxData struct {
	MinPerRegion map[Region]float64 `json:"min_per_region"`
	MaxPerRegion map[Region]float64 `json:"max_per_region"`
}

// ProcessingConfig drives one pipeline run.
type ProcessingConfig struct {
	Metric           Metric          `json:"metric"`
	Side             Side            `json:"side"`
	ThresholdMethod  ThresholdMethod `json:"threshold_method"`
	ValidationStrict bool            `json:"validation_strict"`
	MergeStrategy    MergeStrategy   `json:"merge_strategy"`
	Buckets          int             `json:"buckets"`
}

// ProcessedColumn is an ephemeral hexagon primitive ready for rendering.
type ProcessedColumn struct {
	PixelX        float64      `json:"pixel_x"`
	PixelY        float64      `json:"pixel_y"`
	Status        ColumnStatus `json:"status"`
	Color         string       `json:"color"`
	Stroke        string       `json:"stroke,omitempty"`
	LayerColors   []string     `json:"layer_colors,omitempty"`
	Tooltip       string       `json:"tooltip"`
	TooltipLayers []string     `json:"tooltip_layers,omitempty"`
	Value         float64      `json:"value"`
	Coordinate    CoordKey     `json:"coordinate"`
}

// ValidationResult accumulates problems found while checking input.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IsValid reports whether no errors were recorded.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another result into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
