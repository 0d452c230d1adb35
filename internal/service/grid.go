// Package service wires validation, organization, threshold computation,
// coloring and layout into the grid processing pipeline.
package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/pkg/colormap"
)

// GridServiceConfig contains grid service configuration.
type GridServiceConfig struct {
	HexSize       float64
	SpacingFactor float64
	Palette       colormap.SequentialPalette
}

// GridService is the data processor: the single entry point the report
// layer calls to turn raw rows into renderable hexagon grids.
type GridService struct {
	hexSize float64
	spacing float64
	palette colormap.SequentialPalette
}

// NewGridService creates a grid service, applying defaults for zero
// config fields.
func NewGridService(cfg GridServiceConfig) *GridService {
	if cfg.HexSize <= 0 {
		cfg.HexSize = 10
	}
	if cfg.SpacingFactor <= 0 {
		cfg.SpacingFactor = 1.1
	}
	if cfg.Palette.Len() == 0 {
		cfg.Palette = colormap.Reds
	}
	return &GridService{
		hexSize: cfg.HexSize,
		spacing: cfg.SpacingFactor,
		palette: cfg.Palette,
	}
}

// RegionGrid is the processed output for one region: positioned, colored
// hexagons plus the threshold and range data the legend needs.
type RegionGrid struct {
	Region     hexgrid.Region          `json:"region"`
	Side       hexgrid.Side            `json:"side"`
	Columns    []hexgrid.ProcessedColumn `json:"columns"`
	Thresholds hexgrid.ThresholdData   `json:"thresholds"`
	MinValue   float64                 `json:"min_value"`
	MaxValue   float64                 `json:"max_value"`
	Stats      hexgrid.Statistics      `json:"stats"`
}

// DataProcessingResult is the pipeline's only output contract. Process
// never fails with an error or panic; every failure mode lands in Errors
// or Warnings. Success is false only when nothing could be processed from
// a non-empty input.
type DataProcessingResult struct {
	Success          bool                      `json:"success"`
	ProcessedColumns []hexgrid.ProcessedColumn `json:"processed_columns"`
	Grids            []RegionGrid              `json:"grids"`
	MinMax           hexgrid.MinMaxData        `json:"min_max"`
	Warnings         []string                  `json:"warnings"`
	Errors           []string                  `json:"errors"`
}

// RegionColumnsMap enumerates every coordinate that exists anywhere in the
// dataset per region. Membership decides a column's status: absent means
// not_in_region, present without data means no_data.
type RegionColumnsMap = map[hexgrid.Region]map[hexgrid.CoordKey]struct{}

// Process runs the full pipeline: validate, organize by side and region,
// extract metric values, compute shared thresholds, classify, position and
// color every known coordinate, and build tooltip metadata.
func (s *GridService) Process(rows []hexgrid.Row, regionColumns RegionColumnsMap, cfg hexgrid.ProcessingConfig) DataProcessingResult {
	result := DataProcessingResult{}

	if cfg.Buckets < 1 {
		cfg.Buckets = hexgrid.DefaultBuckets
	}

	validator := hexgrid.Validator{Strict: cfg.ValidationStrict}

	if confRes := validator.ValidateConfig(cfg); !confRes.IsValid() {
		result.Errors = append(result.Errors, confRes.Errors...)
		return result
	}

	if len(rows) == 0 {
		result.Success = true
		result.Warnings = append(result.Warnings, "no data")
		result.ProcessedColumns = []hexgrid.ProcessedColumn{}
		return result
	}

	columns, valRes, err := validator.ValidateColumns(rows)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Warnings = append(result.Warnings, valRes.Warnings...)
	if !valRes.IsValid() {
		// Lenient mode: invalid rows degrade to warnings so the rest of
		// the unit still renders.
		result.Warnings = append(result.Warnings, valRes.Errors...)
	}
	if len(columns) == 0 {
		result.Errors = append(result.Errors, "no valid columns in input")
		return result
	}

	groups := s.organize(columns, cfg)
	if res := hexgrid.ValidateConsistency(groups); !res.IsValid() {
		result.Warnings = append(result.Warnings, res.Errors...)
	}

	// Thresholds are computed from the whole region's distribution, both
	// sides, so left and right grids of one metric share breakpoints and
	// stay color-comparable.
	allByRegion := hexgrid.OrganizeBySide(columns, hexgrid.SideCombined)
	result.MinMax = hexgrid.ComputeMinMax(allByRegion, cfg.Metric)

	regions := sortedRegions(groups, regionColumns)
	for _, region := range regions {
		grid, warnings := s.processRegion(region, groups[region], allByRegion[region], regionColumns[region], cfg)
		result.Warnings = append(result.Warnings, warnings...)
		result.Grids = append(result.Grids, grid)
		result.ProcessedColumns = append(result.ProcessedColumns, grid.Columns...)
	}

	result.Success = len(result.ProcessedColumns) > 0
	if !result.Success {
		result.Errors = append(result.Errors, "no columns could be processed")
	}
	return result
}

// organize groups the validated columns for the configured side, merging
// left and right when a combined view was requested.
func (s *GridService) organize(columns []hexgrid.ColumnData, cfg hexgrid.ProcessingConfig) map[hexgrid.Region][]hexgrid.ColumnData {
	if cfg.Side != hexgrid.SideCombined {
		return hexgrid.OrganizeBySide(columns, cfg.Side)
	}
	left := hexgrid.OrganizeBySide(columns, hexgrid.SideLeft)
	right := hexgrid.OrganizeBySide(columns, hexgrid.SideRight)
	return hexgrid.Merge(left, right, cfg.MergeStrategy)
}

func (s *GridService) processRegion(
	region hexgrid.Region,
	cols []hexgrid.ColumnData,
	regionAll []hexgrid.ColumnData,
	footprint map[hexgrid.CoordKey]struct{},
	cfg hexgrid.ProcessingConfig,
) (RegionGrid, []string) {
	var warnings []string

	grid := RegionGrid{Region: region, Side: cfg.Side}

	// Shared threshold source: every column of the region, both sides.
	thresholdSource := regionAll
	if len(thresholdSource) == 0 {
		thresholdSource = cols
	}
	values := make([]float64, len(thresholdSource))
	for i, col := range thresholdSource {
		values[i] = hexgrid.PrimaryMetric(col, cfg.Metric)
	}

	thresholds, err := hexgrid.ComputeThresholds(values, cfg.Buckets, cfg.ThresholdMethod, cfg.Metric)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v, using equal-width fallback", region, err))
		thresholds, _ = hexgrid.ComputeThresholds(values, cfg.Buckets, hexgrid.ThresholdEqual, cfg.Metric)
	}
	grid.Thresholds = thresholds
	grid.Stats = hexgrid.ComputeStatistics(values)
	if len(values) > 0 {
		grid.MinValue, grid.MaxValue = minMax(values)
	}

	layerThresholds := s.layerThresholds(thresholdSource, cfg)

	// Layout spans the footprint plus any data coordinate outside it, so
	// every hexagon lands inside the frame.
	frame := make(map[hexgrid.CoordKey]struct{}, len(footprint)+len(cols))
	for k := range footprint {
		frame[k] = struct{}{}
	}
	byCoord := make(map[hexgrid.CoordKey]hexgrid.ColumnData, len(cols))
	for _, col := range cols {
		key := col.Coordinate.Key()
		byCoord[key] = col
		frame[key] = struct{}{}
	}
	layout := hexgrid.NewLayout(frame, s.hexSize, s.spacing)

	side := cfg.Side
	keys := sortedKeys(frame)
	grid.Columns = make([]hexgrid.ProcessedColumn, 0, len(keys))
	for _, key := range keys {
		col, hasData := byCoord[key]
		_, inRegion := footprint[key]

		pc := hexgrid.ProcessedColumn{Coordinate: key}
		pc.PixelX, pc.PixelY = layout.ToPixel(key, side)

		switch {
		case !inRegion:
			pc.Status = hexgrid.StatusNotInRegion
		case !hasData:
			pc.Status = hexgrid.StatusNoData
		default:
			pc.Status = hexgrid.StatusHasData
		}

		if pc.Status == hexgrid.StatusHasData {
			pc.Value = hexgrid.PrimaryMetric(col, cfg.Metric)
			s.decorate(&pc, col, thresholds, layerThresholds, cfg)
		} else {
			s.decorateEmpty(&pc, region)
		}

		grid.Columns = append(grid.Columns, pc)
	}

	return grid, warnings
}

// layerThresholds buckets per-layer values on their own distribution; the
// column-level breakpoints are on a different scale.
func (s *GridService) layerThresholds(cols []hexgrid.ColumnData, cfg hexgrid.ProcessingConfig) hexgrid.ThresholdData {
	var layerValues []float64
	for _, col := range cols {
		layerValues = append(layerValues, hexgrid.LayerValues(col, cfg.Metric)...)
	}
	td, err := hexgrid.ComputeThresholds(layerValues, cfg.Buckets, cfg.ThresholdMethod, cfg.Metric)
	if err != nil {
		td, _ = hexgrid.ComputeThresholds(layerValues, cfg.Buckets, hexgrid.ThresholdEqual, cfg.Metric)
	}
	return td
}

// decorate assigns color, layer colors and tooltip text to a data column.
func (s *GridService) decorate(
	pc *hexgrid.ProcessedColumn,
	col hexgrid.ColumnData,
	thresholds, layerThresholds hexgrid.ThresholdData,
	cfg hexgrid.ProcessingConfig,
) {
	if pc.Value == 0 {
		// Zero with data renders white, distinct from the palette's
		// lightest bucket.
		pc.Color = colormap.ZeroValueHex
		pc.Stroke = colormap.NoDataStrokeHex
	} else {
		pc.Color = s.palette.Hex(thresholds.Bucket(pc.Value))
	}

	layerVals := hexgrid.LayerValues(col, cfg.Metric)
	pc.LayerColors = make([]string, len(layerVals))
	pc.TooltipLayers = make([]string, len(layerVals))
	for i, v := range layerVals {
		if v == 0 {
			pc.LayerColors[i] = colormap.ZeroValueHex
		} else {
			pc.LayerColors[i] = s.palette.Hex(layerThresholds.Bucket(v))
		}
		pc.TooltipLayers[i] = fmt.Sprintf("L%d: %s", col.Layers[i].LayerIndex, formatMetricValue(v))
	}

	pc.Tooltip = fmt.Sprintf("%s %s %s: %s (%d neurons, %d pre, %d post)",
		col.Region, col.Coordinate, metricLabel(cfg.Metric),
		formatMetricValue(pc.Value), col.NeuronCount, col.TotalPre, col.TotalPost)
}

func (s *GridService) decorateEmpty(pc *hexgrid.ProcessedColumn, region hexgrid.Region) {
	switch pc.Status {
	case hexgrid.StatusNotInRegion:
		pc.Color = colormap.NotInRegionHex
		pc.Tooltip = fmt.Sprintf("%s %d,%d: outside region", region, pc.Coordinate.Hex1Dec, pc.Coordinate.Hex2Dec)
	default:
		pc.Color = colormap.NoDataHex
		pc.Stroke = colormap.NoDataStrokeHex
		pc.Tooltip = fmt.Sprintf("%s %d,%d: no data", region, pc.Coordinate.Hex1Dec, pc.Coordinate.Hex2Dec)
	}
}

func metricLabel(m hexgrid.Metric) string {
	return strings.ReplaceAll(string(m), "_", " ")
}

func formatMetricValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func sortedRegions(groups map[hexgrid.Region][]hexgrid.ColumnData, footprints RegionColumnsMap) []hexgrid.Region {
	seen := make(map[hexgrid.Region]struct{}, len(groups)+len(footprints))
	var regions []hexgrid.Region
	add := func(r hexgrid.Region) {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			regions = append(regions, r)
		}
	}
	// Canonical display order; ParseRegion guarantees nothing else shows
	// up in either map.
	for _, r := range hexgrid.Regions {
		_, inGroups := groups[r]
		_, inFootprint := footprints[r]
		if inGroups || inFootprint {
			add(r)
		}
	}
	return regions
}

func sortedKeys(set map[hexgrid.CoordKey]struct{}) []hexgrid.CoordKey {
	keys := make([]hexgrid.CoordKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Hex1Dec != keys[j].Hex1Dec {
			return keys[i].Hex1Dec < keys[j].Hex1Dec
		}
		return keys[i].Hex2Dec < keys[j].Hex2Dec
	})
	return keys
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
