package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hexgrid/server/internal/cache"
	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/internal/render"
)

// ReportServiceConfig contains report service configuration.
type ReportServiceConfig struct {
	Grids    *GridService
	Renderer *render.Renderer
	Writer   render.Writer
	Cache    *cache.Manager
	Workers  int
}

// ReportService fans grid units out to a worker pool and assembles the
// summary the surrounding report text embeds. One failing unit never
// aborts its siblings; each unit carries its own errors.
type ReportService struct {
	grids    *GridService
	renderer *render.Renderer
	writer   render.Writer
	cache    *cache.Manager
	workers  int
}

// NewReportService creates a report service.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	return &ReportService{
		grids:    cfg.Grids,
		renderer: cfg.Renderer,
		writer:   cfg.Writer,
		cache:    cfg.Cache,
		workers:  cfg.Workers,
	}
}

// Unit identifies one independent processing unit of a report.
type Unit struct {
	Region hexgrid.Region `json:"region"`
	Side   hexgrid.Side   `json:"side"`
	Metric hexgrid.Metric `json:"metric"`
	Format string         `json:"format"` // "svg" or "png"
}

// UnitResult is the outcome of one unit. Path is set when the asset was
// written; Inline carries the SVG markup when writing failed or no writer
// directory is configured.
type UnitResult struct {
	Unit     Unit     `json:"unit"`
	Success  bool     `json:"success"`
	Path     string   `json:"path,omitempty"`
	Inline   string   `json:"inline,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Summary is the report-level aggregate embedded in surrounding text.
type Summary struct {
	TotalColumns            int                                    `json:"total_columns"`
	TotalNeuronsWithColumns int                                    `json:"total_neurons_with_columns"`
	AvgNeuronsPerColumn     float64                                `json:"avg_neurons_per_column"`
	AvgSynapsesPerColumn    float64                                `json:"avg_synapses_per_column"`
	PerRegionStats          map[hexgrid.Region]hexgrid.Statistics `json:"per_region_stats"`
}

// ReportResult holds every unit outcome plus the summary.
type ReportResult struct {
	NeuronType string       `json:"neuron_type"`
	Units      []UnitResult `json:"units"`
	Summary    Summary      `json:"summary"`
}

// GenerateReport processes all units for a neuron type concurrently.
// Units are independent: no shared mutable state crosses them, so the
// only coordination is the pool limit.
func (s *ReportService) GenerateReport(
	ctx context.Context,
	neuronType string,
	rows []hexgrid.Row,
	regionColumns RegionColumnsMap,
	units []Unit,
	baseCfg hexgrid.ProcessingConfig,
) ReportResult {
	out := ReportResult{
		NeuronType: neuronType,
		Units:      make([]UnitResult, len(units)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			select {
			case <-ctx.Done():
				out.Units[i] = UnitResult{Unit: unit, Errors: []string{ctx.Err().Error()}}
				return nil
			default:
			}
			out.Units[i] = s.RenderUnit(neuronType, rows, regionColumns, unit, baseCfg)
			// Unit failures stay in the unit result; returning them here
			// would cancel siblings.
			return nil
		})
	}
	g.Wait()

	out.Summary = s.Summarize(neuronType, rows, baseCfg.Metric)
	return out
}

// RenderUnit processes and renders a single (region, side, metric) unit.
func (s *ReportService) RenderUnit(
	neuronType string,
	rows []hexgrid.Row,
	regionColumns RegionColumnsMap,
	unit Unit,
	baseCfg hexgrid.ProcessingConfig,
) UnitResult {
	res := UnitResult{Unit: unit}

	cfg := baseCfg
	cfg.Side = unit.Side
	cfg.Metric = unit.Metric

	format := unit.Format
	if format == "" {
		format = "svg"
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = cache.RenderKey(neuronType, unit.Region, unit.Side, unit.Metric, cfg, format)
		if data, ok := s.cache.GetRender(cacheKey); ok {
			res.Success = true
			res.Inline = string(data)
			return res
		}
	}

	processed := s.grids.Process(rows, regionColumns, cfg)
	res.Warnings = append(res.Warnings, processed.Warnings...)
	if !processed.Success {
		res.Errors = append(res.Errors, processed.Errors...)
		return res
	}

	var grid *RegionGrid
	for i := range processed.Grids {
		if processed.Grids[i].Region == unit.Region {
			grid = &processed.Grids[i]
			break
		}
	}
	if grid == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("no columns for region %s", unit.Region))
		return res
	}

	rg := render.Grid{
		Title:      fmt.Sprintf("%s %s %s %s", unit.Region, neuronType, unit.Side, metricLabel(unit.Metric)),
		Region:     unit.Region,
		NeuronType: neuronType,
		Side:       unit.Side,
		Metric:     unit.Metric,
		Columns:    grid.Columns,
		Thresholds: grid.Thresholds,
		MinValue:   grid.MinValue,
		MaxValue:   grid.MaxValue,
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "png":
		data, err = s.renderer.RenderPNG(rg)
	default:
		data = []byte(s.renderer.RenderSVG(rg))
	}
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("render %s: %v", format, err))
		return res
	}

	res.Success = true
	if s.cache != nil && cacheKey != "" {
		s.cache.SetRender(cacheKey, data)
	}

	if s.writer.Dir == "" {
		res.Inline = string(data)
		return res
	}

	name := render.AssetName(unit.Region, neuronType, unit.Side, unit.Metric, format)
	path, err := s.writer.Write(name, data)
	if err != nil {
		// Writing already retried once inside the writer; degrade to
		// inline content so the page still renders.
		res.Warnings = append(res.Warnings, fmt.Sprintf("asset write failed, falling back to inline: %v", err))
		res.Inline = string(data)
		return res
	}
	res.Path = path
	return res
}

// Summarize computes the report-level aggregate for a row set. Results
// are cached per (neuron type, metric).
func (s *ReportService) Summarize(neuronType string, rows []hexgrid.Row, metric hexgrid.Metric) Summary {
	var cacheKey string
	if s.cache != nil {
		cacheKey = cache.SummaryKey(neuronType, metric)
		if data, ok := s.cache.GetSummary(cacheKey); ok {
			var cached Summary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	validator := hexgrid.Validator{}
	columns, _, _ := validator.ValidateColumns(rows)

	summary := Summary{PerRegionStats: make(map[hexgrid.Region]hexgrid.Statistics)}
	summary.TotalColumns = len(columns)

	var totalSynapses int
	for _, col := range columns {
		summary.TotalNeuronsWithColumns += col.NeuronCount
		totalSynapses += col.TotalPre + col.TotalPost
	}
	if len(columns) > 0 {
		summary.AvgNeuronsPerColumn = float64(summary.TotalNeuronsWithColumns) / float64(len(columns))
		summary.AvgSynapsesPerColumn = float64(totalSynapses) / float64(len(columns))
	}

	for region, cols := range hexgrid.OrganizeBySide(columns, hexgrid.SideCombined) {
		values := make([]float64, len(cols))
		for i, col := range cols {
			values[i] = hexgrid.PrimaryMetric(col, metric)
		}
		summary.PerRegionStats[region] = hexgrid.ComputeStatistics(values)
	}

	if s.cache != nil && cacheKey != "" {
		if data, err := json.Marshal(summary); err == nil {
			s.cache.SetSummary(cacheKey, data)
		}
	}
	return summary
}

// DefaultUnits enumerates the standard report units: every region in the
// footprint crossed with both sides for one metric.
func DefaultUnits(regionColumns RegionColumnsMap, metric hexgrid.Metric, format string) []Unit {
	var units []Unit
	for _, region := range hexgrid.Regions {
		if _, ok := regionColumns[region]; !ok {
			continue
		}
		for _, side := range []hexgrid.Side{hexgrid.SideLeft, hexgrid.SideRight} {
			units = append(units, Unit{Region: region, Side: side, Metric: metric, Format: format})
		}
	}
	return units
}
