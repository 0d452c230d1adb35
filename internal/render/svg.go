// Package render serializes processed hexagon columns to SVG and PNG.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	HexSize     float64
	StrokeWidth float64
	Margin      float64
	Palette     colormap.SequentialPalette
}

// Grid is one renderable unit: the processed columns of a single
// (region, side, metric) together with its legend inputs.
type Grid struct {
	Title      string
	Region     hexgrid.Region
	NeuronType string
	Side       hexgrid.Side
	Metric     hexgrid.Metric
	Columns    []hexgrid.ProcessedColumn
	Thresholds hexgrid.ThresholdData
	MinValue   float64
	MaxValue   float64
}

// Renderer lays hexagon grids out as SVG documents and PNG rasters.
type Renderer struct {
	config Config
}

// NewRenderer creates a renderer, applying defaults for zero config
// fields.
func NewRenderer(cfg Config) *Renderer {
	if cfg.HexSize <= 0 {
		cfg.HexSize = 10
	}
	if cfg.StrokeWidth <= 0 {
		cfg.StrokeWidth = 0.5
	}
	if cfg.Margin <= 0 {
		cfg.Margin = 20
	}
	if cfg.Palette.Len() == 0 {
		cfg.Palette = colormap.Reds
	}
	return &Renderer{config: cfg}
}

const (
	legendWidth  = 120.0
	titleHeight  = 24.0
	swatchSize   = 14.0
	swatchGap    = 6.0
	legendMargin = 10.0
)

type gridBounds struct {
	minX, minY, maxX, maxY float64
}

func (r *Renderer) bounds(columns []hexgrid.ProcessedColumn) gridBounds {
	b := gridBounds{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
	for _, col := range columns {
		b.minX = math.Min(b.minX, col.PixelX-r.config.HexSize)
		b.minY = math.Min(b.minY, col.PixelY-r.config.HexSize)
		b.maxX = math.Max(b.maxX, col.PixelX+r.config.HexSize)
		b.maxY = math.Max(b.maxY, col.PixelY+r.config.HexSize)
	}
	if len(columns) == 0 {
		b = gridBounds{maxX: 2 * r.config.HexSize, maxY: 2 * r.config.HexSize}
	}
	return b
}

// RenderSVG serializes a grid to a self-contained SVG document with one
// polygon per column, per-hexagon tooltip metadata for client-side layer
// switching, and a legend mapping threshold buckets to colors.
func (r *Renderer) RenderSVG(grid Grid) string {
	b := r.bounds(grid.Columns)
	m := r.config.Margin

	gridW := b.maxX - b.minX + 2*m
	gridH := b.maxY - b.minY + 2*m
	width := gridW + legendWidth
	height := gridH + titleHeight

	var svg bytes.Buffer
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		width, height, width, height)
	svg.WriteString("\n")

	if grid.Title != "" {
		fmt.Fprintf(&svg, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" text-anchor="middle">%s</text>`,
			gridW/2, titleHeight-8, escapeXML(grid.Title))
		svg.WriteString("\n")
	}

	// Hexagons. Offset so every column lands inside the viewBox.
	offX := m - b.minX
	offY := titleHeight + m - b.minY
	svg.WriteString(`  <g class="hex-grid">` + "\n")
	for _, col := range grid.Columns {
		r.writeHexagon(&svg, col, offX, offY)
	}
	svg.WriteString("  </g>\n")

	r.writeLegend(&svg, grid, gridW, titleHeight+m)

	svg.WriteString("</svg>\n")
	return svg.String()
}

func (r *Renderer) writeHexagon(svg *bytes.Buffer, col hexgrid.ProcessedColumn, offX, offY float64) {
	pts := hexgrid.HexagonPoints(col.PixelX+offX, col.PixelY+offY, r.config.HexSize)

	var points strings.Builder
	for i, p := range pts {
		if i > 0 {
			points.WriteByte(' ')
		}
		fmt.Fprintf(&points, "%.2f,%.2f", p[0], p[1])
	}

	stroke := col.Stroke
	if stroke == "" {
		stroke = col.Color
	}

	fmt.Fprintf(svg, `    <polygon points="%s" fill="%s" stroke="%s" stroke-width="%.2f" data-status="%s"`,
		points.String(), col.Color, stroke, r.config.StrokeWidth, col.Status)

	if col.Tooltip != "" {
		fmt.Fprintf(svg, ` data-tooltip="%s"`, escapeXML(col.Tooltip))
	}
	if len(col.TooltipLayers) > 0 {
		// JSON array attribute, one entry per layer, for client-side
		// interactive layer switching.
		layers, err := json.Marshal(col.TooltipLayers)
		if err == nil {
			fmt.Fprintf(svg, ` data-layers="%s"`, escapeXML(string(layers)))
		}
	}
	if len(col.LayerColors) > 0 {
		colors, err := json.Marshal(col.LayerColors)
		if err == nil {
			fmt.Fprintf(svg, ` data-layer-colors="%s"`, escapeXML(string(colors)))
		}
	}

	if col.Tooltip != "" {
		fmt.Fprintf(svg, `><title>%s</title></polygon>`, escapeXML(col.Tooltip))
	} else {
		svg.WriteString("/>")
	}
	svg.WriteString("\n")
}

// writeLegend draws one swatch per threshold bucket with its value range,
// plus the grid's min/max labels.
func (r *Renderer) writeLegend(svg *bytes.Buffer, grid Grid, x, y float64) {
	svg.WriteString(`  <g class="legend" font-family="sans-serif" font-size="10">` + "\n")

	buckets := grid.Thresholds.Buckets()
	for i := 0; i < buckets; i++ {
		sy := y + float64(i)*(swatchSize+swatchGap)
		fmt.Fprintf(svg, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#333333" stroke-width="0.5"/>`,
			x+legendMargin, sy, swatchSize, swatchSize, r.config.Palette.Hex(i))
		svg.WriteString("\n")
		fmt.Fprintf(svg, `    <text x="%.1f" y="%.1f">%s</text>`,
			x+legendMargin+swatchSize+swatchGap, sy+swatchSize-3,
			escapeXML(bucketLabel(grid, i)))
		svg.WriteString("\n")
	}

	fmt.Fprintf(svg, `    <text x="%.1f" y="%.1f">min %s</text>`,
		x+legendMargin, y+float64(buckets)*(swatchSize+swatchGap)+12, formatValue(grid.MinValue))
	svg.WriteString("\n")
	fmt.Fprintf(svg, `    <text x="%.1f" y="%.1f">max %s</text>`,
		x+legendMargin, y+float64(buckets)*(swatchSize+swatchGap)+26, formatValue(grid.MaxValue))
	svg.WriteString("\n")

	svg.WriteString("  </g>\n")
}

func bucketLabel(grid Grid, bucket int) string {
	bps := grid.Thresholds.Breakpoints
	switch {
	case len(bps) == 0:
		return fmt.Sprintf("%s - %s", formatValue(grid.MinValue), formatValue(grid.MaxValue))
	case bucket == 0:
		return "< " + formatValue(bps[0])
	case bucket >= len(bps):
		return ">= " + formatValue(bps[len(bps)-1])
	default:
		return formatValue(bps[bucket-1]) + " - " + formatValue(bps[bucket])
	}
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func escapeXML(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
