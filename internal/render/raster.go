package render

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/pkg/colormap"
)

// bufferPool recycles PNG encode buffers across renders.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 32*1024))
	},
}

// RenderPNG rasterizes a grid to PNG bytes. The layout matches RenderSVG
// exactly (same bounds, legend and colors); drawing natively through gg
// avoids a parse-the-SVG round trip.
func (r *Renderer) RenderPNG(grid Grid) ([]byte, error) {
	b := r.bounds(grid.Columns)
	m := r.config.Margin

	gridW := b.maxX - b.minX + 2*m
	gridH := b.maxY - b.minY + 2*m
	width := int(gridW + legendWidth)
	height := int(gridH + titleHeight)

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	if grid.Title != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(grid.Title, gridW/2, titleHeight-12, 0.5, 0.5)
	}

	offX := m - b.minX
	offY := titleHeight + m - b.minY
	for _, col := range grid.Columns {
		r.drawHexagon(dc, col, offX, offY)
	}

	r.drawLegend(dc, grid, gridW, titleHeight+m)

	return encodePNG(dc)
}

func (r *Renderer) drawHexagon(dc *gg.Context, col hexgrid.ProcessedColumn, offX, offY float64) {
	pts := hexgrid.HexagonPoints(col.PixelX+offX, col.PixelY+offY, r.config.HexSize)

	dc.NewSubPath()
	dc.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()

	dc.SetColor(colormap.ParseHex(col.Color))
	dc.FillPreserve()

	stroke := col.Stroke
	if stroke == "" {
		stroke = col.Color
	}
	dc.SetColor(colormap.ParseHex(stroke))
	dc.SetLineWidth(r.config.StrokeWidth)
	dc.Stroke()
}

func (r *Renderer) drawLegend(dc *gg.Context, grid Grid, x, y float64) {
	buckets := grid.Thresholds.Buckets()
	for i := 0; i < buckets; i++ {
		sy := y + float64(i)*(swatchSize+swatchGap)

		dc.DrawRectangle(x+legendMargin, sy, swatchSize, swatchSize)
		dc.SetColor(r.config.Palette.AtIndex(i))
		dc.FillPreserve()
		dc.SetColor(color.RGBA{51, 51, 51, 255})
		dc.SetLineWidth(0.5)
		dc.Stroke()

		dc.SetColor(color.Black)
		dc.DrawString(bucketLabel(grid, i), x+legendMargin+swatchSize+swatchGap, sy+swatchSize-3)
	}

	base := y + float64(buckets)*(swatchSize+swatchGap)
	dc.SetColor(color.Black)
	dc.DrawString("min "+formatValue(grid.MinValue), x+legendMargin, base+12)
	dc.DrawString("max "+formatValue(grid.MaxValue), x+legendMargin, base+26)
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	// Copy out before the buffer is reused.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
