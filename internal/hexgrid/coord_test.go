package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFootprint() map[CoordKey]struct{} {
	fp := make(map[CoordKey]struct{})
	for row := 1; row <= 4; row++ {
		for col := 1; col <= 4; col++ {
			fp[CoordKey{Hex1Dec: row, Hex2Dec: col}] = struct{}{}
		}
	}
	return fp
}

func TestLayoutExtents(t *testing.T) {
	l := NewLayout(testFootprint(), 10, 1.1)
	assert.Equal(t, 1, l.MinRow)
	assert.Equal(t, 4, l.MaxCol)
}

func TestToPixelDeterministic(t *testing.T) {
	l := NewLayout(testFootprint(), 10, 1.1)
	key := CoordKey{Hex1Dec: 2, Hex2Dec: 3}

	x1, y1 := l.ToPixel(key, SideLeft)
	for i := 0; i < 100; i++ {
		x2, y2 := l.ToPixel(key, SideLeft)
		require.Equal(t, x1, x2)
		require.Equal(t, y1, y2)
	}
}

func TestToPixelOrientation(t *testing.T) {
	l := NewLayout(testFootprint(), 10, 1.0)

	// Origin of the frame: minimum row, maximum column.
	ox, oy := l.ToPixel(CoordKey{Hex1Dec: 1, Hex2Dec: 4}, SideLeft)
	assert.Zero(t, ox)
	assert.Zero(t, oy)

	// Increasing the row moves toward the top right of the axial frame:
	// x grows.
	x, _ := l.ToPixel(CoordKey{Hex1Dec: 2, Hex2Dec: 4}, SideLeft)
	assert.Greater(t, x, ox)

	// Decreasing the column increases r, moving the hexagon down the
	// render frame (y grows in screen coordinates).
	_, y := l.ToPixel(CoordKey{Hex1Dec: 1, Hex2Dec: 3}, SideLeft)
	assert.Greater(t, y, oy)
}

func TestToPixelMirrorsRightSide(t *testing.T) {
	l := NewLayout(testFootprint(), 10, 1.0)
	key := CoordKey{Hex1Dec: 3, Hex2Dec: 2}

	lx, ly := l.ToPixel(key, SideLeft)
	rx, ry := l.ToPixel(key, SideRight)
	assert.Equal(t, -lx, rx)
	assert.Equal(t, ly, ry)
}

func TestHexagonPoints(t *testing.T) {
	pts := HexagonPoints(0, 0, 5)
	assert.Len(t, pts, 6)
	// First vertex of a flat-top hexagon sits on the positive x axis.
	assert.InDelta(t, 5.0, pts[0][0], 1e-9)
	assert.InDelta(t, 0.0, pts[0][1], 1e-9)
}
