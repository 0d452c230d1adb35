package hexgrid

import "math"

// sqrt3 shows up in every axial-to-pixel hexagon formula.
var sqrt3 = math.Sqrt(3)

// Layout converts hex addresses to pixel positions for one region grid.
//
// Canonical orientation: hex1 is the row and maps toward the top right,
// hex2 is the column and maps upward. Earlier revisions of the address
// scheme documented a row-down orientation; this implementation commits to
// the row-top-right form: q = row - minRow, r = maxCol - col, followed by
// the standard flat-top axial-to-pixel transform. Right-side grids are
// mirrored in x so left and right are anatomically comparable side by side.
type Layout struct {
	HexSize       float64
	SpacingFactor float64
	MinRow        int
	MaxCol        int
}

// NewLayout derives a layout from the full coordinate footprint of a
// region, so both the data columns and the dataless footprint columns of
// the region land in one consistent frame.
func NewLayout(footprint map[CoordKey]struct{}, hexSize, spacingFactor float64) Layout {
	l := Layout{HexSize: hexSize, SpacingFactor: spacingFactor}
	first := true
	for k := range footprint {
		if first {
			l.MinRow, l.MaxCol = k.Hex1Dec, k.Hex2Dec
			first = false
			continue
		}
		if k.Hex1Dec < l.MinRow {
			l.MinRow = k.Hex1Dec
		}
		if k.Hex2Dec > l.MaxCol {
			l.MaxCol = k.Hex2Dec
		}
	}
	return l
}

// Axial returns the axial coordinates for a decimal hex address.
func (l Layout) Axial(key CoordKey) (q, r int) {
	return key.Hex1Dec - l.MinRow, l.MaxCol - key.Hex2Dec
}

// ToPixel returns the pixel center of a column. Pure and deterministic:
// the same address, side and layout always yield the same point.
func (l Layout) ToPixel(key CoordKey, side Side) (x, y float64) {
	q, r := l.Axial(key)
	size := l.HexSize * l.SpacingFactor

	// Flat-top axial to pixel.
	x = size * 1.5 * float64(q)
	y = size * (sqrt3/2*float64(q) + sqrt3*float64(r))

	if side == SideRight {
		x = -x
	}
	return x, y
}

// HexagonPoints returns the six vertices of a flat-top hexagon centered at
// (cx, cy), in drawing order.
func HexagonPoints(cx, cy, size float64) [6][2]float64 {
	var pts [6][2]float64
	for i := 0; i < 6; i++ {
		angle := math.Pi / 3 * float64(i)
		pts[i] = [2]float64{cx + size*math.Cos(angle), cy + size*math.Sin(angle)}
	}
	return pts
}
