package colormap

import (
	"image/color"
	"testing"
)

func TestRedsEndpoints(t *testing.T) {
	t.Parallel()

	c0, ok := Reds.At(0).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=0")
	}
	if c0 != (color.RGBA{R: 254, G: 229, B: 217, A: 255}) {
		t.Fatalf("unexpected Reds.At(0): %#v", c0)
	}

	c1, ok := Reds.At(1).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=1")
	}
	if c1 != (color.RGBA{R: 165, G: 15, B: 21, A: 255}) {
		t.Fatalf("unexpected Reds.At(1): %#v", c1)
	}
}

func TestSequentialMonotonicity(t *testing.T) {
	t.Parallel()

	// Darker buckets must not be lighter than earlier buckets. Perceived
	// lightness is approximated by the channel sum, which is monotone for
	// the sequential palettes shipped here.
	for _, p := range []SequentialPalette{Reds, Blues, Purples} {
		prev := -1
		for i := p.Len() - 1; i >= 0; i-- {
			c := p.AtIndex(i).(color.RGBA)
			sum := int(c.R) + int(c.G) + int(c.B)
			if sum < prev {
				t.Fatalf("bucket %d lighter than bucket %d", i+1, i)
			}
			prev = sum
		}
	}
}

func TestAtIndexClamps(t *testing.T) {
	t.Parallel()

	if Reds.AtIndex(-3) != Reds.AtIndex(0) {
		t.Fatalf("negative index should clamp to first color")
	}
	if Reds.AtIndex(99) != Reds.AtIndex(Reds.Len()-1) {
		t.Fatalf("overflow index should clamp to last color")
	}
}

func TestHexRoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < Reds.Len(); i++ {
		hex := Reds.Hex(i)
		if ParseHex(hex) != Reds.AtIndex(i).(color.RGBA) {
			t.Fatalf("Hex/ParseHex mismatch at bucket %d: %s", i, hex)
		}
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	if ByName("blues").Hex(0) != Blues.Hex(0) {
		t.Fatalf("expected blues palette")
	}
	if ByName("unknown").Hex(0) != Reds.Hex(0) {
		t.Fatalf("expected fallback to Reds")
	}
}

func TestStatusColorConstants(t *testing.T) {
	t.Parallel()

	if got := ParseHex(NotInRegionHex); got != (color.RGBA{R: 74, G: 74, B: 74, A: 255}) {
		t.Fatalf("unexpected not_in_region color: %#v", got)
	}
	if got := ParseHex(NoDataStrokeHex); got != (color.RGBA{R: 153, G: 153, B: 153, A: 255}) {
		t.Fatalf("unexpected no_data stroke: %#v", got)
	}
}
