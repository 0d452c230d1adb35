package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/hexgrid/server/internal/hexgrid"
)

func TestAssetName(t *testing.T) {
	got := AssetName(hexgrid.RegionME, "Tm1", hexgrid.SideLeft, hexgrid.MetricSynapseDensity, "svg")
	if got != "ME_Tm1_L_synapse_density.svg" {
		t.Fatalf("unexpected asset name: %s", got)
	}
}

func TestAssetNameSanitizes(t *testing.T) {
	got := AssetName(hexgrid.RegionLO, "T4/T5 <a>", hexgrid.SideRight, hexgrid.MetricCellCount, ".png")
	if got != "LO_T4_T5_a_R_cell_count.png" {
		t.Fatalf("unexpected sanitized name: %s", got)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Tm1":       "Tm1",
		"a b/c":     "a_b_c",
		"..":        "unknown",
		"  spaced ": "spaced",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: filepath.Join(dir, "static", "images")}

	path, err := w.Write("ME_Tm1_L_synapse_density.svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Fatalf("unexpected content: %s", data)
	}
}

func TestWriterCompressesSVG(t *testing.T) {
	w := Writer{Dir: t.TempDir(), Compress: true}

	path, err := w.Write("grid.svg", []byte("<svg><g/></svg>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Ext(path) != ".svgz" {
		t.Fatalf("expected .svgz extension, got %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("gzip header: %v", err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(gz); err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if out.String() != "<svg><g/></svg>" {
		t.Fatalf("round trip mismatch: %s", out.String())
	}
}

func TestWriterCompressLeavesPNGAlone(t *testing.T) {
	w := Writer{Dir: t.TempDir(), Compress: true}

	path, err := w.Write("grid.png", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("png asset must not be renamed: %s", path)
	}
}
