package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hexgrid/server/internal/hexgrid"
)

// unsafePathChars matches everything that may not appear in an asset
// filename.
var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Sanitize strips characters unsafe for filesystem paths from a filename
// component.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = unsafePathChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "unknown"
	}
	return s
}

// AssetName builds the deterministic image filename
// {region}_{neuron_type}_{side}_{metric}.{ext}.
func AssetName(region hexgrid.Region, neuronType string, side hexgrid.Side, metric hexgrid.Metric, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		Sanitize(string(region)),
		Sanitize(neuronType),
		Sanitize(string(side)),
		Sanitize(string(metric)),
		strings.TrimPrefix(ext, "."))
}

// Writer persists rendered assets under a static image directory.
type Writer struct {
	Dir      string
	Compress bool // write SVG assets gzip-compressed as .svgz
}

// Write stores data under name, creating the directory if needed. A
// failed write is retried once before the error is reported; callers fall
// back to inline content on error.
func (w Writer) Write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	if w.Compress && strings.HasSuffix(name, ".svg") {
		gz, err := gzipBytes(data)
		if err == nil {
			name += "z" // .svg -> .svgz
			data = gz
		}
	}

	path := filepath.Join(w.Dir, name)
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		// One retry covers transient filesystem hiccups.
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	return path, nil
}

func gzipBytes(data []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	gz := gzip.NewWriter(buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
