package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launchlab/coilsim/internal/launch"
)

func testSeries() *launch.Series {
	ser := launch.NewSeries(0, 8)
	for i := 0; i < 8; i++ {
		ser.Append(launch.Sample{
			Time:     float64(i) * 1e-5,
			Velocity: float64(i) * 0.1,
		})
	}
	return ser
}

func TestSeriesSVG(t *testing.T) {
	svg, err := SeriesSVG(testSeries(), "velocity", 400, 200)
	if err != nil {
		t.Fatalf("svg: %v", err)
	}

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML declaration")
	}
	if !strings.Contains(svg, "<path") || !strings.Contains(svg, "velocity") {
		t.Error("missing path or label")
	}
}

func TestSeriesSVGUnknownField(t *testing.T) {
	if _, err := SeriesSVG(testSeries(), "warp_factor", 400, 200); err == nil {
		t.Error("unknown field should error")
	}
}

func TestSeriesSVGTooFewSamples(t *testing.T) {
	ser := launch.NewSeries(0, 1)
	ser.Append(launch.Sample{})
	if _, err := SeriesSVG(ser, "velocity", 400, 200); err == nil {
		t.Error("single sample should error")
	}
}

func TestWriteSeriesSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "velocity.svg")
	if err := WriteSeriesSVG(path, testSeries(), "velocity", 400, 200); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "</svg>") {
		t.Error("truncated SVG")
	}
}
