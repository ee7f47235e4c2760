// Package export renders recorded series as standalone SVG documents for
// reports and notebooks.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/viz"
)

const strokeColor = "#00d7af"

// SeriesSVG renders one series field against time as an SVG polyline.
func SeriesSVG(ser *launch.Series, field string, width, height int) (string, error) {
	data, err := viz.SeriesField(ser, field)
	if err != nil {
		return "", err
	}
	if len(data) < 2 {
		return "", fmt.Errorf("export: need at least 2 samples, got %d", len(data))
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="8" y="16" fill="#888888" font-family="monospace" font-size="12">%s</text>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, field, strokeColor))

	for i, v := range data {
		x := float64(i) / float64(len(data)-1) * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	return sb.String(), nil
}

// WriteSeriesSVG renders the field to a file.
func WriteSeriesSVG(path string, ser *launch.Series, field string, width, height int) error {
	svg, err := SeriesSVG(ser, field, width, height)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
