// Package viz renders run results for the terminal.
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/launchlab/coilsim/internal/launch"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Fields plottable from a recorded series.
var SeriesFields = []string{"position", "velocity", "force", "kinetic_energy", "capsule_current"}

// SeriesField extracts one named column from the series.
func SeriesField(ser *launch.Series, field string) ([]float64, error) {
	switch field {
	case "position":
		return ser.Position, nil
	case "velocity":
		return ser.Velocity, nil
	case "force":
		return ser.NetForce, nil
	case "kinetic_energy":
		return ser.KineticEnergy, nil
	case "capsule_current":
		return ser.CapsuleCurrent, nil
	default:
		return nil, fmt.Errorf("unknown series field %q (have %s)", field, strings.Join(SeriesFields, ", "))
	}
}

// Plot renders one series column as an ASCII graph, downsampled to at most
// width points.
func Plot(ser *launch.Series, field string, width, height int) (string, error) {
	data, err := SeriesField(ser, field)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no samples to plot")
	}

	points := downsample(data, width)
	graph := asciigraph.Plot(points,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s vs time", field)),
	)
	return graph, nil
}

func downsample(data []float64, width int) []float64 {
	if width <= 0 || len(data) <= width {
		return data
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = data[i*len(data)/width]
	}
	return out
}

// Summary renders the headline numbers of a finished run.
func Summary(result *launch.Result) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("launch results"))
	b.WriteString("\n")

	termStyle := goodStyle
	if result.Termination != launch.TerminateMuzzleExit {
		termStyle = warnStyle
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("termination", termStyle.Render(string(result.Termination)))
	row("final velocity", fmt.Sprintf("%.4f m/s", result.FinalVelocity))
	row("final position", fmt.Sprintf("%.4f m", result.FinalPosition))
	row("total time", fmt.Sprintf("%.2f ms", result.TotalTime*1000))
	row("kinetic energy", fmt.Sprintf("%.4g J", result.FinalKineticEnergy))
	row("stored energy", fmt.Sprintf("%.4g J", result.InitialStoredEnergy))
	row("efficiency", fmt.Sprintf("%.4g", result.EnergyEfficiency))
	row("samples", fmt.Sprintf("%d", result.Steps))

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.6g", result.Metrics[name]))
	}

	return b.String()
}
