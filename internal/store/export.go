package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/launchlab/coilsim/internal/launch"
)

// BridgeExport is the JSON shape consumed by the plotting and MATLAB
// bridges. The field names are a compatibility contract; do not rename.
type BridgeExport struct {
	FinalVelocity    float64     `json:"final_velocity"`
	FinalPosition    float64     `json:"final_position"`
	TotalTime        float64     `json:"total_time"`
	EnergyEfficiency float64     `json:"energy_efficiency"`
	Termination      string      `json:"termination"`
	Time             []float64   `json:"time"`
	Position         []float64   `json:"position"`
	Velocity         []float64   `json:"velocity"`
	Force            []float64   `json:"force"`
	KineticEnergy    []float64   `json:"kinetic_energy"`
	StageCurrents    [][]float64 `json:"stage_currents"`
}

func NewBridgeExport(result *launch.Result) BridgeExport {
	return BridgeExport{
		FinalVelocity:    result.FinalVelocity,
		FinalPosition:    result.FinalPosition,
		TotalTime:        result.TotalTime,
		EnergyEfficiency: result.EnergyEfficiency,
		Termination:      string(result.Termination),
		Time:             result.Series.Time,
		Position:         result.Series.Position,
		Velocity:         result.Series.Velocity,
		Force:            result.Series.NetForce,
		KineticEnergy:    result.Series.KineticEnergy,
		StageCurrents:    result.Series.StageCurrents,
	}
}

// WriteJSON streams the bridge export to w, indented.
func WriteJSON(w io.Writer, result *launch.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewBridgeExport(result))
}

// ExportJSON writes the bridge export to a file.
func ExportJSON(path string, result *launch.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, result)
}
