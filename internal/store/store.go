// Package store persists completed runs under a data directory, one
// subdirectory per run holding metadata and the recorded series.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/launchlab/coilsim/internal/launch"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                  string             `json:"id"`
	Timestamp           time.Time          `json:"timestamp"`
	Dt                  float64            `json:"dt"`
	MaxTime             float64            `json:"max_time"`
	TubeLength          float64            `json:"tube_length"`
	Stages              int                `json:"stages"`
	Termination         string             `json:"termination"`
	FinalVelocity       float64            `json:"final_velocity"`
	FinalPosition       float64            `json:"final_position"`
	TotalTime           float64            `json:"total_time"`
	EnergyEfficiency    float64            `json:"energy_efficiency"`
	InitialStoredEnergy float64            `json:"initial_stored_energy"`
	Metrics             map[string]float64 `json:"metrics"`
}

// runSeq breaks ties between runs saved within the same clock reading.
var runSeq atomic.Int64

// Save writes one run: metadata.json plus series.csv with columns
// time, position, velocity, force, kinetic_energy, capsule_current and one
// column per stage current.
func (s *Store) Save(dt, maxTime, tubeLength float64, result *launch.Result) (string, error) {
	runID := fmt.Sprintf("run_%d_%d", time.Now().UnixNano(), runSeq.Add(1))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                  runID,
		Timestamp:           time.Now(),
		Dt:                  dt,
		MaxTime:             maxTime,
		TubeLength:          tubeLength,
		Stages:              len(result.Series.StageCurrents),
		Termination:         string(result.Termination),
		FinalVelocity:       result.FinalVelocity,
		FinalPosition:       result.FinalPosition,
		TotalTime:           result.TotalTime,
		EnergyEfficiency:    result.EnergyEfficiency,
		InitialStoredEnergy: result.InitialStoredEnergy,
		Metrics:             result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time", "position", "velocity", "force", "kinetic_energy", "capsule_current"}
	for i := range result.Series.StageCurrents {
		header = append(header, fmt.Sprintf("stage_%d_current", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	ser := result.Series
	for i := 0; i < ser.Len(); i++ {
		row := []string{
			formatFloat(ser.Time[i]),
			formatFloat(ser.Position[i]),
			formatFloat(ser.Velocity[i]),
			formatFloat(ser.NetForce[i]),
			formatFloat(ser.KineticEnergy[i]),
			formatFloat(ser.CapsuleCurrent[i]),
		}
		for j := range ser.StageCurrents {
			row = append(row, formatFloat(ser.StageCurrents[j][i]))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads a stored run's recorded series back.
func (s *Store) LoadSeries(runID string) (*launch.Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return &launch.Series{}, nil
	}

	const fixedColumns = 6
	stages := len(records[0]) - fixedColumns
	if stages < 0 {
		return nil, fmt.Errorf("store: malformed series header in %s", runID)
	}

	ser := launch.NewSeries(stages, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != fixedColumns+stages {
			continue
		}
		vals := make([]float64, len(record))
		ok := true
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		smp := launch.Sample{
			Time:           vals[0],
			Position:       vals[1],
			Velocity:       vals[2],
			NetForce:       vals[3],
			KineticEnergy:  vals[4],
			CapsuleCurrent: vals[5],
			StageCurrents:  vals[fixedColumns:],
		}
		ser.Append(smp)
	}
	return ser, nil
}

// LoadResult reassembles a Result from a stored run, for export.
func (s *Store) LoadResult(runID string) (*launch.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	res := &launch.Result{
		FinalVelocity:       meta.FinalVelocity,
		FinalPosition:       meta.FinalPosition,
		TotalTime:           meta.TotalTime,
		EnergyEfficiency:    meta.EnergyEfficiency,
		InitialStoredEnergy: meta.InitialStoredEnergy,
		Termination:         launch.Termination(meta.Termination),
		Steps:               series.Len(),
		Metrics:             meta.Metrics,
		Series:              series,
	}
	res.FinalKineticEnergy = res.EnergyEfficiency * res.InitialStoredEnergy
	return res, nil
}
