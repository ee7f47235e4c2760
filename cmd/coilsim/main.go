package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/launchlab/coilsim/internal/analysis"
	"github.com/launchlab/coilsim/internal/config"
	"github.com/launchlab/coilsim/internal/export"
	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/metrics"
	"github.com/launchlab/coilsim/internal/optim"
	"github.com/launchlab/coilsim/internal/sim"
	"github.com/launchlab/coilsim/internal/store"
	"github.com/launchlab/coilsim/internal/tui"
	"github.com/launchlab/coilsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt         float64
	maxTime    float64
	tubeLength float64
	mass       float64
	voltage    float64
	stageCount int

	// plot options
	plotField  string
	plotWidth  int
	plotHeight int
	svgOut     string

	// live view downsampling
	sampleEvery int

	// sweep options
	sweepVoltages string

	// tune options
	tuneVoltages     string
	tuneCapacitances string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coilsim",
		Short: "multi-stage electromagnetic launch simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coilsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a launch",
		RunE:  runLaunch,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a launch with live visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&sampleEvery, "sample-every", 100, "render every nth sample")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a launch across several capacitor voltages",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepVoltages, "voltages", "100,200,400,600", "comma-separated voltages")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "series field (default: all)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write an SVG instead of plotting to the terminal")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run's discharge ringing",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search charge voltage and capacitance for muzzle velocity",
		RunE:  runTune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneVoltages, "voltages", "200,400,600", "comma-separated voltages")
	tuneCmd.Flags().StringVar(&tuneCapacitances, "capacitances", "500e-6,1000e-6,2000e-6", "comma-separated capacitances")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [out.json]",
		Short: "export a stored run as bridge JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCmd, analyzeCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&maxTime, "time", config.DefaultMaxTime, "simulated time limit")
	cmd.Flags().Float64Var(&tubeLength, "tube", 0, "tube length override")
	cmd.Flags().Float64Var(&mass, "mass", 0, "capsule mass override")
	cmd.Flags().Float64Var(&voltage, "voltage", 0, "capacitor voltage override")
	cmd.Flags().IntVar(&stageCount, "stages", 0, "stage count override")
}

// loadConfig resolves the effective configuration: preset first, config
// file over that, then any explicitly changed flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.MaxTime = maxTime
	}
	if cmd.Flags().Changed("tube") {
		cfg.TubeLength = tubeLength
	}
	if cmd.Flags().Changed("mass") {
		cfg.Capsule.Mass = mass
	}
	if cmd.Flags().Changed("voltage") {
		cfg.Stages.Voltage = voltage
	}
	if cmd.Flags().Changed("stages") {
		cfg.Stages.Count = stageCount
		cfg.Stages.Positions = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildOrchestrator(cfg *config.Config) (*sim.Orchestrator, error) {
	capsule, err := cfg.BuildCapsule()
	if err != nil {
		return nil, err
	}
	stages, err := cfg.BuildStages()
	if err != nil {
		return nil, err
	}
	orch, err := sim.New(capsule, stages, cfg.TubeLength, cfg.Dt)
	if err != nil {
		return nil, err
	}
	if policy := cfg.BuildPolicy(); policy != nil {
		orch.SetPolicy(policy)
	}
	orch.AddMetric(metrics.NewPeakForce())
	orch.AddMetric(metrics.NewPeakStageCurrent())
	orch.AddMetric(metrics.NewPeakAcceleration(cfg.Capsule.Mass))
	return orch, nil
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println("running launch...")
	start := time.Now()

	result, err := orch.Run(context.Background(), cfg.MaxTime)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Dt, cfg.MaxTime, cfg.TubeLength, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)
	fmt.Println(viz.Summary(result))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	prog := tui.NewLiveApp(orch, cfg.MaxTime, sampleEvery)
	_, err = prog.Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	voltages, err := parseFloatList(sweepVoltages)
	if err != nil {
		return err
	}

	sweep := sim.VoltageSweep{
		Voltages: voltages,
		MaxTime:  cfg.MaxTime,
		Build: func(v float64) (*sim.Orchestrator, error) {
			c := *cfg
			c.Stages.Voltage = v
			return buildOrchestrator(&c)
		},
	}

	fmt.Printf("sweeping %d voltages...\n\n", len(voltages))
	points, err := sweep.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VOLTAGE\tVELOCITY\tEFFICIENCY\tTERMINATION")
	velocities := make([]float64, 0, len(points))
	for _, pt := range points {
		if pt.Err != nil {
			fmt.Fprintf(w, "%.0fV\terror: %v\t\t\n", pt.Voltage, pt.Err)
			continue
		}
		fmt.Fprintf(w, "%.0fV\t%.4f m/s\t%.4g\t%s\n",
			pt.Voltage, pt.Result.FinalVelocity, pt.Result.EnergyEfficiency, pt.Result.Termination)
		velocities = append(velocities, pt.Result.FinalVelocity)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(velocities) > 1 {
		fmt.Println()
		fmt.Println(vizSweepPlot(velocities))
	}
	return nil
}

func vizSweepPlot(velocities []float64) string {
	ser := &launch.Series{Velocity: velocities}
	s, err := viz.Plot(ser, "velocity", 60, 8)
	if err != nil {
		return ""
	}
	return s
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTAGES\tTUBE\tVELOCITY\tEFFICIENCY\tTERMINATION")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fm\t%.4f m/s\t%.4g\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Stages,
			run.TubeLength,
			run.FinalVelocity,
			run.EnergyEfficiency,
			run.Termination,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ser, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if svgOut != "" {
		field := plotField
		if field == "" {
			field = "velocity"
		}
		if err := export.WriteSeriesSVG(svgOut, ser, field, plotWidth*8, plotHeight*24); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", ser.Len())

	fields := viz.SeriesFields
	if plotField != "" {
		fields = []string{plotField}
	}

	for _, field := range fields {
		graph, err := viz.Plot(ser, field, plotWidth, plotHeight)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ser, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if ser.Len() < 4 {
		return fmt.Errorf("run %s has too few samples to analyze", runID)
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tDOMINANT FREQ\tPERIOD")

	report := func(name string, data []float64) error {
		freq, err := analysis.RingingFrequency(data, meta.Dt)
		if err != nil {
			return err
		}
		period := "-"
		if freq > 0 {
			period = fmt.Sprintf("%.4f s", 1/freq)
		}
		fmt.Fprintf(w, "%s\t%.2f Hz\t%s\n", name, freq, period)
		return nil
	}

	if err := report("capsule_current", ser.CapsuleCurrent); err != nil {
		return err
	}
	for i, col := range ser.StageCurrents {
		if err := report(fmt.Sprintf("stage_%d_current", i), col); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(ser.CapsuleCurrent)
	if len(ps) >= 4 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(12),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("capsule current power spectrum"),
		)
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	voltages, err := parseFloatList(tuneVoltages)
	if err != nil {
		return err
	}
	capacitances, err := parseFloatList(tuneCapacitances)
	if err != nil {
		return err
	}

	gs := optim.GridSearch{
		Params:  []string{"voltage", "capacitance"},
		Values:  [][]float64{voltages, capacitances},
		MaxTime: cfg.MaxTime,
		Build: func(params map[string]float64) (*sim.Orchestrator, error) {
			c := *cfg
			c.Stages.Voltage = params["voltage"]
			c.Stages.Capacitance = params["capacitance"]
			return buildOrchestrator(&c)
		},
	}

	fmt.Printf("searching %d grid points...\n", len(voltages)*len(capacitances))
	best, err := gs.Search(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %.0f V / %.0f uF\n", best.Params["voltage"], best.Params["capacitance"]*1e6)
	fmt.Printf("final velocity: %.4f m/s\n", best.Result.FinalVelocity)
	fmt.Printf("efficiency: %.4g\n", best.Result.EnergyEfficiency)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		if err := store.ExportJSON(args[1], result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[1])
		return nil
	}
	return store.WriteJSON(os.Stdout, result)
}
