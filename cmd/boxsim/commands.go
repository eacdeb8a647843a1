package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/boxsim/internal/config"
	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/export"
	"github.com/san-kum/boxsim/internal/metrics"
	"github.com/san-kum/boxsim/internal/storage"
	"github.com/san-kum/boxsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFORCE\tTIME\tN\tT_MAX\tDT\tSTEPS\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.4f\t%d\t%s\n",
			run.ID,
			run.Force,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.TMax,
			run.Dt,
			run.Steps,
			run.Status,
		)
	}

	return w.Flush()
}

// loadFrames reads a stored run, a text step log or a SQLite recording,
// chosen by the argument's extension.
func loadFrames(source string) (string, []storage.Frame, error) {
	label, frames, _, err := loadRecording(source)
	return label, frames, err
}

// loadRecording also reports the box size when the source records it.
func loadRecording(source string) (string, []storage.Frame, float64, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".txt":
		f, err := os.Open(source)
		if err != nil {
			return "", nil, 0, err
		}
		defer f.Close()
		frames, err := storage.ParseText(f)
		return source, frames, 0, err
	case ".sqlite3", ".sqlite", ".db":
		if _, err := os.Stat(source); err != nil {
			return "", nil, 0, err
		}
		rec, err := storage.OpenSQLite(source)
		if err != nil {
			return "", nil, 0, err
		}
		defer rec.Close()
		frames, err := rec.ReadFrames()
		return source, frames, 0, err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(source)
	if err != nil {
		return "", nil, 0, err
	}
	frames, err := st.LoadFrames(source)
	return fmt.Sprintf("%s (%s, N=%d)", meta.ID, meta.Force, meta.Particles), frames, meta.BoxSize, err
}

func plotRun(cmd *cobra.Command, args []string) error {
	label, frames, err := loadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", label)
	fmt.Printf("frames: %d\n\n", len(frames))

	kinetic := make([]float64, len(frames))
	px := make([]float64, len(frames))
	py := make([]float64, len(frames))
	for i, f := range frames {
		kinetic[i] = metrics.KineticEnergy(f.Ensemble)
		px[i], py[i] = metrics.Momentum(f.Ensemble)
	}

	fmt.Println(viz.Plot(kinetic, "kinetic energy vs step", 80, 10))
	fmt.Println()
	fmt.Println(viz.PlotMany([][]float64{px, py}, "momentum px (cyan), py (yellow)", 80, 10))
	fmt.Println()

	if particle >= 0 {
		xs := make([]float64, 0, len(frames))
		ys := make([]float64, 0, len(frames))
		for _, f := range frames {
			if particle >= len(f.Ensemble) {
				return fmt.Errorf("particle %d out of range (N=%d)", particle, len(f.Ensemble))
			}
			xs = append(xs, f.Ensemble[particle][dynamo.PosX])
			ys = append(ys, f.Ensemble[particle][dynamo.PosY])
		}
		caption := fmt.Sprintf("particle %d: x (cyan), y (yellow)", particle)
		fmt.Println(viz.PlotMany([][]float64{xs, ys}, caption, 80, 10))
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, meta, frames); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d frames to %s\n", len(frames), outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, meta, frames)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFORCE\tN\tBOX\tDT\tT_MAX\tV_MAX")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%g\t%g\n", name, p.Force.Law, p.Particles, p.BoxSize, p.Dt, p.TMax, p.VMax)
	}
	return w.Flush()
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	_, frames, size, err := loadRecording(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to render")
	}
	if cmd.Flags().Changed("box") {
		size = boxSize
	}
	if size <= 0 {
		size = extent(frames)
	}

	var svg string
	if particle >= 0 {
		points := make([]export.Point, 0, len(frames))
		for _, f := range frames {
			if particle >= len(f.Ensemble) {
				return fmt.Errorf("particle %d out of range (N=%d)", particle, len(f.Ensemble))
			}
			x, y := f.Ensemble[particle].Position()
			points = append(points, export.Point{X: x, Y: y})
		}
		svg = export.TrajectoryToSVG(points, size, svgSize, "#00ffff")
	} else {
		f := frames[len(frames)-1]
		if step >= 0 {
			if step >= len(frames) {
				return fmt.Errorf("step %d out of range (%d frames)", step, len(frames))
			}
			f = frames[step]
		}
		svg = export.FrameToSVG(f.Ensemble, size, svgSize)
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}

// extent is the largest coordinate seen, used when the box size is unknown.
func extent(frames []storage.Frame) float64 {
	m := 0.0
	for _, f := range frames {
		for _, s := range f.Ensemble {
			m = max(m, s[dynamo.PosX], s[dynamo.PosY])
		}
	}
	if m == 0 {
		m = 1
	}
	return m
}
