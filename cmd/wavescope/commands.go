package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavescope/internal/config"
	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/export"
	"github.com/san-kum/wavescope/internal/sampling"
	"github.com/san-kum/wavescope/internal/signal"
	"github.com/san-kum/wavescope/internal/storage"
	"github.com/san-kum/wavescope/internal/viz"
)

var (
	csvOut        string
	svgOut        string
	elementsSVG   string
	tofFrom       string
	tofTo         string
	stepsPerPixel int
	templateOut   string

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// dumpArg returns the dump named on the command line or the configured one.
func dumpArg(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if len(args) > 0 {
		return cfg, args[0], nil
	}
	return cfg, cfg.Dump, nil
}

func openParams(cmd *cobra.Command, args []string) (*config.Config, *dump.Dump, *dump.Params, error) {
	cfg, path, err := dumpArg(cmd, args)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := loadDump(path)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := d.Params()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, d, p, nil
}

func field(w io.Writer, label, format string, a ...interface{}) {
	fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(fmt.Sprintf(format, a...)))
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [dump]",
		Short: "describe a simulation dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, d, p, err := openParams(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			f := d.Pressure
			lo, hi := p.Clim()

			field(w, "grid", "%d x %d (ny x nx)", f.NY, f.NX)
			field(w, "time steps", "%d", f.NT)
			field(w, "dt", "%g s", p.Dt)
			field(w, "duration", "%.3f us", p.TimeMicros(f.NT-1))
			field(w, "x", "%g .. %g", p.X[0], p.X[len(p.X)-1])
			field(w, "y", "%g .. %g", p.Y[0], p.Y[len(p.Y)-1])
			field(w, "clim", "%g .. %g", lo, hi)
			dlo, dhi := f.Range()
			field(w, "pressure", "%g .. %g", dlo, dhi)
			field(w, "sources", "%d", len(p.XLoc))
			for i := range p.XLoc {
				field(w, "", "(%d, %d)", p.XLoc[i], p.YLoc[i])
			}
			if p.HasFocalLength {
				field(w, "focal length", "%g", p.FocalLength)
			}
			field(w, "materials", "%d", len(d.RawMaterials()))
			for _, m := range d.Materials(cfg.Renames()) {
				field(w, "", "%d %s", m.Label, m.Name)
			}
			return nil
		},
	}
}

func newSignalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal [dump]",
		Short: "plot and analyse the pulse-echo signal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSignal,
	}
	cmd.Flags().StringVar(&csvOut, "csv", "", "write time,pressure csv")
	cmd.Flags().StringVar(&svgOut, "svg", "", "write the signal as svg")
	cmd.Flags().StringVar(&elementsSVG, "elements-svg", "", "write one graduated trace per source element as svg")
	return cmd
}

func runSignal(cmd *cobra.Command, args []string) error {
	_, d, p, err := openParams(cmd, args)
	if err != nil {
		return err
	}
	trace, err := signal.PulseEcho(d.Pressure, p.XLoc, p.YLoc)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, signal.Plot(trace, "pulse-echo signal", 80, 12))
	fmt.Fprintln(w)

	idx, peak := signal.Peak(trace)
	field(w, "peak", "%g at %.3f us", peak, p.TimeMicros(idx))
	if k := signal.FirstArrival(trace, 0.1); k >= 0 {
		field(w, "first arrival", "%.3f us", p.TimeMicros(k))
	}
	spec, err := signal.NewSpectrum(trace, p.Dt)
	if err != nil {
		return err
	}
	field(w, "dominant", "%.3f MHz", spec.Dominant()/1e6)

	times := p.T
	if csvOut != "" {
		if err := writeSignalCSV(csvOut, times, trace); err != nil {
			return err
		}
		logger.Info("wrote signal", "path", csvOut)
	}
	if svgOut != "" {
		svg, err := export.SignalToSVG(signal.Micros(times), trace, 800, 300, "#00d7af")
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote signal", "path", svgOut)
	}
	if elementsSVG != "" {
		traces := make([][]float64, len(p.XLoc))
		for i := range p.XLoc {
			if traces[i], err = signal.PulseEcho(d.Pressure, p.XLoc[i:i+1], p.YLoc[i:i+1]); err != nil {
				return err
			}
		}
		svg, err := export.GraduatedToSVG(signal.Micros(times), traces, 800, 300, "viridis")
		if err != nil {
			return err
		}
		if err := os.WriteFile(elementsSVG, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote element signals", "path", elementsSVG, "elements", len(traces))
	}
	return nil
}

func writeSignalCSV(path string, times, trace []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "pressure"}); err != nil {
		return err
	}
	for i := range trace {
		if err := w.Write([]string{
			strconv.FormatFloat(times[i], 'g', 10, 64),
			strconv.FormatFloat(trace[i], 'g', 10, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func newTOFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tof [dump]",
		Short: "time of flight through the material speed map",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTOF,
	}
	cmd.Flags().StringVar(&tofFrom, "from", "", "origin pixel x,y (default: first source)")
	cmd.Flags().StringVar(&tofTo, "to", "", "query pixel x,y")
	cmd.Flags().IntVar(&stepsPerPixel, "steps-per-pixel", sampling.DefaultStepsPerPixel, "samples per pixel along the ray")
	cmd.Flags().StringVar(&svgOut, "svg", "", "write the ray plot as svg")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parsePixel(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("pixel %q should be x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("pixel %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("pixel %q: %w", s, err)
	}
	return x, y, nil
}

func runTOF(cmd *cobra.Command, args []string) error {
	cfg, d, p, err := openParams(cmd, args)
	if err != nil {
		return err
	}

	ox, oy := p.XLoc[0], p.YLoc[0]
	if tofFrom != "" {
		if ox, oy, err = parsePixel(tofFrom); err != nil {
			return err
		}
	}
	qx, qy, err := parsePixel(tofTo)
	if err != nil {
		return err
	}

	speeds, err := cfg.SpeedsByLabel(d.RawMaterials())
	if err != nil {
		return err
	}
	m, err := sampling.SpeedMap(d.Image, speeds)
	if err != nil {
		return err
	}
	flight, err := sampling.TimeOfFlight(
		sampling.Point{float64(qy), float64(qx)},
		sampling.Point{float64(oy), float64(ox)},
		m, stepsPerPixel,
	)
	if err != nil {
		return err
	}

	// the ray is measured in pixels, speeds are in m/s and the grid in mm
	tof := flight.Time * cellSize(p) * 1e-3

	canvas := viz.NewCanvas(60, 20)
	canvas.DrawBoundaries(d.Image)
	mp := canvas.Mapper(d.Pressure.NX, d.Pressure.NY)
	x0, y0 := mp.Dot(float64(ox), float64(oy))
	x1, y1 := mp.Dot(float64(qx), float64(qy))
	canvas.DrawLine(x0, y0, x1, y1)
	canvas.Mark(x0, y0)
	canvas.Mark(x1, y1)

	w := cmd.OutOrStdout()
	fmt.Fprint(w, canvas.String())
	field(w, "from", "(%d, %d)", ox, oy)
	field(w, "to", "(%d, %d)", qx, qy)
	field(w, "samples", "%d", len(flight.Samples))
	field(w, "time of flight", "%.4f us", tof/1e-6)
	field(w, "pulse-echo", "%.4f us", 2*tof/1e-6)

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(canvas, 4, "#00ff88")), 0644); err != nil {
			return err
		}
		logger.Info("wrote ray plot", "path", svgOut)
	}
	return nil
}

// cellSize is the x grid spacing in mm, or 1 for a single column.
func cellSize(p *dump.Params) float64 {
	if len(p.X) < 2 {
		return 1
	}
	return math.Abs(p.X[1] - p.X[0])
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runs, err := storage.New(cfg.DataDir).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no renders found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDUMP\tTIME\tFRAMES\tSKIP\tMOVIE\tELAPSED")
			for _, r := range runs {
				mv := r.Movie
				if mv == "" {
					mv = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.2fs\n",
					r.ID,
					r.Dump,
					r.Timestamp.Format("2006-01-02 15:04:05"),
					r.Frames,
					r.SkipFrame,
					mv,
					r.Elapsed.Seconds(),
				)
			}
			return w.Flush()
		},
	}
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [render_id]",
		Short: "export the signal of a render as csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return storage.New(cfg.DataDir).CopySignal(cmd.OutOrStdout(), args[0])
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [render_id]",
		Short: "export render metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rec, err := storage.New(cfg.DataDir).Load(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "list simulation parameter templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tFREQ\tGRID\tDESCRIPTION")
			for _, name := range config.ListTemplates() {
				t := config.GetTemplate(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f MHz\t%dx%d\t%s\n", t.Name, t.Mode, t.Frequency/1e6, t.NY, t.NX, t.Description)
			}
			return w.Flush()
		},
	}
}

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template [name]",
		Short: "write a simulation parameter template as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := config.GetTemplate(args[0])
			if t == nil {
				return fmt.Errorf("unknown template: %s (available: %v)", args[0], config.ListTemplates())
			}
			if err := t.Validate(); err != nil {
				return err
			}
			if templateOut == "" {
				templateOut = t.Name + ".yaml"
			}
			if err := config.SaveTemplate(templateOut, t); err != nil {
				return err
			}
			logger.Info("wrote template", "path", templateOut, "points_per_wavelength", fmt.Sprintf("%.1f", t.PointsPerWavelength()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateOut, "output", "o", "", "output file (default <name>.yaml)")
	return cmd
}
