package main

import (
	"context"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavescope/internal/anim"
	"github.com/san-kum/wavescope/internal/config"
	"github.com/san-kum/wavescope/internal/dump"
	"github.com/san-kum/wavescope/internal/render"
	"github.com/san-kum/wavescope/internal/signal"
	"github.com/san-kum/wavescope/internal/storage"
	"github.com/san-kum/wavescope/internal/viz"
)

const previewCols = 80

var (
	dataDir    string
	logLevel   string
	configFile string
	dumpPath   string
	animate    bool
	movie      string
	still      string
	skipFrame  int
	showSignal bool
	focus      bool
	legendLoc  string
	fps        int
	scale      int
	workers    int
	theme      string

	logger *log.Logger
)

func main() {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flag variables are reset to their
// defaults on every call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wavescope",
		Short: "render pressure wave animations from simulation dumps",
		Long: "wavescope reads a wave simulation dump and renders the pressure field over the\n" +
			"material map, optionally with the pulse-echo signal and the focus regime.\n" +
			"It plays the animation in the terminal (--animate) and writes mp4 or gif movies (--movie).",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runRender,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "render ledger directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.StringVar(&dumpPath, "dump", config.DefaultDump, "simulation dump file")
	f.BoolVar(&animate, "animate", false, "play the time-domain evolution in the terminal")
	f.StringVar(&movie, "movie", "", "write the animation to a file (.mp4 or .gif)")
	f.StringVar(&still, "still", "", "write the first frame as png")
	f.IntVar(&skipFrame, "skip-frame", config.DefaultSkipFrame, "time steps between consecutive frames")
	f.BoolVar(&showSignal, "signal", false, "add the pulse-echo signal panel")
	f.BoolVar(&focus, "focus-regime", false, "draw the focus regime (needs focal_length)")
	f.StringVar(&legendLoc, "legend-loc", config.DefaultLegendLoc, "legend location: matplotlib name or code 0..10")
	f.IntVar(&fps, "fps", config.DefaultFPS, "movie frame rate")
	f.IntVar(&scale, "scale", config.DefaultScale, "pixels per grid cell")
	f.IntVar(&workers, "workers", 0, "parallel frame renderers, 0 means one per cpu")
	f.StringVar(&theme, "theme", config.DefaultTheme, "player theme: "+strings.Join(viz.ThemeNames(), ", "))

	rootCmd.AddCommand(
		newInfoCmd(),
		newSignalCmd(),
		newTOFCmd(),
		newListCmd(),
		newExportCSVCmd(),
		newExportCmd(),
		newTemplatesCmd(),
		newTemplateCmd(),
	)
	return rootCmd
}

func setupLogger(w io.Writer) error {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "wavescope",
	})
	logger.SetLevel(lvl)
	return nil
}

// loadConfig reads --config and lets explicitly set flags win over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if changed("dump") {
		cfg.Dump = dumpPath
	}
	if changed("skip-frame") {
		cfg.Render.SkipFrame = skipFrame
	}
	if changed("signal") {
		cfg.Render.Signal = showSignal
	}
	if changed("focus-regime") {
		cfg.Render.FocusRegime = focus
	}
	if changed("legend-loc") {
		cfg.Render.LegendLoc = legendLoc
	}
	if changed("scale") {
		cfg.Render.Scale = scale
	}
	if changed("fps") {
		cfg.Movie.FPS = fps
	}
	if changed("workers") {
		cfg.Movie.Workers = workers
	}
	if changed("theme") {
		cfg.Theme = theme
	}
	return cfg, nil
}

func loadDump(path string) (*dump.Dump, error) {
	logger.Info("loading simulation file", "path", path)
	h, err := dump.CheckMemory(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("dump header", "nt", h.NT, "ny", h.NY, "nx", h.NX, "bytes", h.DecodedSize())
	d, err := dump.Open(path)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	if cmd.Flags().NFlag() == 0 {
		cmd.SetOut(cmd.ErrOrStderr())
		return cmd.Help()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if movie != "" {
		if err := anim.ValidateMoviePath(movie); err != nil {
			return err
		}
	}
	opts := cfg.RenderOptions()
	if _, err := render.ParseLegendLoc(opts.LegendLoc); err != nil {
		return err
	}
	if _, err := viz.GetTheme(cfg.Theme); err != nil {
		return err
	}

	start := time.Now()
	d, err := loadDump(cfg.Dump)
	if err != nil {
		return err
	}
	p, err := d.Params()
	if err != nil {
		return err
	}

	if opts.FocusRegime {
		if p.HasFocalLength {
			logger.Info("plotting focus regime", "focal_length", p.FocalLength)
		} else {
			logger.Warn("no focal length specified, skipping focus regime")
			opts.FocusRegime = false
		}
	}

	scene, err := render.NewScene(d, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if animate {
		if err := play(scene, cfg.Theme); err != nil {
			return err
		}
	} else {
		logger.Info("skipping animation")
	}

	switch {
	case movie != "":
		if err := writeMovie(ctx, scene, movie, cfg.Movie); err != nil {
			return err
		}
	case animate:
		logger.Info("skipping movie dump")
	}

	if still != "" || (!animate && movie == "") {
		img, err := scene.Frame(0)
		if err != nil {
			return err
		}
		if still != "" {
			logger.Info("writing still frame", "path", still)
			err = anim.WritePNG(still, img)
		} else {
			fmt.Fprint(out, viz.Preview(img, previewCols))
			fmt.Fprintln(out, scene.Title(0))
		}
		scene.Release(img)
		if err != nil {
			return err
		}
	}

	id, err := record(cfg, scene, p, d, time.Since(start))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "render id: %s\n", id)
	return nil
}

func play(scene *render.Scene, theme string) error {
	logger.Info("playing animation", "frames", scene.FrameCount())
	pl, err := viz.NewPlayer(scene, scene.Trace(), previewCols).WithTheme(theme)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(pl, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if done, ok := final.(viz.Player); ok && done.Err() != nil {
		return done.Err()
	}
	return nil
}

func writeMovie(ctx context.Context, scene *render.Scene, path string, mc config.MovieConfig) error {
	l := scene.Layout()
	n := scene.FrameCount()
	logger.Info("writing animation", "path", path, "frames", n, "fps", mc.FPS, "size", fmt.Sprintf("%dx%d", l.Width, l.Height))

	enc, err := anim.NewEncoder(ctx, path, mc.FPS, l.Width, l.Height)
	if err != nil {
		return err
	}
	err = anim.Render(ctx, scene, enc, anim.Options{
		Workers: mc.Workers,
		Progress: func(done, total int) {
			if done%50 == 0 || done == total {
				logger.Debug("encoded frames", "done", done, "total", total)
			}
		},
	})
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	return err
}

// record adds the finished render to the ledger.
func record(cfg *config.Config, scene *render.Scene, p *dump.Params, d *dump.Dump, elapsed time.Duration) (string, error) {
	trace := scene.Trace()
	if trace == nil {
		var err error
		if trace, err = signal.PulseEcho(d.Pressure, p.XLoc, p.YLoc); err != nil {
			return "", err
		}
	}
	times := p.T

	params := map[string]float64{
		"nt": float64(d.Pressure.NT),
		"ny": float64(d.Pressure.NY),
		"nx": float64(d.Pressure.NX),
		"dt": p.Dt,
	}
	if _, peak := signal.Peak(trace); len(trace) > 0 {
		params["peak"] = peak
	}
	if spec, err := signal.NewSpectrum(trace, p.Dt); err == nil {
		params["dominant_hz"] = spec.Dominant()
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(&storage.RenderRecord{
		Dump:        cfg.Dump,
		Frames:      scene.FrameCount(),
		SkipFrame:   cfg.Render.SkipFrame,
		Movie:       movie,
		Still:       still,
		Signal:      cfg.Render.Signal,
		FocusRegime: scene.Focus() != nil,
		Elapsed:     elapsed,
		Params:      params,
	}, times, trace)
}
