package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/attractor/internal/analysis"
	"github.com/san-kum/attractor/internal/automation"
	"github.com/san-kum/attractor/internal/codec"
	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/export"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/optim"
	"github.com/san-kum/attractor/internal/poly"
	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/search"
	"github.com/san-kum/attractor/internal/sim"
	"github.com/san-kum/attractor/internal/storage"
	"github.com/san-kum/attractor/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	family     string
	preset     string
	verbose    bool

	dimension    int
	degree       int
	count        int
	workers      int
	maxAttempts  int
	randSeed     int64
	iterations   int
	burnIn       int
	width        int
	height       int
	allPlanes    bool
	savePos      bool
	requireChaos bool
	metricsAddr  string

	theme     string
	maxPoints int
	svgPoints int

	axis      int
	plotWidth int
	plotRows  int
	output    string

	sweepIndex int
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	perturbation float64
	trials       int

	tuneIndices []int
	tuneLevels  int

	// commands that share a flag name with a different default bind their own
	viewIters      int
	sweepIters     int
	sweepBurnIn    int
	robustIters    int
	robustRandSeed int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attractor",
		Short: "polynomial strange attractor search and renderer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".attractor", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&family, "family", "cubic", "preset family")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "search for attractors and save their images",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	shapeFlags(searchCmd)
	renderFlags(searchCmd)
	searchCmd.Flags().IntVarP(&count, "count", "n", 1, "number of attractors to find")
	searchCmd.Flags().IntVarP(&workers, "workers", "w", 1, "parallel search workers")
	searchCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempt budget (0 = unlimited)")
	searchCmd.Flags().Int64Var(&randSeed, "rand-seed", time.Now().UnixNano(), "random seed")
	searchCmd.Flags().BoolVar(&savePos, "save-positions", false, "store positions.csv with each run")
	searchCmd.Flags().BoolVar(&requireChaos, "require-chaos", false, "reject non-chaotic candidates")
	searchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	renderCmd := &cobra.Command{
		Use:   "render [seed]",
		Short: "render an attractor from its seed",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSeed,
	}
	shapeFlags(renderCmd)
	renderFlags(renderCmd)
	renderCmd.Flags().BoolVar(&savePos, "save-positions", false, "store positions.csv with the run")

	viewCmd := &cobra.Command{
		Use:   "view [seed]",
		Short: "search or load an attractor and explore it in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewAttractor,
	}
	shapeFlags(viewCmd)
	viewCmd.Flags().IntVarP(&workers, "workers", "w", 1, "parallel search workers")
	viewCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempt budget (0 = unlimited)")
	viewCmd.Flags().Int64Var(&randSeed, "rand-seed", time.Now().UnixNano(), "random seed")
	viewCmd.Flags().IntVar(&viewIters, "iterations", 200_000, "iterations")
	viewCmd.Flags().StringVar(&theme, "theme", "ember", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	viewCmd.Flags().IntVar(&maxPoints, "points", 40_000, "points drawn per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one coordinate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&axis, "axis", 0, "coordinate to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotRows, "height", 15, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "export a run's point cloud as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run>/cloud.svg)")
	svgCmd.Flags().IntVar(&svgPoints, "points", 50_000, "maximum points written")
	svgCmd.Flags().StringVar(&theme, "theme", "ember", "colour theme")

	decodeCmd := &cobra.Command{
		Use:   "decode [seed]",
		Short: "print the coefficient of every term",
		Args:  cobra.ExactArgs(1),
		RunE:  decodeSeed,
	}
	shapeFlags(decodeCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [seed]",
		Short: "bifurcation diagram over one coefficient",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepSeed,
	}
	shapeFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepIndex, "index", 0, "coefficient to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -1.2, "lower bound")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.2, "upper bound")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 80, "parameter steps")
	sweepCmd.Flags().IntVar(&axis, "axis", 0, "coordinate to record")
	sweepCmd.Flags().IntVar(&sweepIters, "iterations", 2000, "iterations per step")
	sweepCmd.Flags().IntVar(&sweepBurnIn, "burn-in", 1000, "iterations discarded per step")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted batch of searches and renders",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&savePos, "save-positions", false, "store positions.csv with each run")

	robustCmd := &cobra.Command{
		Use:   "robust [seed]",
		Short: "monte carlo robustness of a seed under coefficient noise",
		Args:  cobra.ExactArgs(1),
		RunE:  robustSeed,
	}
	shapeFlags(robustCmd)
	robustCmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "noise half-width per coefficient")
	robustCmd.Flags().IntVar(&trials, "trials", 50, "number of perturbed runs")
	robustCmd.Flags().IntVar(&robustIters, "iterations", 20_000, "iterations per trial")
	robustCmd.Flags().Int64Var(&robustRandSeed, "rand-seed", 1, "random seed")

	tuneCmd := &cobra.Command{
		Use:   "tune [seed]",
		Short: "grid search a few coefficients of a seed for the densest attractor",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneSeed,
	}
	shapeFlags(tuneCmd)
	tuneCmd.Flags().IntSliceVar(&tuneIndices, "index", []int{0}, "coefficients to vary")
	tuneCmd.Flags().IntVar(&tuneLevels, "levels", 25, "values tried per coefficient")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			families := config.ListFamilies()
			if len(args) > 0 {
				families = args
			}
			sort.Strings(families)
			for _, f := range families {
				presets := config.ListPresets(f)
				if len(presets) == 0 {
					fmt.Printf("no presets for family: %s\n", f)
					continue
				}
				sort.Strings(presets)
				fmt.Printf("presets for %s:\n", f)
				for _, p := range presets {
					cfg := config.GetPreset(f, p)
					fmt.Printf("  %-10s n=%d d=%d %s\n", p, cfg.Dimension, cfg.Degree, cfg.Seed)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(searchCmd, renderCmd, viewCmd, listCmd, plotCmd, exportCmd, svgCmd, decodeCmd, sweepCmd, batchCmd, robustCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func shapeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&dimension, "dim", "d", config.DefaultDimension, "state dimension")
	cmd.Flags().IntVar(&degree, "degree", config.DefaultDegree, "polynomial degree")
}

func renderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "iterations")
	cmd.Flags().IntVar(&burnIn, "burn-in", config.DefaultBurnIn, "iterations discarded before drawing")
	cmd.Flags().IntVar(&width, "width", config.DefaultResolution, "image width")
	cmd.Flags().IntVar(&height, "height", config.DefaultResolution, "image height")
	cmd.Flags().BoolVar(&allPlanes, "all-planes", false, "render every axis triple")
}

// flagVars names the variables a command bound its window and seed flags
// to. A nil field leaves the config value alone.
type flagVars struct {
	iterations *int
	burnIn     *int
	randSeed   *int64
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command, vars flagVars) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(family, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(family))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dimension = dimension
		cfg.Render.Axes = nil
	}
	if flags.Changed("degree") {
		cfg.Degree = degree
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("max-attempts") {
		cfg.Search.MaxAttempts = maxAttempts
	}
	// An unset --rand-seed still wins over the built-in default, which is fixed.
	if vars.randSeed != nil && (flags.Changed("rand-seed") || (configFile == "" && preset == "")) {
		cfg.RandSeed = *vars.randSeed
	}
	if vars.iterations != nil && flags.Changed("iterations") {
		cfg.Render.Iterations = *vars.iterations
		cfg.Render.BurnIn = cfg.Render.Iterations / 100
	}
	if vars.burnIn != nil && flags.Changed("burn-in") {
		cfg.Render.BurnIn = *vars.burnIn
	}
	if flags.Changed("width") {
		cfg.Render.Width = width
	}
	if flags.Changed("height") {
		cfg.Render.Height = height
	}
	if flags.Changed("all-planes") {
		cfg.Render.AllPlanes = allPlanes
	}
	if flags.Changed("require-chaos") {
		cfg.Search.RequireChaos = requireChaos
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func serveMetrics(addr string) func() {
	srv := &http.Server{Addr: addr, Handler: metrics.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			dynamo.Logger().Error("metrics server", "addr", addr, "err", err)
		}
	}()
	dynamo.Logger().Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{iterations: &iterations, burnIn: &burnIn, randSeed: &randSeed})
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be >= 1, got %d", count)
	}

	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr)
		defer stop()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching for %d attractor(s), n=%d d=%d, %d worker(s)...\n", count, cfg.Dimension, cfg.Degree, cfg.Workers)
	start := time.Now()

	results, err := search.FindMany(ctx, cfg.SearchConfig(), count, cfg.Workers, cfg.RandSeed)
	if err != nil && len(results) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSEED\tATTEMPTS\tDENSITY\tLYAPUNOV")
	for _, res := range results {
		runID, serr := saveResult(st, cfg, res)
		if serr != nil {
			return serr
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.4f\n", runID, res.Seed, res.Attempts, res.Density, res.Lyapunov)
	}
	w.Flush()

	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return err
}

func renderSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{iterations: &iterations, burnIn: &burnIn})
	if err != nil {
		return err
	}

	s, err := search.New(cfg.SearchConfig())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("rendering %s...\n", args[0])
	res, err := s.FromSeed(ctx, args[0])
	if err != nil {
		return err
	}

	runID, err := saveResult(st, cfg, res)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("density: %.3f\n", res.Density)
	return nil
}

// saveResult rasterizes every requested plane of res and stores the run.
func saveResult(st *storage.Store, cfg *config.Config, res *search.Result) (string, error) {
	r, err := raster.NewRenderer(cfg.RenderOptions())
	if err != nil {
		return "", err
	}

	planes := [][3]int{r.Options().Axes}
	if cfg.Render.AllPlanes {
		planes = raster.Planes(cfg.Dimension)
	}

	images := make([]storage.PlaneImage, 0, len(planes))
	for _, axes := range planes {
		img, err := r.RenderAxes(res.Trajectory, axes)
		if err != nil {
			return "", fmt.Errorf("render plane %v: %w", axes, err)
		}
		images = append(images, storage.PlaneImage{Axes: axes, Image: img})
	}

	meta := &storage.RunMetadata{
		Dimension:    cfg.Dimension,
		Degree:       cfg.Degree,
		Seed:         res.Seed,
		Coefficients: res.Coeffs,
		RandSeed:     cfg.RandSeed,
		Attempts:     res.Attempts,
		Density:      res.Density,
		Lyapunov:     res.Lyapunov,
		BurnIn:       cfg.Render.BurnIn,
		Iterations:   cfg.Render.Iterations,
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		ElapsedMS:    res.Elapsed.Milliseconds(),
	}

	var traj *dynamo.Trajectory
	if savePos {
		traj = res.Trajectory
	}
	return st.Save(meta, images, traj)
}

func viewAttractor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{iterations: &viewIters, randSeed: &randSeed})
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("iterations") {
		cfg.Render.Iterations = viewIters
		cfg.Render.BurnIn = viewIters / 100
	}
	scfg := cfg.SearchConfig()

	seed := cfg.Seed
	if len(args) > 0 {
		seed = args[0]
	}

	run := func(ctx context.Context, obs search.Observer) (*search.Result, error) {
		if seed != "" {
			s, err := search.New(scfg)
			if err != nil {
				return nil, err
			}
			return s.FromSeed(ctx, seed)
		}
		return search.FindParallel(ctx, scfg, cfg.Workers, cfg.RandSeed, search.WithObserver(obs))
	}

	title := fmt.Sprintf("attractor n=%d d=%d", cfg.Dimension, cfg.Degree)
	res, err := viz.Run(run, viz.Options{
		Title:       title,
		Theme:       theme,
		MaxPoints:   maxPoints,
		MaxAttempts: cfg.Search.MaxAttempts,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	if res != nil {
		fmt.Printf("seed: %s\n", res.Seed)
	}
	return nil
}

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
	fmt.Fprintln(w, "RUN ID\tSHAPE\tSEED\tDENSITY\tPLANES\tTIME")
	for _, r := range runs {
		seed := r.Seed
		if len(seed) > 24 {
			seed = seed[:21] + "..."
		}
		fmt.Fprintf(w, "%s\tn%d d%d\t%s\t%.3f\t%d\t%s\n",
			r.ID, r.Dimension, r.Degree, seed, r.Density, len(r.Images),
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// loadTrajectory returns stored positions, regenerating them from the
// coefficients when the run was saved without.
func loadTrajectory(ctx context.Context, st *storage.Store, meta *storage.RunMetadata) (*dynamo.Trajectory, error) {
	traj, err := st.LoadPositions(meta.ID)
	if err == nil {
		return traj, nil
	}
	if !errors.Is(err, storage.ErrNoPositions) {
		return nil, err
	}

	sampler, err := sim.NewSampler(poly.Shape{Dim: meta.Dimension, Degree: meta.Degree})
	if err != nil {
		return nil, err
	}
	dynamo.Logger().Debug("regenerating positions", "run", meta.ID, "iterations", meta.Iterations)
	return sampler.Run(ctx, meta.Coefficients, sim.Window{Start: meta.BurnIn, End: meta.Iterations})
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if axis < 0 || axis >= meta.Dimension {
		return fmt.Errorf("axis %d out of range for dimension %d", axis, meta.Dimension)
	}

	ctx, cancel := signalContext()
	defer cancel()

	traj, err := loadTrajectory(ctx, st, meta)
	if err != nil {
		return err
	}

	values := traj.Axis(axis)
	if len(values) == 0 {
		return dynamo.ErrEmptyInput
	}
	if len(values) > plotWidth*4 {
		values = values[:plotWidth*4]
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(plotRows),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("x%d over the first %d steps of %s", axis+1, len(values), meta.ID)))

	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enum, err := poly.NewEnumerator(poly.Shape{Dim: meta.Dimension, Degree: meta.Degree})
	if err != nil {
		return err
	}

	traj, err := st.LoadPositions(meta.ID)
	if err != nil && !errors.Is(err, storage.ErrNoPositions) {
		return err
	}

	data := storage.NewExport(meta, enum.Terms(), traj)
	if output == "" {
		return data.Write(os.Stdout)
	}
	if err := data.WriteFile(output); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", output)
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	traj, err := loadTrajectory(ctx, st, meta)
	if err != nil {
		return err
	}

	axes := raster.DefaultAxes(meta.Dimension)
	if len(meta.Images) > 0 {
		axes = meta.Images[0].Axes
	}
	points, err := raster.Project(traj, axes)
	if err != nil {
		return err
	}
	if svgPoints > 0 && len(points) > svgPoints {
		stride := (len(points) + svgPoints - 1) / svgPoints
		sub := make([]raster.Point3, 0, svgPoints)
		for i := 0; i < len(points); i += stride {
			sub = append(sub, points[i])
		}
		points = sub
	}

	opts := raster.DefaultOptions()
	opts.Width, opts.Height = meta.Width, meta.Height
	opts.Axes = axes

	path := output
	if path == "" {
		path = filepath.Join(st.Dir(meta.ID), "cloud.svg")
	}
	if err := export.SavePointsSVG(path, points, opts, string(viz.GetTheme(theme).Primary)); err != nil {
		return err
	}
	fmt.Printf("wrote %d points to %s\n", len(points), path)
	return nil
}

func decodeSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{})
	if err != nil {
		return err
	}

	c, err := codec.New(cfg.Shape())
	if err != nil {
		return err
	}
	coeffs, err := c.Decode(args[0])
	if err != nil {
		return err
	}

	enum, err := poly.NewEnumerator(cfg.Shape())
	if err != nil {
		return err
	}
	terms := enum.Terms()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COORD\tTERM\tCOEFF")
	for i, v := range coeffs {
		fmt.Fprintf(w, "x%d'\t%s\t%+.1f\n", i/len(terms)+1, monomial(terms[i%len(terms)]), v)
	}
	return w.Flush()
}

func monomial(exps []int) string {
	var parts []string
	for i, e := range exps {
		switch {
		case e == 1:
			parts = append(parts, fmt.Sprintf("x%d", i+1))
		case e > 1:
			parts = append(parts, fmt.Sprintf("x%d^%d", i+1, e))
		}
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "*")
}

func sweepSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{})
	if err != nil {
		return err
	}

	c, err := codec.New(cfg.Shape())
	if err != nil {
		return err
	}
	coeffs, err := c.Decode(args[0])
	if err != nil {
		return err
	}

	sampler, err := sim.NewSampler(cfg.Shape())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	points, err := analysis.BifurcationDiagram(ctx, sampler, coeffs, analysis.Sweep{
		Index:  sweepIndex,
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
		Axis:   axis,
		Window: sim.Window{Start: sweepBurnIn, End: sweepIters},
	})
	if err != nil {
		return err
	}

	fmt.Printf("coefficient %d in [%.2f, %.2f], x%d\n\n", sweepIndex, sweepMin, sweepMax, axis+1)
	fmt.Println(analysis.BifurcationToASCII(points, sweepSteps, 24))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd, flagVars{})
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	handle := func(_ automation.ScenarioStep, cfg *config.Config, res *search.Result) (string, error) {
		return saveResult(st, cfg, res)
	}

	results, err := automation.RunScenario(ctx, sc, base, handle)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSEED")
	for _, r := range results {
		for i, id := range r.IDs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Step, id, r.Seeds[i])
		}
	}
	w.Flush()
	return err
}

func robustSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{})
	if err != nil {
		return err
	}
	c, err := codec.New(cfg.Shape())
	if err != nil {
		return err
	}
	coeffs, err := c.Decode(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	scfg := cfg.SearchConfig()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Shape:        cfg.Shape(),
		Coeffs:       coeffs,
		Perturbation: perturbation,
		NumTrials:    trials,
		Window:       sim.Window{Start: robustIters / 100, End: robustIters},
		DensityBins:  scfg.DensityBins,
		MinDensity:   scfg.MinDensity,
		Seed:         robustRandSeed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	densities := make([]float64, 0, len(results))
	for _, r := range results {
		densities = append(densities, r.Density)
	}

	fmt.Printf("perturbation ±%g over %d trials: %d stable, %d unstable\n\n", perturbation, len(results), stable, unstable)
	if len(densities) > 0 {
		fmt.Println(asciigraph.Plot(densities,
			asciigraph.Height(10),
			asciigraph.Caption("density per trial")))
	}
	return nil
}

func tuneSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, flagVars{})
	if err != nil {
		return err
	}
	c, err := codec.New(cfg.Shape())
	if err != nil {
		return err
	}
	coeffs, err := c.Decode(args[0])
	if err != nil {
		return err
	}

	ranges := make([][]float64, len(tuneIndices))
	for i := range ranges {
		ranges[i] = optim.Linspace(codec.Level(0), codec.Level(codec.Levels-1), tuneLevels)
	}
	grid, err := optim.NewGridSearch(tuneIndices, ranges)
	if err != nil {
		return err
	}

	sampler, err := sim.NewSampler(cfg.Shape())
	if err != nil {
		return err
	}
	scfg := cfg.SearchConfig()
	window := sim.Window{End: scfg.SearchIterations, EscapeRadius: scfg.EscapeRadius}
	axes := raster.DefaultAxes(cfg.Dimension)

	density := func(ctx context.Context, coeffs []float64) (float64, error) {
		traj, err := sampler.Run(ctx, coeffs, window)
		if err != nil {
			return 0, err
		}
		points, err := raster.Project(traj, axes)
		if err != nil {
			return 0, err
		}
		return raster.DensityFraction(points, scfg.DensityBins, scfg.DensityBins), nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	before, err := density(ctx, coeffs)
	if err != nil && !errors.Is(err, dynamo.ErrDivergence) {
		return err
	}

	best, score, err := grid.Search(ctx, coeffs, density)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("every grid point diverged")
	}

	seed, err := c.Encode(best)
	if err != nil {
		return err
	}
	fmt.Printf("density %.3f -> %.3f\n", before, score)
	fmt.Printf("seed: %s\n", seed)
	return nil
}
