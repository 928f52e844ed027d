package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/search"
	"github.com/san-kum/attractor/internal/sim"
)

// Scenario is a scripted batch of searches and seed renders.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one job. A step with a seed renders it; otherwise it
// searches for Count attractors. Zero fields keep the base configuration.
type ScenarioStep struct {
	Name         string  `yaml:"name"`
	Family       string  `yaml:"family"`
	Preset       string  `yaml:"preset"`
	Dimension    int     `yaml:"dimension"`
	Degree       int     `yaml:"degree"`
	Seed         string  `yaml:"seed"`
	Count        int     `yaml:"count"`
	Workers      int     `yaml:"workers"`
	RandSeed     int64   `yaml:"rand_seed"`
	MaxAttempts  int     `yaml:"max_attempts"`
	Iterations   int     `yaml:"iterations"`
	BurnIn       int     `yaml:"burn_in"`
	MinDensity   float64 `yaml:"min_density"`
	RequireChaos bool    `yaml:"require_chaos"`
	AllPlanes    bool    `yaml:"all_planes"`
}

// Handler receives every attractor a step produces, typically to render and
// store it, and returns an identifier for the step report.
type Handler func(step ScenarioStep, cfg *config.Config, res *search.Result) (string, error)

// StepResult reports the identifiers a step's attractors were stored under.
type StepResult struct {
	Step  string
	IDs   []string
	Seeds []string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.Configf("scenario", "%s has no steps", path)
	}

	return &scenario, nil
}

// Apply layers the step's overrides onto a copy of base.
func (s ScenarioStep) Apply(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		family := s.Family
		if family == "" {
			family = "cubic"
		}
		p := config.GetPreset(family, s.Preset)
		if p == nil {
			return nil, dynamo.Configf("preset", "unknown preset %s/%s", family, s.Preset)
		}
		cfg = p
	}

	if s.Dimension > 0 {
		cfg.Dimension = s.Dimension
		cfg.Render.Axes = nil
	}
	if s.Degree > 0 {
		cfg.Degree = s.Degree
	}
	if s.Seed != "" {
		cfg.Seed = s.Seed
	}
	if s.Workers > 0 {
		cfg.Workers = s.Workers
	}
	if s.RandSeed != 0 {
		cfg.RandSeed = s.RandSeed
	}
	if s.MaxAttempts > 0 {
		cfg.Search.MaxAttempts = s.MaxAttempts
	}
	if s.Iterations > 0 {
		cfg.Render.Iterations = s.Iterations
		cfg.Render.BurnIn = s.Iterations / 100
	}
	if s.BurnIn > 0 {
		cfg.Render.BurnIn = s.BurnIn
	}
	if s.MinDensity > 0 {
		cfg.Search.MinDensity = s.MinDensity
	}
	if s.RequireChaos {
		cfg.Search.RequireChaos = true
	}
	if s.AllPlanes {
		cfg.Render.AllPlanes = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results of the steps that completed.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, handle Handler) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := dynamo.Logger().With("scenario", scenario.Name)

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("running step", "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		found, err := runStep(ctx, step, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{Step: name}
		for _, res := range found {
			id, err := handle(step, cfg, res)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			sr.IDs = append(sr.IDs, id)
			sr.Seeds = append(sr.Seeds, res.Seed)
		}
		results = append(results, sr)
	}

	return results, nil
}

func runStep(ctx context.Context, step ScenarioStep, cfg *config.Config) ([]*search.Result, error) {
	if cfg.Seed != "" {
		s, err := search.New(cfg.SearchConfig())
		if err != nil {
			return nil, err
		}
		res, err := s.FromSeed(ctx, cfg.Seed)
		if err != nil {
			return nil, err
		}
		return []*search.Result{res}, nil
	}

	count := max(1, step.Count)
	return search.FindMany(ctx, cfg.SearchConfig(), count, cfg.Workers, cfg.RandSeed)
}

// MonteCarloConfig defines a robustness study of one coefficient vector.
type MonteCarloConfig struct {
	Shape  poly.Shape
	Coeffs []float64

	// Perturbation is the half-width of the uniform noise added to every
	// coefficient.
	Perturbation float64
	NumTrials    int
	Window       sim.Window
	DensityBins  int
	MinDensity   float64
	Seed         int64
}

// MonteCarloResult holds the outcome of one perturbed trial.
type MonteCarloResult struct {
	TrialID  int
	Coeffs   []float64
	Diverged bool
	Density  float64

	// Stable is set when the run stayed finite and dense enough.
	Stable bool
}

// RunMonteCarlo renders randomly perturbed copies of the coefficients and
// reports which of them still produce a dense, bounded attractor.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	sampler, err := sim.NewSampler(cfg.Shape)
	if err != nil {
		return nil, err
	}
	if len(cfg.Coeffs) != sampler.Map().Coefficients() {
		return nil, &dynamo.SeedError{Length: len(cfg.Coeffs), Want: sampler.Map().Coefficients(), Wrapped: dynamo.ErrInvalidSeedLength}
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if cfg.Window.Len() == 0 {
		return nil, dynamo.ErrEmptyInput
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	bins := max(1, cfg.DensityBins)
	axes := raster.DefaultAxes(cfg.Shape.Dim)
	pool := sim.NewPool(cfg.Shape.Dim, cfg.Window.Len())
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		coeffs := make([]float64, len(cfg.Coeffs))
		for i, v := range cfg.Coeffs {
			coeffs[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		res := MonteCarloResult{TrialID: trial, Coeffs: coeffs}

		traj := pool.Get()
		err := sampler.RunInto(ctx, coeffs, cfg.Window, traj)
		switch {
		case errors.Is(err, dynamo.ErrDivergence):
			res.Diverged = true
		case err != nil:
			pool.Put(traj)
			return results, err
		default:
			points, perr := raster.Project(traj, axes)
			if perr != nil {
				pool.Put(traj)
				return results, perr
			}
			res.Density = raster.DensityFraction(points, bins, bins)
			res.Stable = res.Density >= cfg.MinDensity
		}
		pool.Put(traj)

		results = append(results, res)
		if (trial+1)%10 == 0 {
			dynamo.Logger().Debug("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
