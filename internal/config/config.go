package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/search"
)

const (
	DefaultDimension        = 3
	DefaultDegree           = 3
	DefaultSearchIterations = 2000
	DefaultEscapeRadius     = 10.0
	DefaultMinDensity       = 0.15
	DefaultDensityScale     = 25
	DefaultLyapunovSteps    = 2000
	DefaultIterations       = 1_000_000
	DefaultBurnIn           = DefaultIterations / 100
	DefaultResolution       = 855
	DefaultAlpha            = 0.010
	DefaultAlphaMin         = 0.25
	DefaultMargin           = 1.1
)

type Config struct {
	Dimension int    `yaml:"dimension"`
	Degree    int    `yaml:"degree"`
	Seed      string `yaml:"seed,omitempty"`
	RandSeed  int64  `yaml:"rand_seed"`
	Workers   int    `yaml:"workers"`

	Search SearchConfig `yaml:"search"`
	Render RenderConfig `yaml:"render"`
}

type SearchConfig struct {
	Iterations   int     `yaml:"iterations"`
	EscapeRadius float64 `yaml:"escape_radius"`
	MinDensity   float64 `yaml:"min_density"`

	// DensityScale divides the render resolution into density bins.
	DensityScale  int     `yaml:"density_scale"`
	LyapunovSteps int     `yaml:"lyapunov_steps"`
	RequireChaos  bool    `yaml:"require_chaos"`
	MinLyapunov   float64 `yaml:"min_lyapunov"`
	MaxAttempts   int     `yaml:"max_attempts"`
}

type RenderConfig struct {
	BurnIn     int     `yaml:"burn_in"`
	Iterations int     `yaml:"iterations"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Alpha      float64 `yaml:"alpha"`
	AlphaMin   float64 `yaml:"alpha_min"`
	Margin     float64 `yaml:"margin"`
	Axes       []int   `yaml:"axes,omitempty"`
	AllPlanes  bool    `yaml:"all_planes"`
}

func DefaultConfig() *Config {
	return &Config{
		Dimension: DefaultDimension,
		Degree:    DefaultDegree,
		RandSeed:  1,
		Workers:   1,
		Search: SearchConfig{
			Iterations:    DefaultSearchIterations,
			EscapeRadius:  DefaultEscapeRadius,
			MinDensity:    DefaultMinDensity,
			DensityScale:  DefaultDensityScale,
			LyapunovSteps: DefaultLyapunovSteps,
		},
		Render: RenderConfig{
			BurnIn:     DefaultBurnIn,
			Iterations: DefaultIterations,
			Width:      DefaultResolution,
			Height:     DefaultResolution,
			Alpha:      DefaultAlpha,
			AlphaMin:   DefaultAlphaMin,
			Margin:     DefaultMargin,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Render.Axes = append([]int(nil), c.Render.Axes...)
	return &cp
}

func (c *Config) Shape() poly.Shape {
	return poly.Shape{Dim: c.Dimension, Degree: c.Degree}
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return dynamo.Configf("workers", "must be >= 1, got %d", c.Workers)
	}
	if c.Search.DensityScale < 1 {
		return dynamo.Configf("density_scale", "must be >= 1, got %d", c.Search.DensityScale)
	}
	if err := c.SearchConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.Axes(); err != nil {
		return err
	}
	return c.RenderOptions().Validate()
}

// SearchConfig translates the file layout into search parameters.
func (c *Config) SearchConfig() search.Config {
	bins := min(c.Render.Width, c.Render.Height) / max(1, c.Search.DensityScale)
	return search.Config{
		Shape:            c.Shape(),
		SearchIterations: c.Search.Iterations,
		EscapeRadius:     c.Search.EscapeRadius,
		MinDensity:       c.Search.MinDensity,
		DensityBins:      max(1, bins),
		BurnIn:           c.Render.BurnIn,
		Iterations:       c.Render.Iterations,
		LyapunovSteps:    c.Search.LyapunovSteps,
		RequireChaos:     c.Search.RequireChaos,
		MinLyapunov:      c.Search.MinLyapunov,
		MaxAttempts:      c.Search.MaxAttempts,
	}
}

// Axes returns the configured projection, or the first three coordinates.
func (c *Config) Axes() ([3]int, error) {
	if len(c.Render.Axes) == 0 {
		return raster.DefaultAxes(c.Dimension), nil
	}
	if len(c.Render.Axes) != 3 {
		return [3]int{}, dynamo.Configf("axes", "need 3 entries, got %d", len(c.Render.Axes))
	}
	var axes [3]int
	for i, a := range c.Render.Axes {
		if a < 0 || a >= c.Dimension {
			return [3]int{}, dynamo.Configf("axes", "axis %d out of range for dimension %d", a, c.Dimension)
		}
		axes[i] = a
	}
	return axes, nil
}

func (c *Config) RenderOptions() raster.Options {
	axes, err := c.Axes()
	if err != nil {
		axes = raster.DefaultAxes(c.Dimension)
	}
	return raster.Options{
		Width:    c.Render.Width,
		Height:   c.Render.Height,
		Alpha:    c.Render.Alpha,
		AlphaMin: c.Render.AlphaMin,
		Margin:   c.Render.Margin,
		Axes:     axes,
	}
}
