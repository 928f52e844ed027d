package raster

import (
	"github.com/san-kum/attractor/internal/dynamo"
)

// Options control rasterization. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Width    int     `yaml:"width" json:"width"`
	Height   int     `yaml:"height" json:"height"`
	Alpha    float64 `yaml:"alpha" json:"alpha"`
	AlphaMin float64 `yaml:"alpha_min" json:"alpha_min"`

	// Margin > 0 fits an aspect-preserving viewport padded by this factor.
	// Zero stretches the data to fill the image exactly.
	Margin float64 `yaml:"margin" json:"margin"`

	Axes [3]int `yaml:"axes" json:"axes"`
}

func DefaultOptions() Options {
	return Options{
		Width:    855,
		Height:   855,
		Alpha:    0.010,
		AlphaMin: 0.25,
		Axes:     [3]int{0, 1, 2},
	}
}

func (o Options) Validate() error {
	if o.Width < 1 || o.Height < 1 {
		return dynamo.Configf("render size", "must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.Alpha <= 0 {
		return dynamo.Configf("alpha", "must be positive, got %g", o.Alpha)
	}
	if o.AlphaMin < 0 || o.AlphaMin >= 1 {
		return dynamo.Configf("alpha_min", "must be in [0, 1), got %g", o.AlphaMin)
	}
	if o.Margin < 0 {
		return dynamo.Configf("margin", "must be >= 0, got %g", o.Margin)
	}
	return nil
}

// Renderer runs the full pipeline and reuses its accumulation grid between
// calls. Not safe for concurrent use.
type Renderer struct {
	opts Options
	grid *Grid
}

func NewRenderer(opts Options) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, grid: NewGrid(opts.Width, opts.Height)}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// Render draws traj on the configured axes.
func (r *Renderer) Render(traj *dynamo.Trajectory) (*Image, error) {
	return r.RenderAxes(traj, r.opts.Axes)
}

func (r *Renderer) RenderAxes(traj *dynamo.Trajectory, axes [3]int) (*Image, error) {
	points, err := Project(traj, axes)
	if err != nil {
		return nil, err
	}
	return r.RenderPoints(points)
}

func (r *Renderer) RenderPoints(points []Point3) (*Image, error) {
	b, err := ComputeBounds(points)
	if err != nil {
		return nil, err
	}
	if r.opts.Margin > 0 {
		b = b.Fit(r.opts.Width, r.opts.Height, r.opts.Margin)
	}

	norm := Normalize(points, b, r.opts.Width, r.opts.Height, r.opts.AlphaMin)
	r.grid.Reset()
	Accumulate(r.grid, norm, r.opts.Alpha, r.opts.AlphaMin)
	return Encode(r.grid), nil
}
