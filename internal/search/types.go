package search

import (
	"math/rand"
	"time"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
)

// State is where an attempt ended.
type State int

const (
	Generating State = iota
	Escaped
	Sparse
	Periodic
	Accepted
)

func (s State) String() string {
	switch s {
	case Generating:
		return "generating"
	case Escaped:
		return "escaped"
	case Sparse:
		return "sparse"
	case Periodic:
		return "periodic"
	case Accepted:
		return "accepted"
	}
	return "unknown"
}

// Config controls the rejection sampler. Iteration counts are steps from the
// origin.
type Config struct {
	Shape poly.Shape

	// SearchIterations is the length of the cheap first run that must stay
	// inside EscapeRadius and fill MinDensity of the density grid.
	SearchIterations int
	EscapeRadius     float64
	MinDensity       float64
	DensityBins      int

	// The accepted trajectory holds positions BurnIn+1..Iterations.
	BurnIn     int
	Iterations int

	// LyapunovSteps > 0 estimates the largest Lyapunov exponent of every
	// dense candidate. With RequireChaos, candidates at or below
	// MinLyapunov are rejected as Periodic.
	LyapunovSteps int
	RequireChaos  bool
	MinLyapunov   float64

	// MaxAttempts bounds the search; zero searches until cancelled.
	MaxAttempts int
}

// DefaultConfig is a cubic map in three dimensions.
func DefaultConfig() Config {
	return Config{
		Shape:            poly.Shape{Dim: 3, Degree: 3},
		SearchIterations: 2000,
		EscapeRadius:     10,
		MinDensity:       0.15,
		DensityBins:      34,
		BurnIn:           10_000,
		Iterations:       1_000_000,
		LyapunovSteps:    2000,
		MinLyapunov:      0,
		MaxAttempts:      0,
	}
}

func (c Config) Validate() error {
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	if c.SearchIterations < 2 {
		return dynamo.Configf("search_iterations", "must be >= 2, got %d", c.SearchIterations)
	}
	if c.EscapeRadius <= 0 {
		return dynamo.Configf("escape_radius", "must be positive, got %g", c.EscapeRadius)
	}
	if c.MinDensity < 0 || c.MinDensity > 1 {
		return dynamo.Configf("min_density", "must be in [0, 1], got %g", c.MinDensity)
	}
	if c.DensityBins < 1 {
		return dynamo.Configf("density_bins", "must be >= 1, got %d", c.DensityBins)
	}
	if c.BurnIn < 0 || c.Iterations <= c.BurnIn {
		return dynamo.Configf("iterations", "need 0 <= burn_in < iterations, got %d and %d", c.BurnIn, c.Iterations)
	}
	if c.LyapunovSteps < 0 {
		return dynamo.Configf("lyapunov_steps", "must be >= 0, got %d", c.LyapunovSteps)
	}
	if c.RequireChaos && c.LyapunovSteps == 0 {
		return dynamo.Configf("require_chaos", "needs lyapunov_steps > 0")
	}
	if c.MaxAttempts < 0 {
		return dynamo.Configf("max_attempts", "must be >= 0, got %d", c.MaxAttempts)
	}
	return nil
}

// Result is an accepted attractor.
type Result struct {
	Coeffs     []float64
	Seed       string
	Trajectory *dynamo.Trajectory

	// Attempts is the number of coefficient vectors drawn up to and
	// including this one, across all workers.
	Attempts int
	Worker   int
	Density  float64

	// Lyapunov is zero when the estimate is disabled.
	Lyapunov float64
	Elapsed  time.Duration
}

// Attempt is reported to observers once per coefficient vector.
type Attempt struct {
	Worker   int
	Number   int
	State    State
	Density  float64
	Lyapunov float64

	// Step is the iteration at which an Escaped attempt diverged.
	Step     int
	Duration time.Duration
}

// Observer receives every attempt. Parallel searches call it from several
// goroutines at once.
type Observer interface {
	OnAttempt(Attempt)
}

type ObserverFunc func(Attempt)

func (f ObserverFunc) OnAttempt(a Attempt) { f(a) }

// Generator fills dst with a candidate coefficient vector.
type Generator func(dst []float64, rng *rand.Rand)
