package sim

import (
	"context"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
)

// pollEvery is the context polling interval in steps. Must be a power of two.
const pollEvery = 1 << 16

// Sampler iterates a polynomial map from the origin. It owns the map's
// scratch space, so each goroutine needs its own Sampler.
type Sampler struct {
	m         *poly.Map
	x, next   dynamo.State
	observers []Observer
}

func NewSampler(shape poly.Shape) (*Sampler, error) {
	m, err := poly.NewMap(shape)
	if err != nil {
		return nil, err
	}
	return &Sampler{
		m:    m,
		x:    make(dynamo.State, shape.Dim),
		next: make(dynamo.State, shape.Dim),
	}, nil
}

func (s *Sampler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Sampler) Map() *poly.Map    { return s.m }
func (s *Sampler) Shape() poly.Shape { return s.m.Shape() }

// Run returns the positions inside w, or a *dynamo.DivergenceError if any
// step, burn-in included, is non-finite or outside the escape radius.
func (s *Sampler) Run(ctx context.Context, coeffs []float64, w Window) (*dynamo.Trajectory, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	traj := dynamo.NewTrajectory(s.m.Shape().Dim, w.Len())
	if err := s.RunInto(ctx, coeffs, w, traj); err != nil {
		return nil, err
	}
	return traj, nil
}

// RunInto is Run writing into dst, which must hold exactly w.Len() positions
// of the sampler's dimension. dst contents are unspecified on error.
func (s *Sampler) RunInto(ctx context.Context, coeffs []float64, w Window, dst *dynamo.Trajectory) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if len(coeffs) != s.m.Coefficients() {
		return &dynamo.SeedError{Length: len(coeffs), Want: s.m.Coefficients(), Wrapped: dynamo.ErrInvalidSeedLength}
	}
	if dst.Dim != s.m.Shape().Dim || dst.Len() != w.Len() {
		return dynamo.Configf("trajectory", "buffer holds %d×%d, want %d×%d",
			dst.Len(), dst.Dim, w.Len(), s.m.Shape().Dim)
	}

	x, next := s.x, s.next
	clear(x)
	r2 := w.EscapeRadius * w.EscapeRadius

	for step := 1; step <= w.End; step++ {
		if step&(pollEvery-1) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		s.m.Step(next, x, coeffs)
		x, next = next, x

		if !x.IsValid() {
			return &dynamo.DivergenceError{Step: step, Reason: dynamo.NonFinite, State: x.Clone()}
		}
		if r2 > 0 && x.NormSq() > r2 {
			return &dynamo.DivergenceError{Step: step, Reason: dynamo.Escaped, State: x.Clone()}
		}

		if step > w.Start {
			copy(dst.At(step-w.Start-1), x)
			for _, obs := range s.observers {
				obs.OnStep(step, x)
			}
		}
	}

	return nil
}
