// Package search finds polynomial maps with strange attractors by rejection
// sampling.
//
// Each attempt draws a coefficient vector and walks it through
//
//	Generating → Escaped | Sparse | Periodic | Accepted
//
// A candidate escapes when its short search run leaves the escape radius or
// overflows, is sparse when that run fills too few bins of the density grid,
// and is periodic when the optional Lyapunov gate finds no chaos. Survivors
// are run again over the full render window and returned.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/san-kum/attractor/internal/analysis"
	"github.com/san-kum/attractor/internal/codec"
	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/sim"
)

const perturbation = 1e-8

// Searcher runs attempts on one goroutine. Use FindParallel for several.
type Searcher struct {
	cfg       Config
	codec     *codec.Codec
	sampler   *sim.Sampler
	pool      *sim.Pool
	rng       *rand.Rand
	gen       Generator
	observers []Observer
	worker    int
	claimed   *atomic.Int64
	coeffs    []float64
}

func New(cfg Config, opts ...Option) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.New(cfg.Shape)
	if err != nil {
		return nil, err
	}
	sampler, err := sim.NewSampler(cfg.Shape)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		cfg:     cfg,
		codec:   c,
		sampler: sampler,
		pool:    sim.NewPool(cfg.Shape.Dim, cfg.SearchIterations),
		coeffs:  make([]float64, c.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.gen == nil {
		s.gen = c.RandomInto
	}
	if s.claimed == nil {
		s.claimed = new(atomic.Int64)
	}
	return s, nil
}

func (s *Searcher) Config() Config     { return s.cfg }
func (s *Searcher) Codec() *codec.Codec { return s.codec }

// Find draws coefficient vectors until one is accepted, the attempt budget
// runs out or ctx is done. Rejected attempts never surface as errors.
func (s *Searcher) Find(ctx context.Context) (*Result, error) {
	res, err := s.find(ctx)
	if errors.Is(err, dynamo.ErrSearchExhausted) {
		metrics.ObserveExhausted()
	}
	return res, err
}

func (s *Searcher) find(ctx context.Context) (*Result, error) {
	log := dynamo.Logger()
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := int(s.claimed.Add(1))
		if s.cfg.MaxAttempts > 0 && n > s.cfg.MaxAttempts {
			return nil, &dynamo.ExhaustedError{Attempts: s.cfg.MaxAttempts}
		}

		t0 := time.Now()
		res, att, err := s.attempt(ctx)
		if err != nil {
			return nil, err
		}
		att.Worker = s.worker
		att.Number = n
		att.Duration = time.Since(t0)

		metrics.ObserveAttempt(att.State.String(), att.Duration)
		for _, o := range s.observers {
			o.OnAttempt(att)
		}
		log.Debug("search attempt",
			"worker", s.worker,
			"attempt", n,
			"state", att.State,
			"density", att.Density,
			"step", att.Step)

		if res == nil {
			continue
		}

		res.Attempts = n
		res.Worker = s.worker
		res.Elapsed = time.Since(start)
		metrics.ObserveAccepted(res.Density)
		log.Info("attractor accepted",
			"seed", res.Seed,
			"attempts", n,
			"density", res.Density,
			"lyapunov", res.Lyapunov)
		return res, nil
	}
}

// attempt returns a nil Result for a rejected candidate. err is only set when
// ctx ends mid-run.
func (s *Searcher) attempt(ctx context.Context) (*Result, Attempt, error) {
	s.gen(s.coeffs, s.rng)
	att := Attempt{State: Generating}

	buf := s.pool.Get()
	defer s.pool.Put(buf)

	w := sim.Window{Start: 0, End: s.cfg.SearchIterations, EscapeRadius: s.cfg.EscapeRadius}
	if err := s.sampler.RunInto(ctx, s.coeffs, w, buf); err != nil {
		return s.rejectDivergence(att, err)
	}

	points, err := raster.Project(buf, raster.DefaultAxes(s.cfg.Shape.Dim))
	if err != nil {
		return nil, att, err
	}
	att.Density = raster.DensityFraction(points, s.cfg.DensityBins, s.cfg.DensityBins)
	if att.Density < s.cfg.MinDensity {
		att.State = Sparse
		return nil, att, nil
	}

	if s.cfg.LyapunovSteps > 0 {
		x0 := buf.At(buf.Len() - 1).Clone()
		att.Lyapunov = analysis.LyapunovExponent(s.sampler.Map(), s.coeffs, x0, s.cfg.LyapunovSteps, perturbation)
		if s.cfg.RequireChaos && att.Lyapunov <= s.cfg.MinLyapunov {
			att.State = Periodic
			return nil, att, nil
		}
	}

	t0 := time.Now()
	traj, err := s.sampler.Run(ctx, s.coeffs, s.renderWindow())
	if err != nil {
		return s.rejectDivergence(att, err)
	}
	metrics.ObserveRender("sample", time.Since(t0))

	att.State = Accepted
	res := &Result{
		Coeffs:     append([]float64(nil), s.coeffs...),
		Trajectory: traj,
		Density:    att.Density,
		Lyapunov:   att.Lyapunov,
	}
	res.Seed, _ = s.codec.Encode(res.Coeffs)
	return res, att, nil
}

func (s *Searcher) rejectDivergence(att Attempt, err error) (*Result, Attempt, error) {
	var de *dynamo.DivergenceError
	if !errors.As(err, &de) {
		return nil, att, err
	}
	att.State = Escaped
	att.Step = de.Step
	return nil, att, nil
}

// The render window checks finiteness only. A long render may wander past
// the search radius without diverging.
func (s *Searcher) renderWindow() sim.Window {
	return sim.Window{Start: s.cfg.BurnIn, End: s.cfg.Iterations}
}

// FromSeed renders an explicit seed without any filtering. Seed and
// divergence errors are returned as-is since the seed is user input.
func (s *Searcher) FromSeed(ctx context.Context, seed string) (*Result, error) {
	coeffs, err := s.codec.Decode(seed)
	if err != nil {
		return nil, err
	}
	return s.FromCoefficients(ctx, coeffs)
}

// FromCoefficients is FromSeed for a vector that may lie off the seed grid.
func (s *Searcher) FromCoefficients(ctx context.Context, coeffs []float64) (*Result, error) {
	start := time.Now()
	traj, err := s.sampler.Run(ctx, coeffs, s.renderWindow())
	if err != nil {
		return nil, fmt.Errorf("render coefficients: %w", err)
	}
	metrics.ObserveRender("sample", time.Since(start))

	res := &Result{
		Coeffs:     append([]float64(nil), coeffs...),
		Trajectory: traj,
		Attempts:   1,
		Worker:     s.worker,
	}
	res.Seed, _ = s.codec.Encode(coeffs)

	points, err := raster.Project(traj, raster.DefaultAxes(s.cfg.Shape.Dim))
	if err != nil {
		return nil, err
	}
	res.Density = raster.DensityFraction(points, s.cfg.DensityBins, s.cfg.DensityBins)
	if s.cfg.LyapunovSteps > 0 && traj.Len() > 0 {
		x0 := traj.At(traj.Len() - 1).Clone()
		res.Lyapunov = analysis.LyapunovExponent(s.sampler.Map(), coeffs, x0, s.cfg.LyapunovSteps, perturbation)
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
