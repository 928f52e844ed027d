package analysis

import (
	"math"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
)

// LyapunovExponent estimates the largest Lyapunov exponent of a polynomial
// map, in nats per iteration. A positive value indicates chaos; a fixed point
// or periodic orbit gives a value at or below zero.
//
// Algorithm:
// 1. Run two trajectories from x0 and x0 + perturbation along the first axis
// 2. After each step measure their separation d and add ln(d/d0)
// 3. Pull the second trajectory back to distance d0 along the same direction
//
// x0 should already lie on the attractor, e.g. the last position of a
// burned-in trajectory. The estimate stops early and returns the running
// average if either trajectory turns non-finite.
func LyapunovExponent(m *poly.Map, coeffs []float64, x0 dynamo.State, steps int, perturbation float64) float64 {
	if len(x0) == 0 || steps <= 0 || perturbation <= 0 {
		return 0
	}

	d0 := perturbation
	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0
	next := make(dynamo.State, len(x0))

	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		m.Step(next, x, coeffs)
		x, next = next, x
		m.Step(next, xp, coeffs)
		xp, next = next, xp

		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := 0.0
		for j := range x {
			diff := xp[j] - x[j]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)

		if sep == 0 {
			// collapsed onto the same orbit; restart the perturbation
			copy(xp, x)
			xp[0] += d0
			sumLog += math.Log(math.SmallestNonzeroFloat64 / d0)
			count++
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}
