package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/attractor/internal/dynamo"
)

// Objective scores a coefficient vector; higher is better. Returning an
// error wrapping dynamo.ErrDivergence skips the point.
type Objective func(ctx context.Context, coeffs []float64) (float64, error)

// GridSearch tries every combination of values for a few coefficients of a
// base vector and keeps the best scoring one.
type GridSearch struct {
	indices []int
	ranges  [][]float64
}

func NewGridSearch(indices []int, ranges [][]float64) (*GridSearch, error) {
	if len(indices) != len(ranges) {
		return nil, dynamo.Configf("grid", "%d indices but %d ranges", len(indices), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.Configf("grid", "range %d is empty", i)
		}
	}
	return &GridSearch{indices: indices, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search returns the best coefficients and their score. base is not
// modified. If every point diverges the score is -Inf and best is nil.
func (g *GridSearch) Search(ctx context.Context, base []float64, objective Objective) ([]float64, float64, error) {
	for _, idx := range g.indices {
		if idx < 0 || idx >= len(base) {
			return nil, 0, dynamo.Configf("grid", "index %d out of range [0, %d)", idx, len(base))
		}
	}

	current := make([]float64, len(base))
	copy(current, base)

	best := math.Inf(-1)
	var bestCoeffs []float64

	err := g.searchRecursive(ctx, 0, current, objective, &best, &bestCoeffs)
	return bestCoeffs, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current []float64,
	objective Objective,
	best *float64,
	bestCoeffs *[]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.indices) {
		val, err := objective(ctx, current)
		if errors.Is(err, dynamo.ErrDivergence) {
			return nil
		}
		if err != nil {
			return err
		}

		if val > *best {
			*best = val
			*bestCoeffs = append((*bestCoeffs)[:0], current...)
		}
		return nil
	}

	idx := g.indices[depth]
	for _, val := range g.ranges[depth] {
		current[idx] = val
		if err := g.searchRecursive(ctx, depth+1, current, objective, best, bestCoeffs); err != nil {
			return err
		}
	}
	return nil
}
