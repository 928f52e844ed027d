package analysis

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/sim"
)

// BifurcationPoint holds the distinct values one coordinate visits for a
// single setting of the swept coefficient. Diverged is set when the run left
// the finite regime; Values is then empty.
type BifurcationPoint struct {
	Param    float64
	Values   []float64
	Diverged bool
}

// Sweep configures a coefficient sweep.
type Sweep struct {
	Index      int // coefficient to vary
	Min, Max   float64
	Steps      int
	Axis       int // coordinate to record
	Window     sim.Window
	Resolution float64 // values closer than this count as one
}

// BifurcationDiagram varies one coefficient across [Min, Max] and records the
// distinct values of one coordinate after burn-in. Fixed points show as one
// value, period-k orbits as k values and chaos as a smear. coeffs is not
// modified.
func BifurcationDiagram(ctx context.Context, s *sim.Sampler, coeffs []float64, sw Sweep) ([]BifurcationPoint, error) {
	if sw.Index < 0 || sw.Index >= len(coeffs) {
		return nil, dynamo.Configf("sweep index", "%d out of range [0, %d)", sw.Index, len(coeffs))
	}
	if sw.Axis < 0 || sw.Axis >= s.Shape().Dim {
		return nil, dynamo.Configf("sweep axis", "%d out of range [0, %d)", sw.Axis, s.Shape().Dim)
	}
	if sw.Steps < 2 {
		sw.Steps = 2
	}
	if sw.Resolution <= 0 {
		sw.Resolution = 1e-3
	}

	work := make([]float64, len(coeffs))
	copy(work, coeffs)
	paramStep := (sw.Max - sw.Min) / float64(sw.Steps-1)

	results := make([]BifurcationPoint, 0, sw.Steps)
	for i := 0; i < sw.Steps; i++ {
		param := sw.Min + float64(i)*paramStep
		work[sw.Index] = param

		traj, err := s.Run(ctx, work, sw.Window)
		if errors.Is(err, dynamo.ErrDivergence) {
			results = append(results, BifurcationPoint{Param: param, Diverged: true})
			continue
		}
		if err != nil {
			return nil, err
		}

		values := make([]float64, 0, 64)
		seen := make(map[int64]bool)
		for _, v := range traj.Axis(sw.Axis) {
			key := int64(math.Round(v / sw.Resolution))
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII draws the diagram with the parameter on the horizontal
// axis. Diverged columns are marked with 'x' on the bottom row.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		if p.Diverged {
			canvas[height-1][col] = 'x'
			continue
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
