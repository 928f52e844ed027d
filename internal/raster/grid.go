package raster

import (
	"math"
)

// Grid accumulates three float channels per cell, row-major.
type Grid struct {
	Width  int
	Height int
	Pix    []float64
}

func NewGrid(w, h int) *Grid {
	return &Grid{Width: w, Height: h, Pix: make([]float64, 3*w*h)}
}

func (g *Grid) Reset() { clear(g.Pix) }

// At returns the three channels of cell (x, y).
func (g *Grid) At(x, y int) (r, gr, b float64) {
	i := 3 * (y*g.Width + x)
	return g.Pix[i], g.Pix[i+1], g.Pix[i+2]
}

// Accumulate adds every point after the first into g. points must already be
// normalized to g's size with the same alphaMin. Each channel receives
//
//	max(0, 1 - |Δ|/scale) · alpha · z
//
// where Δ is the step from the previous point along X, Y or Z and the scales
// are the grid width, the grid height and 1-alphaMin. Out-of-range cells are
// clamped to the border; a step longer than its scale adds nothing, so cells
// never lose intensity.
func Accumulate(g *Grid, points []Point3, alpha, alphaMin float64) {
	if g.Width <= 0 || g.Height <= 0 {
		return
	}
	sx := float64(g.Width)
	sy := float64(g.Height)
	sz := 1 - alphaMin
	if sz <= 0 {
		sz = 1
	}

	for i := 1; i < len(points); i++ {
		p, prev := points[i], points[i-1]
		x := clampInt(int(p.X), 0, g.Width-1)
		y := clampInt(int(p.Y), 0, g.Height-1)

		dx := math.Abs(p.X - prev.X)
		dy := math.Abs(p.Y - prev.Y)
		dz := math.Abs(p.Z - prev.Z)
		w := alpha * p.Z

		pos := 3 * (y*g.Width + x)
		g.Pix[pos+0] += attenuation(dx, sx) * w
		g.Pix[pos+1] += attenuation(dy, sy) * w
		g.Pix[pos+2] += attenuation(dz, sz) * w
	}
}

func attenuation(d, scale float64) float64 {
	return max(0, 1-d/scale)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
