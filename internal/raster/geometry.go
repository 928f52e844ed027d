package raster

import (
	"math"

	"github.com/san-kum/attractor/internal/dynamo"
)

// Point3 is a projected position: X and Y map to the image plane, Z to alpha.
type Point3 struct {
	X, Y, Z float64
}

type Bounds struct {
	Min, Max Point3
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }
func (b Bounds) Depth() float64  { return b.Max.Z - b.Min.Z }

// DefaultAxes is the first three coordinates, wrapped for dim < 3.
func DefaultAxes(dim int) [3]int {
	if dim < 1 {
		dim = 1
	}
	return [3]int{0, 1 % dim, 2 % dim}
}

// Planes returns the cyclic axis triples (i, i+1, i+2) mod dim, one per
// coordinate. Rendering each gives every coordinate a turn on the x axis.
func Planes(dim int) [][3]int {
	out := make([][3]int, 0, dim)
	for i := 0; i < dim; i++ {
		out = append(out, [3]int{i, (i + 1) % dim, (i + 2) % dim})
	}
	return out
}

// Project selects three coordinates of every position.
func Project(traj *dynamo.Trajectory, axes [3]int) ([]Point3, error) {
	for i, a := range axes {
		if a < 0 || a >= traj.Dim {
			return nil, dynamo.Configf("axes", "axis %d is %d, dimension is %d", i, a, traj.Dim)
		}
	}
	n := traj.Len()
	out := make([]Point3, n)
	for i := 0; i < n; i++ {
		p := traj.At(i)
		out[i] = Point3{X: p[axes[0]], Y: p[axes[1]], Z: p[axes[2]]}
	}
	return out, nil
}

// ComputeBounds returns the per-axis extremes of points.
func ComputeBounds(points []Point3) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, dynamo.ErrEmptyInput
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
		b.Min.Z = math.Min(b.Min.Z, p.Z)
		b.Max.Z = math.Max(b.Max.Z, p.Z)
	}
	return b, nil
}

// Fit grows b so the x/y extent has the pixel aspect ratio of w×h, keeps it
// centred on the data and pads both sides by margin (1.1 adds 10%). Z is
// unchanged. Stretching a bounding box to fill a non-square image distorts
// the attractor; Fit avoids that.
func (b Bounds) Fit(w, h int, margin float64) Bounds {
	if w <= 0 || h <= 0 {
		return b
	}
	if margin <= 0 {
		margin = 1
	}
	cx := (b.Min.X + b.Max.X) / 2
	cy := (b.Min.Y + b.Max.Y) / 2
	bw, bh := b.Width(), b.Height()
	aspect := float64(w) / float64(h)

	if bw < bh*aspect {
		bw = bh * aspect
	} else {
		bh = bw / aspect
	}
	bw *= margin
	bh *= margin

	return Bounds{
		Min: Point3{X: cx - bw/2, Y: cy - bh/2, Z: b.Min.Z},
		Max: Point3{X: cx + bw/2, Y: cy + bh/2, Z: b.Max.Z},
	}
}

const normalizeChunk = 1 << 15

// Normalize maps points into pixel space: X to [0, w-1], Y to [0, h-1] and Z
// to [alphaMin, 1]. An axis of zero extent maps X and Y to the centre and Z
// to 1. Large inputs are split across goroutines.
func Normalize(points []Point3, b Bounds, w, h int, alphaMin float64) []Point3 {
	out := make([]Point3, len(points))

	xs := axisScale(b.Min.X, b.Max.X, float64(w-1))
	ys := axisScale(b.Min.Y, b.Max.Y, float64(h-1))
	zs := axisScale(b.Min.Z, b.Max.Z, 1-alphaMin)

	dynamo.ParallelFor(len(points), normalizeChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := points[i]
			out[i] = Point3{
				X: xs.apply(p.X, float64(w-1)/2),
				Y: ys.apply(p.Y, float64(h-1)/2),
				Z: zs.apply(p.Z, 1-alphaMin) + alphaMin,
			}
		}
	})
	return out
}

type scale struct {
	min, k float64
	flat   bool
}

func axisScale(lo, hi, span float64) scale {
	if hi-lo == 0 || math.IsNaN(hi-lo) {
		return scale{flat: true}
	}
	return scale{min: lo, k: span / (hi - lo)}
}

func (s scale) apply(v, flat float64) float64 {
	if s.flat {
		return flat
	}
	return (v - s.min) * s.k
}
