package raster

// DensityGrid records which cells of a fixed viewport have been visited.
// Because the bounds never change, adding points can only raise Fraction.
type DensityGrid struct {
	bounds   Bounds
	binsX    int
	binsY    int
	occupied []bool
	filled   int
}

func NewDensityGrid(b Bounds, binsX, binsY int) *DensityGrid {
	binsX = max(1, binsX)
	binsY = max(1, binsY)
	return &DensityGrid{
		bounds:   b,
		binsX:    binsX,
		binsY:    binsY,
		occupied: make([]bool, binsX*binsY),
	}
}

// Add bins points by X and Y. Points outside the bounds are clamped.
func (d *DensityGrid) Add(points []Point3) {
	xs := axisScale(d.bounds.Min.X, d.bounds.Max.X, float64(d.binsX-1))
	ys := axisScale(d.bounds.Min.Y, d.bounds.Max.Y, float64(d.binsY-1))
	cx := float64(d.binsX-1) / 2
	cy := float64(d.binsY-1) / 2

	for _, p := range points {
		x := clampInt(int(xs.apply(p.X, cx)), 0, d.binsX-1)
		y := clampInt(int(ys.apply(p.Y, cy)), 0, d.binsY-1)
		i := y*d.binsX + x
		if !d.occupied[i] {
			d.occupied[i] = true
			d.filled++
		}
	}
}

func (d *DensityGrid) Filled() int { return d.filled }

// Fraction is the share of cells visited, in [0, 1].
func (d *DensityGrid) Fraction() float64 {
	return float64(d.filled) / float64(len(d.occupied))
}

// DensityFraction bins points into binsX×binsY cells over their own bounds
// and returns the share of cells hit. Empty input has density 0.
func DensityFraction(points []Point3, binsX, binsY int) float64 {
	b, err := ComputeBounds(points)
	if err != nil {
		return 0
	}
	d := NewDensityGrid(b, binsX, binsY)
	d.Add(points)
	return d.Fraction()
}
