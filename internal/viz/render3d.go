package viz

import (
	"math"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/raster"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera rotates the cloud about its centre and projects orthographically.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) Reset()            { *c = Camera{Zoom: 1.0} }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a point of the unit ball to dot coordinates on a sw×sh
// canvas. Braille dots are close to square, so both axes share one scale.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	half := math.Min(float64(sw), float64(sh)) / 2
	sx := int(rot.X*half*0.95) + sw/2
	sy := int(-rot.Y*half*0.95) + sh/2
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Cloud is a trajectory projected on three axes and centred in the unit ball.
type Cloud struct {
	Axes   [3]int
	Points []Vec3
}

// NewCloud projects traj on axes and keeps at most maxPoints evenly strided
// positions.
func NewCloud(traj *dynamo.Trajectory, axes [3]int, maxPoints int) (*Cloud, error) {
	pts, err := raster.Project(traj, axes)
	if err != nil {
		return nil, err
	}
	b, err := raster.ComputeBounds(pts)
	if err != nil {
		return nil, err
	}

	stride := 1
	if maxPoints > 0 && len(pts) > maxPoints {
		stride = (len(pts) + maxPoints - 1) / maxPoints
	}

	centre := Vec3{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
	radius := Vec3{b.Width(), b.Height(), b.Depth()}.Length() / 2
	if radius == 0 {
		radius = 1
	}

	cloud := &Cloud{Axes: axes, Points: make([]Vec3, 0, len(pts)/stride+1)}
	for i := 0; i < len(pts); i += stride {
		p := Vec3{pts[i].X, pts[i].Y, pts[i].Z}
		cloud.Points = append(cloud.Points, p.Sub(centre).Scale(1/radius))
	}
	return cloud, nil
}

// Draw plots the cloud through cam onto c.
func (cl *Cloud) Draw(c *Canvas, cam *Camera) {
	c.Clear()
	sw, sh := c.PixelSize()
	for _, p := range cl.Points {
		if x, y, ok := cam.Project(p, sw, sh); ok {
			c.Set(x, y)
		}
	}
}
