package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/viz"
)

const background = "#0a0a0a"

// CanvasToSVG converts a Braille canvas to SVG format. Cells hit more often
// are drawn more opaque.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	peak := 1
	for _, row := range canvas.Hits {
		for _, h := range row {
			peak = max(peak, h)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			opacity := 0.3 + 0.7*math.Sqrt(float64(canvas.Hits[row][col])/float64(peak))

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill-opacity=\"%.2f\"/>\n",
							cx, cy, dotRadius, opacity)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// WritePointsSVG writes points already normalised to pixel space, one
// square dot each. Z becomes the dot opacity, as it becomes the alpha
// weight in the raster.
func WritePointsSVG(w io.Writer, points []raster.Point3, width, height int, fill string) error {
	if len(points) == 0 {
		return fmt.Errorf("svg: no points")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	for _, p := range points {
		fmt.Fprintf(bw, "<rect x=\"%.1f\" y=\"%.1f\" width=\"1\" height=\"1\" fill-opacity=\"%.2f\"/>\n",
			p.X, p.Y, p.Z)
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// SavePointsSVG fits projected points into the view the way the raster does
// and writes them to path.
func SavePointsSVG(path string, points []raster.Point3, opts raster.Options, fill string) error {
	b, err := raster.ComputeBounds(points)
	if err != nil {
		return err
	}
	b = b.Fit(opts.Width, opts.Height, opts.Margin)
	norm := raster.Normalize(points, b, opts.Width, opts.Height, opts.AlphaMin)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WritePointsSVG(f, norm, opts.Width, opts.Height, fill)
}
