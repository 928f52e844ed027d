package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a grid of Braille cells, each holding 2x4 dots. Hits counts how
// many points landed in every cell so dense regions can be drawn brighter.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Hits          [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h}
	c.Resize(w, h)
	return c
}

func (c *Canvas) Resize(w, h int) {
	c.Width, c.Height = max(1, w), max(1, h)
	c.Grid = make([][]rune, c.Height)
	c.Hits = make([][]int, c.Height)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, c.Width)
		c.Hits[i] = make([]int, c.Width)
	}
	c.Clear()
}

// PixelSize is the canvas size in dots.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the dot at (x, y) in dot coordinates. Out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Hits[row][col]++
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.Hits[i][j] = 0
		}
	}
}

// Lit counts cells with at least one dot.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render colours each cell by its hit count relative to the busiest cell,
// in three bands.
func (c *Canvas) Render(t Theme) string {
	peak := 1
	for _, row := range c.Hits {
		for _, h := range row {
			peak = max(peak, h)
		}
	}

	low := t.style(t.Muted)
	mid := t.style(t.Secondary)
	high := t.style(t.Primary)

	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if r == brailleBlank {
				b.WriteRune(r)
				continue
			}
			switch f := float64(c.Hits[i][j]) / float64(peak); {
			case f > 0.4:
				b.WriteString(high.Render(string(r)))
			case f > 0.1:
				b.WriteString(mid.Render(string(r)))
			default:
				b.WriteString(low.Render(string(r)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
