// Package codec converts between coefficient vectors and seed strings.
//
// Each coefficient is one of 25 evenly spaced levels in [-1.2, 1.2] and is
// written as a single letter: 'A' is -1.2, 'M' is 0, 'Y' is 1.2.
package codec

import (
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
)

const (
	First  = 'A'
	Last   = 'Y'
	Levels = Last - First + 1

	Offset = -1.2
	Step   = 0.1
)

// Level returns the coefficient value of grid level k.
func Level(k int) float64 {
	return float64(k)/10 + Offset
}

// Codec is bound to one shape so every seed it handles has the same length.
type Codec struct {
	shape  poly.Shape
	length int
}

func New(shape poly.Shape) (*Codec, error) {
	n, err := shape.Coefficients()
	if err != nil {
		return nil, err
	}
	return &Codec{shape: shape, length: n}, nil
}

func (c *Codec) Shape() poly.Shape { return c.shape }

// Len is the seed length and coefficient count.
func (c *Codec) Len() int { return c.length }

// Decode parses a seed. The length is checked before any symbol so a short
// seed with bad letters still reports the length.
func (c *Codec) Decode(seed string) ([]float64, error) {
	if len(seed) != c.length {
		return nil, &dynamo.SeedError{Length: len(seed), Want: c.length, Wrapped: dynamo.ErrInvalidSeedLength}
	}
	out := make([]float64, c.length)
	for i := 0; i < len(seed); i++ {
		ch := seed[i]
		if ch < First || ch > Last {
			return nil, &dynamo.SeedError{Position: i, Symbol: rune(ch), Wrapped: dynamo.ErrInvalidSeedAlphabet}
		}
		out[i] = Level(int(ch - First))
	}
	return out, nil
}

// Encode writes each coefficient as its nearest level, clamped to the grid.
func (c *Codec) Encode(coeffs []float64) (string, error) {
	if len(coeffs) != c.length {
		return "", &dynamo.SeedError{Length: len(coeffs), Want: c.length, Wrapped: dynamo.ErrInvalidSeedLength}
	}
	var b strings.Builder
	b.Grow(c.length)
	for i, v := range coeffs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", &dynamo.SeedError{Position: i, Symbol: '?', Wrapped: dynamo.ErrInvalidSeedAlphabet}
		}
		k := int(math.Round((v - Offset) / Step))
		k = max(0, min(Levels-1, k))
		b.WriteByte(byte(First + k))
	}
	return b.String(), nil
}

// Random draws every coefficient uniformly from the grid.
func (c *Codec) Random(rng *rand.Rand) []float64 {
	out := make([]float64, c.length)
	c.RandomInto(out, rng)
	return out
}

// RandomInto fills dst, which must have Len() elements.
func (c *Codec) RandomInto(dst []float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = Level(rng.Intn(Levels))
	}
}
