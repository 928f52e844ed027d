package poly

import (
	"github.com/san-kum/attractor/internal/dynamo"
)

// Shape is the dimension and maximum total degree of a polynomial map.
type Shape struct {
	Dim    int `yaml:"dimension" json:"dimension"`
	Degree int `yaml:"degree" json:"degree"`
}

func (s Shape) Validate() error {
	if s.Dim < 1 {
		return dynamo.Configf("dimension", "must be >= 1, got %d", s.Dim)
	}
	if s.Degree < 0 {
		return dynamo.Configf("degree", "must be >= 0, got %d", s.Degree)
	}
	return nil
}

// Terms returns the number of monomials per output dimension.
func (s Shape) Terms() (int, error) {
	return TermCount(s.Dim, s.Degree)
}

// Coefficients returns the length of a coefficient vector for this shape.
func (s Shape) Coefficients() (int, error) {
	t, err := s.Terms()
	if err != nil {
		return 0, err
	}
	return s.Dim * t, nil
}

// TermCount returns C(n+d, d), the number of monomials of total degree 0..d
// in n variables. The running product r·(n+i)/i stays an exact binomial at
// every step, so nothing larger than the result is ever formed.
func TermCount(n, d int) (int, error) {
	if err := (Shape{Dim: n, Degree: d}).Validate(); err != nil {
		return 0, err
	}
	r := 1
	for i := 1; i <= d; i++ {
		r = r * (n + i) / i
	}
	return r, nil
}

// Enumerator walks the monomials of a shape in canonical order.
type Enumerator struct {
	shape Shape
	count int
}

func NewEnumerator(s Shape) (*Enumerator, error) {
	count, err := s.Terms()
	if err != nil {
		return nil, err
	}
	return &Enumerator{shape: s, count: count}, nil
}

func (e *Enumerator) Shape() Shape { return e.shape }
func (e *Enumerator) Count() int   { return e.count }

// Walk calls fn once per monomial with its index tuple into the homogeneous
// vector (1, x₁, …, xₙ). The tuple is reused between calls.
func (e *Enumerator) Walk(fn func(idx []int)) {
	idx := make([]int, e.shape.Degree)
	e.walk(idx, 0, 0, fn)
}

func (e *Enumerator) walk(idx []int, level, start int, fn func([]int)) {
	if level == len(idx) {
		fn(idx)
		return
	}
	for i := start; i <= e.shape.Dim; i++ {
		idx[level] = i
		e.walk(idx, level+1, i, fn)
	}
}

// Terms returns the exponent vector of every monomial in canonical order.
func (e *Enumerator) Terms() [][]int {
	out := make([][]int, 0, e.count)
	e.Walk(func(idx []int) {
		exp := make([]int, e.shape.Dim)
		for _, v := range idx {
			if v > 0 {
				exp[v-1]++
			}
		}
		out = append(out, exp)
	})
	return out
}

// Cursor reads coefficients sequentially. The evaluator advances it once per
// monomial, which keeps the term order and the coefficient order coupled in
// one place.
type Cursor struct {
	coeffs []float64
	pos    int
}

func NewCursor(coeffs []float64) *Cursor {
	return &Cursor{coeffs: coeffs}
}

func (c *Cursor) Next() float64 {
	v := c.coeffs[c.pos]
	c.pos++
	return v
}

func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Remaining() int { return len(c.coeffs) - c.pos }
