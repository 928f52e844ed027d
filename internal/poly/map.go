package poly

import (
	"github.com/san-kum/attractor/internal/dynamo"
)

// Map evaluates one step of a polynomial map. The term table is built once by
// the Enumerator; Step only multiplies. A Map owns scratch buffers and is not
// safe for concurrent use.
type Map struct {
	shape  Shape
	terms  int
	coeffN int
	table  []int // terms × degree indices into h
	h      []float64
	mono   []float64
}

func NewMap(s Shape) (*Map, error) {
	e, err := NewEnumerator(s)
	if err != nil {
		return nil, err
	}
	m := &Map{
		shape:  s,
		terms:  e.Count(),
		coeffN: s.Dim * e.Count(),
		table:  make([]int, 0, e.Count()*s.Degree),
		h:      make([]float64, s.Dim+1),
		mono:   make([]float64, e.Count()),
	}
	e.Walk(func(idx []int) {
		m.table = append(m.table, idx...)
	})
	m.h[0] = 1
	return m, nil
}

func (m *Map) Shape() Shape { return m.shape }

// Terms returns the number of monomials per output.
func (m *Map) Terms() int { return m.terms }

// Coefficients returns the expected coefficient vector length.
func (m *Map) Coefficients() int { return m.coeffN }

// Step writes the image of pos into dst and returns dst. dst may alias pos.
// coeffs must hold Coefficients() values; it is read output by output in
// canonical term order.
func (m *Map) Step(dst, pos dynamo.State, coeffs []float64) dynamo.State {
	copy(m.h[1:], pos)

	d := m.shape.Degree
	for k := range m.mono {
		v := 1.0
		for _, i := range m.table[k*d : (k+1)*d] {
			v *= m.h[i]
		}
		m.mono[k] = v
	}

	cur := Cursor{coeffs: coeffs}
	for j := 0; j < m.shape.Dim; j++ {
		sum := 0.0
		for _, v := range m.mono {
			sum += cur.Next() * v
		}
		dst[j] = sum
	}
	return dst
}
