package poly

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/attractor/internal/dynamo"
)

func TestTermCount(t *testing.T) {
	tests := []struct {
		n, d int
		want int
	}{
		{3, 3, 20},
		{2, 2, 6},
		{1, 0, 1},
		{4, 5, 126},
		{10, 10, 184756},
	}

	for _, tt := range tests {
		got, err := TermCount(tt.n, tt.d)
		if err != nil {
			t.Fatalf("TermCount(%d, %d): %v", tt.n, tt.d, err)
		}
		if got != tt.want {
			t.Errorf("TermCount(%d, %d) = %d, want %d", tt.n, tt.d, got, tt.want)
		}
	}
}

func TestTermCount_Invalid(t *testing.T) {
	for _, s := range []Shape{{0, 2}, {-1, 2}, {3, -1}} {
		if _, err := TermCount(s.Dim, s.Degree); !errors.Is(err, dynamo.ErrConfiguration) {
			t.Errorf("TermCount(%d, %d) err = %v, want ErrConfiguration", s.Dim, s.Degree, err)
		}
	}
}

func TestEnumerator_CanonicalOrder(t *testing.T) {
	e, err := NewEnumerator(Shape{Dim: 2, Degree: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{
		{0, 0}, // 1
		{1, 0}, // x
		{0, 1}, // y
		{2, 0}, // x²
		{1, 1}, // xy
		{0, 2}, // y²
	}
	if got := e.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestEnumerator_VisitsEachMonomialOnce(t *testing.T) {
	s := Shape{Dim: 3, Degree: 3}
	e, err := NewEnumerator(s)
	if err != nil {
		t.Fatal(err)
	}
	terms := e.Terms()
	if len(terms) != e.Count() {
		t.Fatalf("visited %d terms, want %d", len(terms), e.Count())
	}

	seen := make(map[[3]int]bool)
	for i, exp := range terms {
		key := [3]int{exp[0], exp[1], exp[2]}
		if seen[key] {
			t.Errorf("term %d %v repeated", i, exp)
		}
		seen[key] = true
		if deg := exp[0] + exp[1] + exp[2]; deg > s.Degree {
			t.Errorf("term %d %v has degree %d", i, exp, deg)
		}
	}
	if !reflect.DeepEqual(terms[0], []int{0, 0, 0}) {
		t.Errorf("first term = %v, want constant", terms[0])
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]float64{1, 2, 3})
	if c.Next() != 1 || c.Next() != 2 {
		t.Fatal("cursor out of order")
	}
	if c.Pos() != 2 || c.Remaining() != 1 {
		t.Errorf("Pos() = %d, Remaining() = %d", c.Pos(), c.Remaining())
	}
}

func TestMap_Henon(t *testing.T) {
	m, err := NewMap(Shape{Dim: 2, Degree: 2})
	if err != nil {
		t.Fatal(err)
	}
	// x' = 1 - 1.4x² + y, y' = 0.3x
	coeffs := []float64{
		1, 0, 1, -1.4, 0, 0,
		0, 0.3, 0, 0, 0, 0,
	}
	if m.Coefficients() != len(coeffs) {
		t.Fatalf("Coefficients() = %d", m.Coefficients())
	}

	x := dynamo.State{0.5, 0.2}
	got := m.Step(make(dynamo.State, 2), x, coeffs)
	wantX := 1 - 1.4*0.25 + 0.2
	wantY := 0.3 * 0.5
	if math.Abs(got[0]-wantX) > 1e-12 || math.Abs(got[1]-wantY) > 1e-12 {
		t.Errorf("Step(%v) = %v, want [%v %v]", x, got, wantX, wantY)
	}
}

func TestMap_ConstantTermsFromOrigin(t *testing.T) {
	s := Shape{Dim: 3, Degree: 3}
	m, err := NewMap(s)
	if err != nil {
		t.Fatal(err)
	}
	coeffs := make([]float64, m.Coefficients())
	for i := range coeffs {
		coeffs[i] = float64(i%7) * 0.1
	}

	got := m.Step(make(dynamo.State, 3), dynamo.State{0, 0, 0}, coeffs)
	for j := 0; j < 3; j++ {
		if want := coeffs[j*m.Terms()]; got[j] != want {
			t.Errorf("output %d = %v, want constant %v", j, got[j], want)
		}
	}
}

func TestMap_Deterministic(t *testing.T) {
	m, _ := NewMap(Shape{Dim: 3, Degree: 2})
	coeffs := make([]float64, m.Coefficients())
	for i := range coeffs {
		coeffs[i] = math.Sin(float64(i))
	}
	pos := dynamo.State{0.3, -0.7, 0.11}

	a := m.Step(make(dynamo.State, 3), pos, coeffs)
	b := m.Step(make(dynamo.State, 3), pos, coeffs)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Step not deterministic: %v vs %v", a, b)
	}

	// in place
	in := pos.Clone()
	m.Step(in, in, coeffs)
	if !reflect.DeepEqual(in, a) {
		t.Errorf("aliased Step = %v, want %v", in, a)
	}
}

func TestMap_DegreeZero(t *testing.T) {
	m, err := NewMap(Shape{Dim: 2, Degree: 0})
	if err != nil {
		t.Fatal(err)
	}
	got := m.Step(make(dynamo.State, 2), dynamo.State{5, 5}, []float64{0.4, -0.2})
	if got[0] != 0.4 || got[1] != -0.2 {
		t.Errorf("Step = %v", got)
	}
}
