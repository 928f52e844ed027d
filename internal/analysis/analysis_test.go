package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
	"github.com/san-kum/attractor/internal/sim"
)

var henon = []float64{
	1, 0, 1, -1.4, 0, 0,
	0, 0.3, 0, 0, 0, 0,
}

func TestLyapunovExponent_Henon(t *testing.T) {
	m, err := poly.NewMap(poly.Shape{Dim: 2, Degree: 2})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := sim.NewSampler(m.Shape())
	traj, err := s.Run(context.Background(), henon, sim.Window{Start: 1000, End: 1001})
	if err != nil {
		t.Fatal(err)
	}

	// published value is ~0.42
	lambda := LyapunovExponent(m, henon, traj.At(0), 20000, 1e-8)
	if lambda < 0.3 || lambda > 0.55 {
		t.Errorf("Hénon exponent = %.3f, want ~0.42", lambda)
	}
}

func TestLyapunovExponent_Contracting(t *testing.T) {
	m, _ := poly.NewMap(poly.Shape{Dim: 1, Degree: 1})
	// x' = 0.5x
	lambda := LyapunovExponent(m, []float64{0, 0.5}, dynamo.State{0.1}, 1000, 1e-8)
	if lambda >= 0 {
		t.Errorf("contracting map exponent = %v, want negative", lambda)
	}
}

func TestLyapunovExponent_Degenerate(t *testing.T) {
	m, _ := poly.NewMap(poly.Shape{Dim: 1, Degree: 1})
	if got := LyapunovExponent(m, []float64{0, 2}, dynamo.State{}, 10, 1e-8); got != 0 {
		t.Errorf("empty state: %v", got)
	}
	if got := LyapunovExponent(m, []float64{0, 2}, dynamo.State{1}, 0, 1e-8); got != 0 {
		t.Errorf("zero steps: %v", got)
	}
}

func TestBifurcationDiagram(t *testing.T) {
	s, err := sim.NewSampler(poly.Shape{Dim: 1, Degree: 2})
	if err != nil {
		t.Fatal(err)
	}
	// logistic-like x' = c + 0 x - x², sweep c over a fixed point and a diverging setting
	coeffs := []float64{0, 0, -1}
	sw := Sweep{
		Index:  0,
		Min:    0.1,
		Max:    3,
		Steps:  2,
		Axis:   0,
		Window: sim.Window{Start: 500, End: 600, EscapeRadius: 10},
	}

	data, err := BifurcationDiagram(context.Background(), s, coeffs, sw)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 {
		t.Fatalf("got %d points, want 2", len(data))
	}
	if data[0].Diverged || len(data[0].Values) != 1 {
		t.Errorf("c=0.1 should settle on one fixed point, got %+v", data[0])
	}
	if !data[1].Diverged {
		t.Errorf("c=3 should diverge, got %d values", len(data[1].Values))
	}
	if coeffs[0] != 0 {
		t.Error("input coefficients modified")
	}

	art := BifurcationToASCII(data, 10, 4)
	if strings.Count(art, "\n") != 4 || !strings.Contains(art, "x") {
		t.Errorf("unexpected diagram:\n%s", art)
	}
}

func TestBifurcationDiagram_InvalidIndex(t *testing.T) {
	s, _ := sim.NewSampler(poly.Shape{Dim: 1, Degree: 2})
	_, err := BifurcationDiagram(context.Background(), s, []float64{0, 0, 0}, Sweep{Index: 3})
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
