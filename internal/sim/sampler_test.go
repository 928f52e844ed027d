package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
)

var henon = []float64{
	1, 0, 1, -1.4, 0, 0,
	0, 0.3, 0, 0, 0, 0,
}

func newSampler(t *testing.T, dim, degree int) *Sampler {
	t.Helper()
	s, err := NewSampler(poly.Shape{Dim: dim, Degree: degree})
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s
}

func TestSampler_Henon(t *testing.T) {
	s := newSampler(t, 2, 2)

	traj, err := s.Run(context.Background(), henon, Window{Start: 100, End: 1100, EscapeRadius: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if traj.Len() != 1000 {
		t.Errorf("expected 1000 positions, got %d", traj.Len())
	}
	for i := 0; i < traj.Len(); i++ {
		p := traj.At(i)
		if math.Abs(p[0]) > 1.5 || math.Abs(p[1]) > 0.5 {
			t.Fatalf("position %d %v left the Hénon attractor", i, p)
		}
	}
}

func TestSampler_FirstStepIsConstantTerms(t *testing.T) {
	s := newSampler(t, 3, 3)
	coeffs := make([]float64, 60)
	coeffs[0], coeffs[20], coeffs[40] = 0.3, -0.5, 1.1

	traj, err := s.Run(context.Background(), coeffs, Window{Start: 0, End: 1})
	if err != nil {
		t.Fatal(err)
	}
	got := traj.At(0)
	want := dynamo.State{0.3, -0.5, 1.1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampler_BurnInMatchesOffset(t *testing.T) {
	s := newSampler(t, 2, 2)
	ctx := context.Background()

	full, err := s.Run(ctx, henon, Window{Start: 0, End: 50})
	if err != nil {
		t.Fatal(err)
	}
	tail, err := s.Run(ctx, henon, Window{Start: 40, End: 50})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < tail.Len(); i++ {
		a, b := full.At(40+i), tail.At(i)
		if a[0] != b[0] || a[1] != b[1] {
			t.Errorf("position %d: %v != %v", i, b, a)
		}
	}
}

func TestSampler_ZeroMapStaysAtOrigin(t *testing.T) {
	s := newSampler(t, 3, 3)
	traj, err := s.Run(context.Background(), make([]float64, 60), Window{Start: 0, End: 100, EscapeRadius: 10})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range traj.Data {
		if v != 0 {
			t.Fatalf("expected fixed point at origin, got %v", v)
		}
	}
}

func TestSampler_Escape(t *testing.T) {
	s := newSampler(t, 3, 3)
	coeffs := make([]float64, 60)
	for i := range coeffs {
		coeffs[i] = 1.2
	}

	_, err := s.Run(context.Background(), coeffs, Window{Start: 0, End: 2000, EscapeRadius: 10})
	var de *dynamo.DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DivergenceError, got %v", err)
	}
	if de.Reason != dynamo.Escaped {
		t.Errorf("reason = %v, want escaped", de.Reason)
	}
	if de.Step > 2 {
		t.Errorf("escape detected at step %d, want <= 2", de.Step)
	}
}

func TestSampler_NonFinite(t *testing.T) {
	s := newSampler(t, 1, 2)
	// x' = 1.2 + 1.2x + 1.2x² overflows without an escape radius
	coeffs := []float64{1.2, 1.2, 1.2}

	_, err := s.Run(context.Background(), coeffs, Window{Start: 0, End: 100})
	var de *dynamo.DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DivergenceError, got %v", err)
	}
	if de.Reason != dynamo.NonFinite {
		t.Errorf("reason = %v, want non-finite", de.Reason)
	}
	if !errors.Is(err, dynamo.ErrDivergence) {
		t.Error("error does not wrap ErrDivergence")
	}
}

func TestSampler_InvalidWindow(t *testing.T) {
	s := newSampler(t, 2, 2)

	tests := []struct {
		name string
		w    Window
	}{
		{"negative start", Window{Start: -1, End: 10}},
		{"end before start", Window{Start: 10, End: 5}},
		{"negative radius", Window{Start: 0, End: 5, EscapeRadius: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), henon, tt.w)
			if !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSampler_CoefficientLength(t *testing.T) {
	s := newSampler(t, 2, 2)
	_, err := s.Run(context.Background(), henon[:5], Window{End: 1})
	if !errors.Is(err, dynamo.ErrInvalidSeedLength) {
		t.Errorf("expected ErrInvalidSeedLength, got %v", err)
	}
}

func TestSampler_Cancelled(t *testing.T) {
	s := newSampler(t, 2, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, henon, Window{Start: 0, End: 3 * pollEvery})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSampler_Observer(t *testing.T) {
	s := newSampler(t, 2, 2)
	var steps []int
	s.AddObserver(ObserverFunc(func(step int, pos dynamo.State) {
		steps = append(steps, step)
	}))

	if _, err := s.Run(context.Background(), henon, Window{Start: 3, End: 6}); err != nil {
		t.Fatal(err)
	}
	if len(steps) != 3 || steps[0] != 4 || steps[2] != 6 {
		t.Errorf("observed steps %v, want [4 5 6]", steps)
	}
}

func TestPool(t *testing.T) {
	p := NewPool(3, 16)
	tr := p.Get()
	if tr.Dim != 3 || tr.Len() != 16 {
		t.Fatalf("Get() = %d×%d", tr.Len(), tr.Dim)
	}
	p.Put(tr)
	p.Put(dynamo.NewTrajectory(3, 8))

	s := newSampler(t, 3, 3)
	buf := p.Get()
	if err := s.RunInto(context.Background(), make([]float64, 60), Window{End: 16}, buf); err != nil {
		t.Fatal(err)
	}
	if err := s.RunInto(context.Background(), make([]float64, 60), Window{End: 8}, buf); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("mismatched buffer: got %v", err)
	}
}
