package dynamo

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	a := State{1, 2}
	b := a.Clone()
	b[0] = 9
	if a[0] != 1 {
		t.Errorf("Clone shares storage: a = %v", a)
	}
	d := State{4, 6}.Sub(State{1, 2})
	if d[0] != 3 || d[1] != 4 {
		t.Errorf("Sub = %v", d)
	}
}

func TestTrajectory(t *testing.T) {
	tr := NewTrajectory(3, 4)
	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}
	for i := 0; i < tr.Len(); i++ {
		p := tr.At(i)
		p[0], p[1], p[2] = float64(i), float64(10*i), float64(100*i)
	}

	if got := tr.Data[2*3+1]; got != 20 {
		t.Errorf("At writes through: Data[7] = %v, want 20", got)
	}
	ys := tr.Axis(1)
	want := []float64{0, 10, 20, 30}
	for i := range want {
		if ys[i] != want[i] {
			t.Errorf("Axis(1)[%d] = %v, want %v", i, ys[i], want[i])
		}
	}

	// appending to a view must not clobber the next position
	_ = append(tr.At(0), 42)
	if tr.At(1)[0] != 1 {
		t.Errorf("At(0) view has spare capacity")
	}

	var nilTraj *Trajectory
	if nilTraj.Len() != 0 {
		t.Errorf("nil trajectory Len() = %d", nilTraj.Len())
	}
}

func TestErrorsUnwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"config", Configf("degree", "must be >= 0, got %d", -1), ErrConfiguration},
		{"seed length", &SeedError{Length: 3, Want: 60, Wrapped: ErrInvalidSeedLength}, ErrInvalidSeedLength},
		{"seed alphabet", &SeedError{Position: 2, Symbol: 'Z', Wrapped: ErrInvalidSeedAlphabet}, ErrInvalidSeedAlphabet},
		{"divergence", &DivergenceError{Step: 7, Reason: Escaped}, ErrDivergence},
		{"exhausted", &ExhaustedError{Attempts: 10}, ErrSearchExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	var de *DivergenceError
	if !errors.As(&DivergenceError{Step: 3}, &de) || de.Reason.String() != "non-finite" {
		t.Errorf("unexpected divergence reason: %v", de)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 999, 100000} {
		seen := make([]int32, n)
		ParallelFor(n, 1000, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestSetLogger_NilRestoresDefault(t *testing.T) {
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}
