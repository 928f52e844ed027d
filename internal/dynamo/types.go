package dynamo

import (
	"math"
)

// State is a position vector in the n-dimensional state space.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every coordinate is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return math.Sqrt(s.NormSq())
}

func (s State) NormSq() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return sum
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Trajectory stores consecutive positions row-major: position i occupies
// Data[i*Dim : (i+1)*Dim].
type Trajectory struct {
	Dim  int
	Data []float64
}

func NewTrajectory(dim, length int) *Trajectory {
	return &Trajectory{Dim: dim, Data: make([]float64, dim*length)}
}

// Len returns the number of recorded positions.
func (t *Trajectory) Len() int {
	if t == nil || t.Dim == 0 {
		return 0
	}
	return len(t.Data) / t.Dim
}

// At returns position i as a State sharing the underlying storage.
func (t *Trajectory) At(i int) State {
	return State(t.Data[i*t.Dim : (i+1)*t.Dim : (i+1)*t.Dim])
}

// Axis copies coordinate k of every position.
func (t *Trajectory) Axis(k int) []float64 {
	n := t.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.Data[i*t.Dim+k]
	}
	return out
}
