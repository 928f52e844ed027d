package sim

import (
	"github.com/san-kum/attractor/internal/dynamo"
)

// Window selects which iterations of a run are kept. Steps 1..Start are
// burn-in; positions after steps Start+1..End are recorded.
type Window struct {
	Start int
	End   int

	// EscapeRadius rejects a run whose position norm exceeds it. Zero
	// disables the check; finiteness is always checked.
	EscapeRadius float64
}

// Len returns the number of recorded positions.
func (w Window) Len() int { return w.End - w.Start }

func (w Window) Validate() error {
	if w.Start < 0 {
		return dynamo.Configf("window", "start must be >= 0, got %d", w.Start)
	}
	if w.End < w.Start {
		return dynamo.Configf("window", "end %d before start %d", w.End, w.Start)
	}
	if w.EscapeRadius < 0 {
		return dynamo.Configf("window", "escape radius must be >= 0, got %g", w.EscapeRadius)
	}
	return nil
}

// Observer sees every recorded position. pos is only valid for the duration
// of the call.
type Observer interface {
	OnStep(step int, pos dynamo.State)
}

type ObserverFunc func(step int, pos dynamo.State)

func (f ObserverFunc) OnStep(step int, pos dynamo.State) { f(step, pos) }
