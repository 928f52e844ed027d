// Package dynamo provides the core primitives shared by the attractor engine.
//
// The package defines the types passed between the generation stages:
//
//   - [State]: a position vector in the n-dimensional state space
//   - [Trajectory]: a flat, row-major buffer of recorded positions
//   - the error taxonomy ([ErrConfiguration], [ErrDivergence], ...)
//   - a package-level [slog.Logger] shared by all sub-packages
//
// # Example
//
//	traj := dynamo.NewTrajectory(3, 1000)
//	for i := 0; i < traj.Len(); i++ {
//	    p := traj.At(i)
//	    _ = p.Norm()
//	}
//
// # Thread Safety
//
// State and Trajectory values are plain slices and are NOT safe for concurrent
// mutation. [SetLogger] and [Logger] are safe for concurrent use.
package dynamo
