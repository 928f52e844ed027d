// Package sim runs polynomial maps and records trajectories.
//
// A [Sampler] always starts at the origin. Every step is checked for
// non-finite coordinates and, when a [Window] sets an escape radius, for
// leaving the ball of that radius. The same check runs at every step of both
// short search windows and long render windows, so a run that passes a search
// window cannot fail a render window of the same length.
package sim
