// Package viz shows attractors in the terminal.
//
// The viewer is a Bubble Tea program with two phases. While the search runs
// it shows attempt counts by outcome and the density of recent candidates.
// Once an attractor is accepted it draws the point cloud on a Braille
// [Canvas], shaded by how many points hit each cell.
//
// # Key Bindings
//
//	←→↑↓ / hjkl - Rotate
//	+ -         - Zoom
//	A / Tab     - Next axis triple
//	Space       - Toggle auto-rotation
//	R           - Reset camera
//	T           - Cycle color themes
//	Q           - Quit
package viz
