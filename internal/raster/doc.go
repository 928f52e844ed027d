// Package raster turns trajectories into images.
//
// The pipeline is:
//
//	Project → ComputeBounds → (Fit) → Normalize → Accumulate → Encode
//
// Project picks three coordinates of each position. The first two become
// pixel columns and rows, the third becomes an alpha weight in
// [alphaMin, 1]. Accumulate bins points into a three-channel float grid and
// weights each contribution by how far the point moved from its predecessor,
// so slow regions of the orbit glow brighter. Encode clamps the channels into
// a BGRA byte buffer.
//
// Bounds are always values passed between stages; nothing in this package
// holds state between calls.
package raster
