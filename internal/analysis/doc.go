// Package analysis characterizes polynomial maps beyond the accept/reject
// decisions of the search.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [BifurcationDiagram]: sweep of one coefficient with the visited values
//   - [BifurcationToASCII]: terminal rendering of a sweep
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(m, coeffs, x0, 10000, 1e-8)
//	if lambda > 0 {
//	    // chaotic
//	}
package analysis
