// Package poly enumerates polynomial terms and evaluates polynomial maps.
//
// A map of shape (n, d) sends x ∈ Rⁿ to x' where every output coordinate is a
// sum over all monomials of total degree 0..d in the n inputs, each weighted
// by one coefficient. There are C(n+d, d) such monomials.
//
// # Canonical Order
//
// Monomials are enumerated over the homogeneous vector h = (1, x₁, …, xₙ):
// a term is a non-decreasing tuple of d indices into h, so index 0 stands in
// for "no variable" and lower degrees fall out naturally. For n = 2, d = 2:
//
//	1, x, y, x², xy, y²
//
// The order is a contract: a coefficient vector is read output by output, and
// within each output in exactly this order. [codec] relies on it to map seed
// symbols to terms.
package poly
