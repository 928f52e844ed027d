package search

import (
	"math/rand"
	"sync/atomic"
)

type Option func(*Searcher)

// WithRand sets the random source. The default is seeded from the clock.
func WithRand(r *rand.Rand) Option {
	return func(s *Searcher) { s.rng = r }
}

// WithGenerator replaces uniform draws from the seed alphabet.
func WithGenerator(g Generator) Option {
	return func(s *Searcher) { s.gen = g }
}

func WithObserver(o Observer) Option {
	return func(s *Searcher) { s.observers = append(s.observers, o) }
}

func withWorker(id int) Option {
	return func(s *Searcher) { s.worker = id }
}

// withBudget shares one attempt counter between workers.
func withBudget(b *atomic.Int64) Option {
	return func(s *Searcher) { s.claimed = b }
}
