package search

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/metrics"
)

var errFound = errors.New("search: attractor found")

// FindParallel runs workers independent searches and returns the first
// accepted attractor. Worker i draws from rand.NewSource(randSeed + i), so a
// given seed and worker count explore the same candidates on every run,
// though which worker wins may vary. MaxAttempts is shared by all workers;
// a worker that finds the budget spent stops quietly so siblings can finish
// attempts they already claimed.
func FindParallel(ctx context.Context, cfg Config, workers int, randSeed int64, opts ...Option) (*Result, error) {
	if workers < 1 {
		return nil, dynamo.Configf("workers", "must be >= 1, got %d", workers)
	}

	budget := new(atomic.Int64)
	searchers := make([]*Searcher, workers)
	for i := range searchers {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts,
			WithRand(rand.New(rand.NewSource(randSeed+int64(i)))),
			withWorker(i),
			withBudget(budget),
		)
		s, err := New(cfg, wopts...)
		if err != nil {
			return nil, err
		}
		searchers[i] = s
	}

	g, gctx := errgroup.WithContext(ctx)
	found := make(chan *Result, 1)
	var exhausted atomic.Bool

	for _, s := range searchers {
		g.Go(func() error {
			res, err := s.find(gctx)
			if errors.Is(err, dynamo.ErrSearchExhausted) {
				exhausted.Store(true)
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case found <- res:
			default:
			}
			return errFound
		})
	}

	err := g.Wait()
	select {
	case res := <-found:
		return res, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if exhausted.Load() {
		metrics.ObserveExhausted()
		return nil, &dynamo.ExhaustedError{Attempts: cfg.MaxAttempts}
	}
	return nil, errFound
}

// FindMany collects count attractors, one parallel search after another.
// Each round uses fresh random streams. On error the attractors found so far
// are returned with it.
func FindMany(ctx context.Context, cfg Config, count, workers int, randSeed int64, opts ...Option) ([]*Result, error) {
	results := make([]*Result, 0, count)
	for k := 0; k < count; k++ {
		res, err := FindParallel(ctx, cfg, workers, randSeed+int64(k*workers), opts...)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		dynamo.Logger().Info("collected attractor", "index", k+1, "of", count, "seed", res.Seed)
	}
	return results, nil
}
