package search_test

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/attractor/internal/codec"
	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/poly"
	"github.com/san-kum/attractor/internal/search"
)

var henon = []float64{
	1, 0, 1, -1.4, 0, 0,
	0, 0.3, 0, 0, 0, 0,
}

func fixed(coeffs []float64) search.Generator {
	return func(dst []float64, _ *rand.Rand) { copy(dst, coeffs) }
}

func constant(v float64) search.Generator {
	return func(dst []float64, _ *rand.Rand) {
		for i := range dst {
			dst[i] = v
		}
	}
}

// rotation about a point off the origin: the orbit fills a circle without
// any sensitivity to initial conditions
func rotation(theta float64) []float64 {
	c, s := math.Cos(theta), math.Sin(theta)
	return []float64{
		0.5, c, -s, 0, 0, 0,
		0, s, c, 0, 0, 0,
	}
}

type recorder struct {
	mu       sync.Mutex
	attempts []search.Attempt
}

func (r *recorder) OnAttempt(a search.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recorder) states() []search.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]search.State, len(r.attempts))
	for i, a := range r.attempts {
		out[i] = a.State
	}
	return out
}

func quadratic() search.Config {
	cfg := search.DefaultConfig()
	cfg.Shape = poly.Shape{Dim: 2, Degree: 2}
	cfg.MinDensity = 0.05
	cfg.BurnIn = 100
	cfg.Iterations = 5100
	cfg.LyapunovSteps = 0
	return cfg
}

var _ = Describe("Searcher", func() {
	var (
		ctx context.Context
		cfg search.Config
		rec *recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = quadratic()
		rec = &recorder{}
	})

	Describe("Find", func() {
		It("accepts a chaotic map on the first attempt", func() {
			s, err := search.New(cfg, search.WithGenerator(fixed(henon)), search.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Find(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Attempts).To(Equal(1))
			Expect(res.Coeffs).To(Equal(henon))
			Expect(res.Seed).To(HaveLen(12))
			Expect(res.Trajectory.Len()).To(Equal(5000))
			Expect(res.Density).To(BeNumerically(">=", 0.05))
			Expect(rec.states()).To(Equal([]search.State{search.Accepted}))
		})

		It("rejects a fixed point at the origin as sparse until exhausted", func() {
			cfg.MaxAttempts = 5
			s, err := search.New(cfg, search.WithGenerator(constant(0)), search.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Find(ctx)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrSearchExhausted))

			var ex *dynamo.ExhaustedError
			Expect(err).To(BeAssignableToTypeOf(ex))
			Expect(rec.states()).To(HaveLen(5))
			Expect(rec.states()).To(HaveEach(search.Sparse))
		})

		It("rejects maximal coefficients as escaped", func() {
			cfg.MaxAttempts = 3
			s, err := search.New(cfg, search.WithGenerator(constant(1.2)), search.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Find(ctx)
			Expect(err).To(MatchError(dynamo.ErrSearchExhausted))
			Expect(rec.states()).To(HaveEach(search.Escaped))
			Expect(rec.attempts[0].Step).To(BeNumerically(">", 0))
		})

		It("rejects a cubic that stays dense for the search window but diverges later", func() {
			c, err := codec.New(poly.Shape{Dim: 3, Degree: 3})
			Expect(err).NotTo(HaveOccurred())
			late, err := c.Decode("MKXLWUWKWHVGAAJUNMCIJJCYLTBLKISEOARHYMPFMJCNOKEMPKCBLRRKSSFA")
			Expect(err).NotTo(HaveOccurred())

			cubic := search.DefaultConfig()
			cubic.MaxAttempts = 1
			s, err := search.New(cubic, search.WithGenerator(fixed(late)), search.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Find(ctx)
			Expect(err).To(MatchError(dynamo.ErrSearchExhausted))
			Expect(rec.states()).To(Equal([]search.State{search.Escaped}))
			Expect(rec.attempts[0].Density).To(BeNumerically(">=", cubic.MinDensity))
			Expect(rec.attempts[0].Step).To(BeNumerically(">", cubic.SearchIterations))
		})

		It("stops when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			s, err := search.New(cfg, search.WithGenerator(constant(0)))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Find(cctx)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("finds a random quadratic attractor", func() {
			cfg.MaxAttempts = 5000
			s, err := search.New(cfg, search.WithRand(rand.New(rand.NewSource(42))))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Find(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Density).To(BeNumerically(">=", cfg.MinDensity))

			coeffs, err := s.Codec().Decode(res.Seed)
			Expect(err).NotTo(HaveOccurred())
			Expect(coeffs).To(Equal(res.Coeffs))
		})
	})

	Describe("Lyapunov gate", func() {
		BeforeEach(func() {
			cfg.LyapunovSteps = 5000
			cfg.RequireChaos = true
			cfg.MinLyapunov = 0.01
		})

		It("accepts the Hénon map with a positive exponent", func() {
			s, err := search.New(cfg, search.WithGenerator(fixed(henon)))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Find(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Lyapunov).To(BeNumerically("~", 0.42, 0.1))
		})

		It("rejects a quasi-periodic rotation", func() {
			cfg.MaxAttempts = 2
			s, err := search.New(cfg, search.WithGenerator(fixed(rotation(2.4))), search.WithObserver(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Find(ctx)
			Expect(err).To(MatchError(dynamo.ErrSearchExhausted))
			Expect(rec.states()).To(HaveEach(search.Periodic))
		})

		It("requires the estimate to be enabled", func() {
			cfg.LyapunovSteps = 0
			_, err := search.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})
	})

	Describe("FromSeed", func() {
		const seed = "FGOHAXBMCSHYISEHLXJBNCXLDXKFNEXNJCHNNLBOPQDHEYHNUXHLASITVPOJ"

		BeforeEach(func() {
			cfg = search.DefaultConfig()
			cfg.BurnIn = 0
			cfg.Iterations = 1
			cfg.LyapunovSteps = 0
		})

		It("returns the constant terms after one step", func() {
			s, err := search.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.FromSeed(ctx, seed)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Seed).To(Equal(seed))
			Expect(res.Trajectory.Len()).To(Equal(1))

			terms, _ := poly.TermCount(3, 3)
			p := res.Trajectory.At(0)
			for j := 0; j < 3; j++ {
				Expect(p[j]).To(Equal(res.Coeffs[j*terms]))
			}
		})

		It("surfaces seed errors", func() {
			s, err := search.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.FromSeed(ctx, "ABC")
			Expect(err).To(MatchError(dynamo.ErrInvalidSeedLength))
			_, err = s.FromSeed(ctx, seed[:59]+"Z")
			Expect(err).To(MatchError(dynamo.ErrInvalidSeedAlphabet))
		})

		It("surfaces divergence of an explicit seed", func() {
			cfg.Iterations = 200
			s, err := search.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.FromSeed(ctx, "YYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYYY")
			Expect(err).To(MatchError(dynamo.ErrDivergence))
		})
	})

	Describe("Config", func() {
		DescribeTable("rejects",
			func(mutate func(*search.Config)) {
				mutate(&cfg)
				Expect(cfg.Validate()).To(MatchError(dynamo.ErrConfiguration))
			},
			Entry("zero dimension", func(c *search.Config) { c.Shape.Dim = 0 }),
			Entry("short search window", func(c *search.Config) { c.SearchIterations = 1 }),
			Entry("no escape radius", func(c *search.Config) { c.EscapeRadius = 0 }),
			Entry("density above one", func(c *search.Config) { c.MinDensity = 1.5 }),
			Entry("burn-in past the end", func(c *search.Config) { c.BurnIn = c.Iterations }),
			Entry("negative budget", func(c *search.Config) { c.MaxAttempts = -1 }),
		)
	})
})

var _ = Describe("FindParallel", func() {
	It("returns the first accepted attractor", func() {
		cfg := quadratic()
		res, err := search.FindParallel(context.Background(), cfg, 4, 1, search.WithGenerator(fixed(henon)))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Worker).To(BeNumerically("<", 4))
		Expect(res.Coeffs).To(Equal(henon))
	})

	It("shares the attempt budget between workers", func() {
		cfg := quadratic()
		cfg.MaxAttempts = 20
		rec := &recorder{}

		_, err := search.FindParallel(context.Background(), cfg, 4, 1,
			search.WithGenerator(constant(0)), search.WithObserver(rec))
		Expect(err).To(MatchError(dynamo.ErrSearchExhausted))
		Expect(len(rec.states())).To(BeNumerically("<=", 20))

		seen := map[int]bool{}
		for _, a := range rec.attempts {
			Expect(seen[a.Number]).To(BeFalse())
			seen[a.Number] = true
		}
	})

	It("lets a claimed attempt finish after the budget is spent", func() {
		cfg := quadratic()
		cfg.MaxAttempts = 2
		cfg.Iterations = 2_000_000

		var calls atomic.Int64
		firstZero := func(dst []float64, _ *rand.Rand) {
			if calls.Add(1) == 1 {
				clear(dst)
				return
			}
			copy(dst, henon)
		}

		for run := 0; run < 3; run++ {
			calls.Store(0)
			res, err := search.FindParallel(context.Background(), cfg, 2, 1, search.WithGenerator(firstZero))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Coeffs).To(Equal(henon))
			Expect(res.Attempts).To(BeNumerically("<=", 2))
			Expect(calls.Load()).To(Equal(int64(2)))
		}
	})

	It("rejects a non-positive worker count", func() {
		_, err := search.FindParallel(context.Background(), quadratic(), 0, 1)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
	})

	It("collects several attractors", func() {
		results, err := search.FindMany(context.Background(), quadratic(), 3, 2, 7, search.WithGenerator(fixed(henon)))
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
	})
})
