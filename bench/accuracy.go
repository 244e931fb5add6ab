package bench

import (
	"math"

	"github.com/jianshu93/dartminhash-go/wmh"
	"gonum.org/v1/gonum/stat"
)

// SketchFunc adapts any engine's Sketch method to a common shape so the
// harness below can drive DartMinHash, RS, or ERS (via an id-only view of
// its RankedSignature) identically.
type SketchFunc func(wmh.WeightedSet) (wmh.Signature, error)

// Report summarizes |estimate - true| over repeated trials: mean and
// standard deviation computed via gonum's stat.MeanStdDev rather than a
// hand-rolled accumulator.
type Report struct {
	Mean   float64
	StdDev float64
	N      int
}

// EngineFactory builds a fresh SketchFunc for the given seed — each trial
// in RunTrials gets its own independently-seeded engine (one instance per
// trial, not one engine reused) so successive trials are independent
// draws.
type EngineFactory func(seed uint64) SketchFunc

// RunTrials runs len(seeds) independent trials of sketch(a) vs sketch(b)
// and summarizes the resulting |estimate - trueJ| distribution.
func RunTrials(factory EngineFactory, a, b wmh.WeightedSet, trueJ float64, seeds []uint64) (Report, error) {
	errs := make([]float64, 0, len(seeds))
	for _, seed := range seeds {
		sketch := factory(seed)
		sigA, err := sketch(a)
		if err != nil {
			return Report{}, err
		}
		sigB, err := sketch(b)
		if err != nil {
			return Report{}, err
		}
		est, err := wmh.CollisionRate(sigA, sigB)
		if err != nil {
			return Report{}, err
		}
		errs = append(errs, math.Abs(est-trueJ))
	}
	mean, std := stat.MeanStdDev(errs, nil)
	return Report{Mean: mean, StdDev: std, N: len(errs)}, nil
}

// SeedRange returns seeds base, base+1, ..., base+n-1 — a convenience for
// building large trial-count seed lists without pulling in non-reproducible
// randomness at test time.
func SeedRange(base uint64, n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = base + uint64(i)
	}
	return seeds
}
