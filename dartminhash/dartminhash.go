/*
Package dartminhash implements the DartMinHash engine: a Poisson-process
"darts" construction that yields k unbiased weighted-MinHash signatures per
input.

# Model

Each nonzero-weight item occupies a strip of length w_i on a weight axis; a
rate-1 Poisson point process is conceptually thrown over the union of all
strips, and for each of k independent "themes" the engine keeps the
minimum-rank dart landing anywhere in that item's strip. Equivalently (and
this is how the engine is actually built): for a single item of weight w,
the number of darts landing in its strip up to weight-budget w is
Poisson(w)-distributed, and the *set* of darts generated for a given
(id, level) pair is identical regardless of which other items are present
or what order they're processed in — the item's own weight only changes
how many darts of its own tabulation-seeded stream are consumed, via a
fixed stopping rule (cumulative unit-rate exponential gaps exceeding the
per-level weight budget). Two different weights at the same id therefore
share a common prefix of darts, which is exactly the coupling needed for
an unbiased weighted-Jaccard estimator: shared bands below both items'
weights contribute identical darts to both sketches, and only the partial
top band differs.

The weight axis is partitioned into dyadic levels purely so that an item's
dart stream can be generated level-by-level and so a future caller
comparing many pairs of similarly-weighted items reuses the bulk of each
item's low-level dart work. Early termination across *levels* is optional
(WithEarlyTerminate) and, when enabled, trades an explicit, bounded failure
probability for speed; it is off by default so that unbiasedness holds
exactly rather than approximately.

A single level's dart count scales with that level's share of an item's
weight, so sketching cost for any one item is proportional to its weight —
expected for a Poisson-darts construction, and the reason very large
weights (hundreds of millions and up) cost proportionally more to sketch.
*/
package dartminhash

import (
	"fmt"
	"math"

	"github.com/jianshu93/dartminhash-go/mtrand"
	"github.com/jianshu93/dartminhash-go/sampling"
	"github.com/jianshu93/dartminhash-go/tabhash"
	"github.com/jianshu93/dartminhash-go/wmh"
)

// maxLevels caps the number of dyadic weight levels processed per item: a
// weight's top level is ceil(log2(w)) (see levelOf), and beyond 64 levels (w far past
// 2^53) float64 can no longer distinguish adjacent bands anyway, so further
// precision is not chased.
const maxLevels = 64

// maxDartIndex is the largest dart index throwDarts can address within one
// (id, level) stream: the index is carried in a uint32 trial slot, so a
// single level's dart count tops out just under 2^32 regardless of how
// large its weight band is.
const maxDartIndex = 1<<32 - 1

// levelDartBudget bounds throwDarts's inner loop for a level whose weight
// band is stripLen wide. The true dart count for that level is
// Poisson(stripLen)-distributed, so a budget 20 standard deviations above
// the mean holds with overwhelming probability; the loop still falls back
// to an explicit error (never a silent truncation) if that margin is ever
// insufficient, and the result is clamped to maxDartIndex so the dart index
// never overflows its uint32 slot.
func levelDartBudget(stripLen float64) uint64 {
	budget := stripLen + 20*math.Sqrt(stripLen+1) + 64
	if budget > maxDartIndex || math.IsNaN(budget) {
		return maxDartIndex
	}
	return uint64(budget)
}

// Engine is an immutable DartMinHash sketcher, safe for concurrent,
// read-only use by multiple goroutines once constructed; all randomness is
// consumed from rng during New and never again.
type Engine struct {
	k              int
	themes         []tabhash.Theme
	darts          *tabhash.PairFamily
	gaps           *tabhash.PairFamily
	earlyTerminate bool
	epsilon        float64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithEarlyTerminate enables optional cross-level pruning: once the
// probability that any remaining level could still improve any theme's
// current best rank drops below epsilon, remaining levels for that item are
// skipped. This is an approximate, bounded-error optimization (disabled by
// default): the default engine always visits every level up to an item's
// top level, so unbiasedness holds exactly rather than up to epsilon.
func WithEarlyTerminate(epsilon float64) Option {
	return func(e *Engine) {
		e.earlyTerminate = true
		e.epsilon = epsilon
	}
}

// New builds a DartMinHash engine for k-length signatures. Construction
// draws the themes' shared tabulation family and k theme seeds, plus two
// pair families (one for dart seeds, which the themes then rank, one for
// inter-arrival gaps) from rng and never touches rng again.
func New(rng *mtrand.Rand, k int, opts ...Option) (*Engine, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0, got %d", wmh.ErrParameterError, k)
	}
	e := &Engine{
		k:      k,
		themes: tabhash.NewThemes(rng, k),
		darts:  tabhash.NewPairFamily(rng),
		gaps:   tabhash.NewPairFamily(rng),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// K returns the configured signature length.
func (e *Engine) K() int { return e.k }

// Sketch computes a k-length DartMinHash signature for items. Items with
// w == 0 are skipped; a non-finite or negative weight is InvalidWeight; an
// input with no positive-weight items is EmptyInput.
func (e *Engine) Sketch(items wmh.WeightedSet) (wmh.Signature, error) {
	if err := items.Validate(); err != nil {
		return nil, err
	}
	nz := items.NonZero()
	if len(nz) == 0 {
		return nil, wmh.ErrEmptyInput
	}

	bestRank := make([]float64, e.k)
	bestID := make([]uint64, e.k)
	won := make([]bool, e.k)
	for j := range bestRank {
		bestRank[j] = 1.0 // no real rank reaches the closed endpoint 1
	}

	for _, it := range nz {
		if err := e.processItem(it.ID, it.Weight, bestRank, bestID, won); err != nil {
			return nil, err
		}
	}

	// Safety net: a theme can in principle end an input with no winning
	// dart (every per-item Poisson draw came back empty), overwhelmingly
	// unlikely for realistic weights but not impossible for very small
	// ones. Resolve any such theme directly via the exact exponential-race
	// formulation (draw Exp(w_i) per item, keep the argmin) so the
	// signature is always fully populated.
	for j := range won {
		if !won[j] {
			bestID[j] = e.resolveFallback(nz, e.themes[j])
		}
	}

	sig := make(wmh.Signature, e.k)
	copy(sig, bestID)
	return sig, nil
}

// processItem generates item's dart stream level by level and folds any
// rank-improving dart into the running per-theme minimum.
func (e *Engine) processItem(id uint64, w float64, bestRank []float64, bestID []uint64, won []bool) error {
	top := levelOf(w)
	if top > maxLevels-1 {
		top = maxLevels - 1
	}

	for level := 0; level <= top; level++ {
		stripLen := bandOverlap(w, level)
		if stripLen <= 0 {
			continue
		}
		if e.earlyTerminate && e.levelPrunable(stripLen, bestRank) {
			break
		}
		if err := e.throwDarts(id, level, stripLen, bestRank, bestID, won); err != nil {
			return fmt.Errorf("dartminhash: id %d: %w", id, err)
		}
	}
	return nil
}

// throwDarts simulates a Poisson(stripLen) count of darts by summing
// unit-rate exponential gaps drawn from a tabulation-seeded stream keyed on
// (id, level, n) until the cumulative sum exceeds the level's weight
// budget, folding each generated dart into every theme's running minimum.
// level is folded into the hashed key via levelSeed rather than packed
// alongside n, so n alone addresses the full uint32 dart-index range for
// this level (see maxDartIndex/levelDartBudget).
func (e *Engine) throwDarts(id uint64, level int, stripLen float64, bestRank []float64, bestID []uint64, won []bool) error {
	lid := levelSeed(id, level)
	cum := 0.0
	budget := levelDartBudget(stripLen)
	for n := uint64(0); n < budget; n++ {
		trial := uint32(n)

		gapSeed := e.gaps.Hash64(lid, trial)
		gap, err := sampling.Exponential(tabhash.ToOpen01(gapSeed), 1.0)
		if err != nil {
			return nil
		}
		cum += gap
		if cum > stripLen {
			return nil
		}

		dartSeed := e.darts.Hash64(lid, trial)
		for j, th := range e.themes {
			r := th.Rank(dartSeed)
			if r < bestRank[j] {
				bestRank[j] = r
				bestID[j] = id
				won[j] = true
			}
		}
	}
	return fmt.Errorf("level %d: exhausted dart budget (%d) with cumulative gap %.6g still short of band width %.6g; this indicates a weight whose top level exceeds this engine's per-level dart capacity", level, budget, cum, stripLen)
}

// levelPrunable reports whether no item could plausibly improve any theme
// at a level contributing strictly less than stripLen of remaining weight:
// the expected dart count at such a level is stripLen, each dart's rank is
// uniform on (0,1), so a union bound over the expected dart count puts the
// probability that any of them beats the current worst-of-k best rank at
// roughly stripLen * max(bestRank). Below epsilon the miss is accepted.
func (e *Engine) levelPrunable(stripLen float64, bestRank []float64) bool {
	worst := 0.0
	for _, r := range bestRank {
		if r > worst {
			worst = r
		}
	}
	return stripLen*worst < e.epsilon
}

// resolveFallback runs the exact exponential-race weighted-MinHash formula
// for a single theme over every nonzero item: rank_i = Exp(w_i) drawn from
// a theme-salted tabulation seed, winner = argmin_i rank_i.
func (e *Engine) resolveFallback(nz wmh.WeightedSet, theme tabhash.Theme) uint64 {
	best := math.Inf(1)
	var bestID uint64
	for _, it := range nz {
		seed := e.darts.Hash64(it.ID, uint32(theme.Seed()&0xFFFFFFFF)) ^ theme.Seed()
		r, err := sampling.Exponential(tabhash.ToOpen01(seed), it.Weight)
		if err != nil {
			continue
		}
		if r < best {
			best = r
			bestID = it.ID
		}
	}
	return bestID
}

// levelOf returns the dyadic level whose band (2^(level-1), 2^level]
// contains w (band (0,1] for level 0).
func levelOf(w float64) int {
	if w <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(w)))
}

// bandOverlap returns the length of w's overlap with level's band.
func bandOverlap(w float64, level int) float64 {
	var bandLow float64
	if level > 0 {
		bandLow = math.Ldexp(1, level-1)
	}
	bandHigh := math.Ldexp(1, level)
	if w <= bandLow {
		return 0
	}
	if w < bandHigh {
		return w - bandLow
	}
	return bandHigh - bandLow
}

// levelSeed derives a level-specific 64-bit key from an item id, so that
// each level's dart stream is independent of every other level's without
// stealing any bits from the per-level dart-index counter (n stays a plain
// uint32 trial index, giving it the full maxDartIndex range).
func levelSeed(id uint64, level int) uint64 {
	return id ^ (uint64(level)+1)*0x9E3779B97F4A7C15
}
