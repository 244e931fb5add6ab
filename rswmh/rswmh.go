/*
Package rswmh implements the Rejection-Sampling weighted MinHash engine
(Shrivastava 2016): for each of k independent hashes, scan the capped
universe in ascending-id order and accept the first (id, local-trial) bin
whose tabulation-seeded uniform draw falls under that item's per-trial
acceptance rate x_i/caps[i]. The accepted id is that hash's signature slot.

Because items with w <= 0 always reject, the conceptual full-universe scan
reduces to scanning only the present, capped-and-validated items in id
order.

Caps must dominate every weight they're checked against (caps[i] >= x_i for
every input); this is what keeps the per-trial acceptance rate x_i/caps[i]
within [0,1] and the winning-id distribution proportional to true weight
regardless of how loose or tight the caps are. A cap that doesn't dominate
biases the estimate upward, since the offending item's acceptance
probability effectively saturates above 1 and it wins on its very first
trial; this package refuses that case outright (wmh.ErrCapViolation) rather
than let it happen silently.
*/
package rswmh

import (
	"fmt"
	"sort"

	"github.com/jianshu93/dartminhash-go/mtrand"
	"github.com/jianshu93/dartminhash-go/tabhash"
	"github.com/jianshu93/dartminhash-go/wmh"
)

// Engine is an immutable RS sketcher, safe for concurrent read-only use
// once constructed. All randomness is drawn from the rng passed to New.
type Engine struct {
	caps  wmh.Caps
	k     int
	pair  *tabhash.PairFamily
	seeds []uint64 // one independent salt per hash/theme
}

// New builds an RS engine over the given per-dimension caps with k
// independent hashes. caps[i] must be >= 1 for every dimension any input
// can touch; see wmh.NewCaps.
func New(rng *mtrand.Rand, caps []uint32, k int) (*Engine, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0, got %d", wmh.ErrParameterError, k)
	}
	c, err := wmh.NewCaps(caps)
	if err != nil {
		return nil, err
	}
	seeds := make([]uint64, k)
	for i := range seeds {
		seeds[i] = rng.NextUint64()
	}
	return &Engine{
		caps:  c,
		k:     k,
		pair:  tabhash.NewPairFamily(rng),
		seeds: seeds,
	}, nil
}

// K returns the configured signature length.
func (e *Engine) K() int { return e.k }

// Caps returns the engine's cap vector.
func (e *Engine) Caps() wmh.Caps { return e.caps }

// SketchIDs computes the k-length RS signature: each slot is the id that
// wins that hash's rejection-sampling scan.
func (e *Engine) SketchIDs(items wmh.WeightedSet) (wmh.Signature, error) {
	sorted, err := e.prepare(items)
	if err != nil {
		return nil, err
	}
	sig := make(wmh.Signature, e.k)
	for j := 0; j < e.k; j++ {
		id, _ := e.acceptFirst(sorted, j)
		sig[j] = id
	}
	return sig, nil
}

// SketchCounts returns, per hash, the number of trials consumed before
// acceptance (or the full scan length if none accepted) — a diagnostic
// useful for judging whether caps are set tighter than they need to be.
func (e *Engine) SketchCounts(items wmh.WeightedSet) ([]uint32, error) {
	sorted, err := e.prepare(items)
	if err != nil {
		return nil, err
	}
	counts := make([]uint32, e.k)
	for j := 0; j < e.k; j++ {
		_, trials := e.acceptFirst(sorted, j)
		counts[j] = trials
	}
	return counts, nil
}

// prepare validates items against the cap universe and returns a copy
// sorted ascending by id, the canonical scan order.
func (e *Engine) prepare(items wmh.WeightedSet) (wmh.WeightedSet, error) {
	if err := items.Validate(); err != nil {
		return nil, err
	}
	nz := items.NonZero()
	if len(nz) == 0 {
		return nil, wmh.ErrEmptyInput
	}
	if err := e.caps.Check(nz); err != nil {
		return nil, err
	}
	sorted := make(wmh.WeightedSet, len(nz))
	copy(sorted, nz)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted, nil
}

// acceptFirst scans sorted items in ascending id order for hash j, trying
// every local trial of an item before moving to the next, and returns the
// first accepted id along with the total trial count consumed.
func (e *Engine) acceptFirst(sorted wmh.WeightedSet, j int) (uint64, uint32) {
	var trials uint32
	seed := e.seeds[j]
	for _, it := range sorted {
		m := e.caps[it.ID]
		rho := it.Weight / float64(m)
		for t := uint32(0); t < m; t++ {
			trials++
			h := e.pair.Hash64(it.ID, t) ^ seed
			u := tabhash.ToOpen01(h)
			if u < rho {
				return it.ID, trials
			}
		}
	}
	return 0, trials
}
