/*
Package erswmh implements the Efficient Rejection-Sampling weighted
MinHash engine (Li & Li 2021): a single shared stream of
(id, rank) proposals accepted under the same rejection criterion as rswmh,
distributed into k rank-ordered buckets with early stopping, and
densified so every bucket is filled even when the stream runs dry before
the whole universe is scanned.
*/
package erswmh

import (
	"fmt"
	"sort"

	"github.com/jianshu93/dartminhash-go/mtrand"
	"github.com/jianshu93/dartminhash-go/tabhash"
	"github.com/jianshu93/dartminhash-go/wmh"
)

// DefaultTrialMultiplier is the proposal budget used when Sketch is called
// with a nil L: the scan stops after 4*k accepted proposals, a budget loose
// enough to fill essentially every bucket directly and leave densification
// to cover only the rare straggler.
const DefaultTrialMultiplier = 4

// Engine is an immutable ERS sketcher, safe for concurrent read-only use
// once constructed.
type Engine struct {
	caps      wmh.Caps
	k         int
	accept    *tabhash.PairFamily // single shared acceptance stream
	rank      *tabhash.PairFamily // single shared rank-assignment stream
	densifier *tabhash.PairFamily // deterministic densification walk
}

// New builds an ERS engine over caps with k buckets.
func New(rng *mtrand.Rand, caps []uint32, k int) (*Engine, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0, got %d", wmh.ErrParameterError, k)
	}
	c, err := wmh.NewCaps(caps)
	if err != nil {
		return nil, err
	}
	return &Engine{
		caps:      c,
		k:         k,
		accept:    tabhash.NewPairFamily(rng),
		rank:      tabhash.NewPairFamily(rng),
		densifier: tabhash.NewPairFamily(rng),
	}, nil
}

// K returns the configured bucket count.
func (e *Engine) K() int { return e.k }

// Caps returns the engine's cap vector.
func (e *Engine) Caps() wmh.Caps { return e.caps }

type bucket struct {
	filled bool
	id     uint64
	rank   float64
}

// Sketch computes the k-bucket ERS signature. L is the proposal budget;
// a nil L uses DefaultTrialMultiplier*k.
func (e *Engine) Sketch(items wmh.WeightedSet, l *uint64) (wmh.RankedSignature, error) {
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

	limit := uint64(DefaultTrialMultiplier * e.k)
	if l != nil {
		limit = *l
	}

	buckets := make([]bucket, e.k)
	var proposals uint64
	filledCount := 0

	sorted := sortedByID(nz)

scan:
	for _, it := range sorted {
		m := e.caps[it.ID]
		rho := it.Weight / float64(m)
		for t := uint32(0); t < m; t++ {
			au := tabhash.ToOpen01(e.accept.Hash64(it.ID, t))
			if au >= rho {
				continue
			}
			ru := tabhash.ToOpen01(e.rank.Hash64(it.ID, t^0x5bd1e995))
			proposals++

			b := int(float64(e.k) * ru)
			if b >= e.k {
				b = e.k - 1
			}
			if !buckets[b].filled || ru < buckets[b].rank {
				if !buckets[b].filled {
					filledCount++
				}
				buckets[b] = bucket{filled: true, id: it.ID, rank: ru}
			}

			if proposals >= limit || filledCount == e.k {
				break scan
			}
		}
	}

	if proposals == 0 {
		// Degenerate input (every acceptance test failed across the whole
		// scan budget): force one synthetic proposal from the
		// highest-weight item so densification has something to spread.
		best := sorted[0]
		for _, it := range sorted[1:] {
			if it.Weight > best.Weight {
				best = it
			}
		}
		buckets[0] = bucket{filled: true, id: best.ID, rank: 0}
		filledCount = 1
	}

	e.densify(buckets)

	sig := make(wmh.RankedSignature, e.k)
	for i, b := range buckets {
		sig[i] = wmh.RankedSlot{ID: b.id, Rank: b.rank}
	}
	return sig, nil
}

// densify fills every empty bucket by walking a deterministic
// pseudo-random probe sequence (keyed by the empty bucket's own index)
// until it lands on a filled bucket, then copies that bucket's (id, rank)
// across.
func (e *Engine) densify(buckets []bucket) {
	for b := range buckets {
		if buckets[b].filled {
			continue
		}
		for probe := uint32(0); ; probe++ {
			h := e.densifier.Hash64(uint64(b), probe)
			c := int(h % uint64(len(buckets)))
			if buckets[c].filled {
				buckets[b] = buckets[c]
				buckets[b].filled = true
				break
			}
		}
	}
}

func sortedByID(nz wmh.WeightedSet) wmh.WeightedSet {
	out := make(wmh.WeightedSet, len(nz))
	copy(out, nz)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OneBitSignature derives a compact, lossy one-bit-per-bucket signature
// from a ranked ERS signature, keyed on the parity of each bucket's
// accepted id. It trades accuracy for a smaller footprint (one bool per
// bucket instead of a 16-byte RankedSlot) and is
// exposed as a separate, explicit conversion rather than folded into
// Sketch's own output.
func OneBitSignature(sig wmh.RankedSignature) []bool {
	bits := make([]bool, len(sig))
	for i, slot := range sig {
		bits[i] = slot.ID&1 == 1
	}
	return bits
}
