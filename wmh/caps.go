package wmh

import "fmt"

// Caps is the per-dimension weight-cap vector m required by RS and ERS:
// m[i] is a sharp upper bound on any weight ever observed at coordinate i,
// with m[i] >= 1. DartMinHash does not use caps.
type Caps []uint32

// NewCaps validates a raw cap vector and returns it as Caps. Every entry
// must be >= 1; an empty vector is a ParameterError.
func NewCaps(m []uint32) (Caps, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: caps must not be empty", ErrParameterError)
	}
	for i, v := range m {
		if v < 1 {
			return nil, fmt.Errorf("%w: caps[%d] = %d, must be >= 1", ErrParameterError, i, v)
		}
	}
	return Caps(m), nil
}

// Check validates a WeightedSet against the cap universe: every item's id
// must be within range (OutOfUniverse otherwise) and its weight must not
// exceed its cap (CapViolation triggers only when weight > cap[id] — a
// weight exactly equal to its cap is fine).
func (c Caps) Check(items WeightedSet) error {
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		if it.ID >= uint64(len(c)) {
			return fmt.Errorf("%w: id %d >= universe size %d", ErrOutOfUniverse, it.ID, len(c))
		}
		if it.Weight > float64(c[it.ID]) {
			return fmt.Errorf("%w: weight %g exceeds cap %d for id %d", ErrCapViolation, it.Weight, c[it.ID], it.ID)
		}
	}
	return nil
}

// Sum returns Σ m_i, the size of the flattened logical universe U. The RS
// and ERS engines do not call it: they use the per-item rate x_i/caps[i].
func (c Caps) Sum() uint64 {
	var total uint64
	for _, v := range c {
		total += uint64(v)
	}
	return total
}
