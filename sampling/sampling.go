/*
Package sampling implements exponential and geometric draws, plus the
numerically stable log1p/expm1 paths the underlying papers depend on near
the edges of their domains. Of the engines, only dartminhash uses this
package (Exponential, for dart inter-arrival gaps and its fallback race);
rswmh and erswmh compare hash-derived uniforms against x_i/caps[i]
directly and call nothing here.

Every function here is a pure transform of an already-drawn uniform value
(from mtrand, or a hash mapped through tabhash.ToOpen01) — this package
holds no RNG state of its own.
*/
package sampling

import (
	"errors"
	"math"
)

// ErrNonFinite is returned when a transform's inputs would produce a
// non-finite (NaN or +/-Inf) result.
var ErrNonFinite = errors.New("sampling: transform produced a non-finite result")

// epsilon is the smallest perturbation applied to a uniform draw that
// would otherwise yield +/-Inf: inputs are clamped into (eps, 1-eps) only
// when left alone they'd produce a non-finite result.
const epsilon = 1.0 / (1 << 53)

// Exponential draws an Exp(rate) value from a uniform u in the open
// interval (0,1): -ln(u)/rate. u must never be exactly 0; callers are
// expected to supply an open-(0,1) uniform (mtrand.NextFloat64Open01
// guarantees this).
func Exponential(u, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, errors.New("sampling: rate must be > 0")
	}
	if u <= 0 {
		u = epsilon
	}
	v := -math.Log(u) / rate
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

// Geometric returns the number of Bernoulli(p) trials until the first
// success, for p in (0,1]: ceil(ln(u)/ln(1-p)), evaluated through the
// numerically stable log1p(-p) path. p very close to 1 is clamped to
// always return 1 (a near-certain success on the first trial).
func Geometric(u, p float64) (uint64, error) {
	if p <= 0 || p > 1 {
		return 0, errors.New("sampling: p must be in (0,1]")
	}
	if p >= 1-epsilon {
		return 1, nil
	}
	if u <= 0 {
		u = epsilon
	}
	if u >= 1 {
		u = 1 - epsilon
	}
	denom := math.Log1p(-p)
	n := math.Ceil(math.Log(u) / denom)
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return 1, nil
	}
	return uint64(n), nil
}

// UniformRange maps a uniform u in [0,1) to a value in [a,b): a + (b-a)*u.
func UniformRange(u, a, b float64) float64 {
	return a + (b-a)*u
}

// Expm1Complement computes 1 - exp(x) via the numerically stable
// -expm1(x), avoiding catastrophic cancellation for x near 0, for
// converting a log-scale rate into a linear-scale probability.
func Expm1Complement(x float64) float64 {
	return -math.Expm1(x)
}
