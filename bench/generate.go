/*
Package bench holds synthetic weighted-set generators and the accuracy
harness used to check estimator behavior across the engines. Nothing here
is part of the core engine API — it is test/benchmark scaffolding that
consumes the public sketch/estimate surface like any other caller.
*/
package bench

import (
	"math"

	"github.com/dgryski/go-pcgr"
	"github.com/jianshu93/dartminhash-go/wmh"
)

// Generator produces synthetic WeightedSets for property and accuracy
// testing. It is deliberately backed by github.com/dgryski/go-pcgr rather
// than the mtrand substrate the engines use: dataset construction is not
// part of any sketch's reproducibility contract, only the engines'
// internal randomness is, so it uses a lighter-weight PCG generator
// instead of the full MT19937-64 state.
type Generator struct {
	rnd pcgr.Rand
}

// NewGenerator builds a Generator from an explicit (state, increment) pair,
// mirroring pcgr.Rand's two-field construction.
func NewGenerator(state, inc uint64) *Generator {
	return &Generator{rnd: pcgr.Rand{State: state, Inc: inc}}
}

// randFloat draws a uniform value in roughly [0,1) via a mod-and-divide
// normalization of the underlying PCG draw.
func (g *Generator) randFloat() float64 {
	return float64(g.rnd.Next()%10e5) / 10e5
}

// RandomSet builds a WeightedSet of n items with ids [0,n) and weights
// drawn uniformly from (0, maxWeight].
func (g *Generator) RandomSet(n int, maxWeight float64) wmh.WeightedSet {
	s := make(wmh.WeightedSet, n)
	for i := 0; i < n; i++ {
		w := g.randFloat()*maxWeight + 1e-9
		s[i] = wmh.WeightedItem{ID: uint64(i), Weight: w}
	}
	return s
}

// PairWithJaccard constructs two unit-weight WeightedSets A, B of size n
// each whose weighted Jaccard similarity is close to targetJ:
// A = {(i,1): i in [0,n)}, B = {(i,1): i in [m,n+m)}, where m is the
// nearest integer to the solution of (n-m)/(n+m) = targetJ, so the exact
// similarity is (n-m)/(n+m) for that rounded m.
func PairWithJaccard(n int, targetJ float64) (wmh.WeightedSet, wmh.WeightedSet) {
	m := int(math.Round(float64(n) * (1 - targetJ) / (1 + targetJ)))
	a := make(wmh.WeightedSet, n)
	b := make(wmh.WeightedSet, n)
	for i := 0; i < n; i++ {
		a[i] = wmh.WeightedItem{ID: uint64(i), Weight: 1.0}
		b[i] = wmh.WeightedItem{ID: uint64(i + m), Weight: 1.0}
	}
	return a, b
}

// TrueJaccard computes the exact weighted Jaccard similarity of two
// WeightedSets, for use as ground truth in accuracy tests. O(n+m).
func TrueJaccard(a, b wmh.WeightedSet) float64 {
	weights := make(map[uint64][2]float64, len(a)+len(b))
	for _, it := range a {
		w := weights[it.ID]
		w[0] += it.Weight
		weights[it.ID] = w
	}
	for _, it := range b {
		w := weights[it.ID]
		w[1] += it.Weight
		weights[it.ID] = w
	}
	var minSum, maxSum float64
	for _, w := range weights {
		if w[0] < w[1] {
			minSum += w[0]
			maxSum += w[1]
		} else {
			minSum += w[1]
			maxSum += w[0]
		}
	}
	if maxSum == 0 {
		return 0
	}
	return minSum / maxSum
}

// TargetJaccards is the README accuracy-sweep fixture: a descending ladder
// of target similarities to validate estimator accuracy against at
// k=1024.
var TargetJaccards = []float64{
	0.98, 0.92, 0.87, 0.82, 0.74, 0.67, 0.60, 0.54, 0.48, 0.43,
	0.38, 0.33, 0.25, 0.18, 0.11, 0.053, 0.026, 0.005,
}
