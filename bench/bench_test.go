package bench

import (
	"testing"

	"github.com/jianshu93/dartminhash-go/dartminhash"
	"github.com/jianshu93/dartminhash-go/mtrand"
	"github.com/jianshu93/dartminhash-go/wmh"
	"github.com/stretchr/testify/require"
)

func dmhFactory(k int) EngineFactory {
	return func(seed uint64) SketchFunc {
		e, err := dartminhash.New(mtrand.FromSeed(seed), k)
		if err != nil {
			panic(err)
		}
		return e.Sketch
	}
}

func TestTrueJaccardMatchesConstruction(t *testing.T) {
	a, b := PairWithJaccard(1000, 0.5)
	got := TrueJaccard(a, b)
	require.InDelta(t, 0.5, got, 1e-9)
}

func TestTrueJaccardIdenticalSets(t *testing.T) {
	a := wmh.WeightedSet{{ID: 1, Weight: 2}, {ID: 2, Weight: 3}}
	require.Equal(t, 1.0, TrueJaccard(a, a))
}

func TestAccuracySweepWithinTolerance(t *testing.T) {
	for _, targetJ := range []float64{0.5, 0.25, 0.82} {
		a, b := PairWithJaccard(500, targetJ)
		trueJ := TrueJaccard(a, b)

		report, err := RunTrials(dmhFactory(1024), a, b, trueJ, SeedRange(1000, 20))
		require.NoError(t, err)
		require.Less(t, report.Mean, 0.08, "targetJ=%v mean error too high: %+v", targetJ, report)
	}
}

func TestGeneratorProducesPositiveWeights(t *testing.T) {
	g := NewGenerator(0x1234, 0xabcd)
	s := g.RandomSet(50, 10.0)
	for _, it := range s {
		require.Greater(t, it.Weight, 0.0)
	}
}

func TestParseLineWellFormed(t *testing.T) {
	item, ok := ParseLine("42 3.5")
	require.True(t, ok)
	require.Equal(t, uint64(42), item.ID)
	require.InDelta(t, 3.5, item.Weight, 1e-9)
}

func TestParseLineFallsBackOnNonNumericID(t *testing.T) {
	item, ok := ParseLine("widget-7 1.0")
	require.True(t, ok)
	require.Equal(t, wmh.KeyIDString("widget-7"), item.ID)
}

func TestParseLineRejectsTooFewFields(t *testing.T) {
	_, ok := ParseLine("42")
	require.False(t, ok)
}

func TestLoadDatasetSkipsBlankAndMalformedLines(t *testing.T) {
	text := "1 1.0\n\n2 2.0\nmalformed\n3 3.0\n"
	set := LoadDataset(text)
	require.Len(t, set, 3)
}

// TestEstimateVarianceDecreasesWithK checks that the estimator's
// trial-to-trial spread shrinks as k grows, as expected for a MinHash-style
// estimator whose variance scales like J(1-J)/k.
func TestEstimateVarianceDecreasesWithK(t *testing.T) {
	a, b := PairWithJaccard(600, 0.5)
	trueJ := TrueJaccard(a, b)
	seeds := SeedRange(2000, 400)

	ks := []int{64, 128, 256, 512, 1024}
	stddevs := make([]float64, len(ks))
	for i, k := range ks {
		report, err := RunTrials(dmhFactory(k), a, b, trueJ, seeds)
		require.NoError(t, err)
		stddevs[i] = report.StdDev
	}

	// Allow some per-step slack for sampling noise, but the overall trend
	// across the whole sweep must be a clear decrease.
	for i := 1; i < len(stddevs); i++ {
		require.Less(t, stddevs[i], stddevs[i-1]*1.35,
			"stddev at k=%d (%v) not meaningfully smaller than at k=%d (%v)",
			ks[i], stddevs[i], ks[i-1], stddevs[i-1])
	}
	require.Less(t, stddevs[len(stddevs)-1], stddevs[0]/2,
		"stddev at k=%d (%v) should be well below stddev at k=%d (%v)",
		ks[len(ks)-1], stddevs[len(stddevs)-1], ks[0], stddevs[0])
}
