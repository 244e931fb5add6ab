package erswmh

import (
	"testing"

	"github.com/jianshu93/dartminhash-go/mtrand"
	"github.com/jianshu93/dartminhash-go/wmh"
	"github.com/stretchr/testify/require"
)

func caps(n int, m uint32) []uint32 {
	c := make([]uint32, n)
	for i := range c {
		c[i] = m
	}
	return c
}

func TestSketchFillsEveryBucket(t *testing.T) {
	e, err := New(mtrand.FromSeed(42), caps(20, 8), 64)
	require.NoError(t, err)

	a := wmh.WeightedSet{{ID: 1, Weight: 2}, {ID: 5, Weight: 4}, {ID: 9, Weight: 1}}
	sig, err := e.Sketch(a, nil)
	require.NoError(t, err)
	require.Len(t, sig, 64)
	for i, slot := range sig {
		require.Contains(t, []uint64{1, 5, 9}, slot.ID, "bucket %d holds an id not in the input", i)
	}
}

func TestDensificationLeavesNoEmptySlotOnSparseInput(t *testing.T) {
	e, err := New(mtrand.FromSeed(1), caps(100, 16), 64)
	require.NoError(t, err)

	// A single accepted id (3) is the only value any bucket can legally
	// hold, whether it was filled directly or by densification. A bucket
	// left at its zero value (filled=false, id=0) would read back as id 0
	// here and fail this assertion, unlike a require.NotZero(slot.ID+1)
	// check, which a zero-value bucket would pass vacuously.
	sparse := wmh.WeightedSet{{ID: 3, Weight: 1}}
	budget := uint64(64 / 4)
	sig, err := e.Sketch(sparse, &budget)
	require.NoError(t, err)

	require.Len(t, sig, 64)
	for i, slot := range sig {
		require.Equal(t, uint64(3), slot.ID, "bucket %d was left unfilled (or densified incorrectly)", i)
	}
}

func TestPermutationInvariance(t *testing.T) {
	a := wmh.WeightedSet{{ID: 0, Weight: 1}, {ID: 1, Weight: 2}, {ID: 2, Weight: 3}}
	reversed := wmh.WeightedSet{a[2], a[1], a[0]}

	e, err := New(mtrand.FromSeed(7), caps(10, 8), 32)
	require.NoError(t, err)

	sigA, err := e.Sketch(a, nil)
	require.NoError(t, err)
	sigR, err := e.Sketch(reversed, nil)
	require.NoError(t, err)

	require.Equal(t, sigA, sigR)
}

func TestOneBitSignatureLength(t *testing.T) {
	e, err := New(mtrand.FromSeed(2), caps(10, 8), 16)
	require.NoError(t, err)
	sig, err := e.Sketch(wmh.WeightedSet{{ID: 1, Weight: 1}}, nil)
	require.NoError(t, err)

	bits := OneBitSignature(sig)
	require.Len(t, bits, 16)
}

func TestEmptyInputRejected(t *testing.T) {
	e, err := New(mtrand.FromSeed(1), caps(5, 2), 16)
	require.NoError(t, err)

	_, err = e.Sketch(wmh.WeightedSet{}, nil)
	require.ErrorIs(t, err, wmh.ErrEmptyInput)
}
