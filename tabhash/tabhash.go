/*
Package tabhash implements the tabulation-hash families used by every
engine to turn fixed-width keys into well-distributed u64 outputs.

Simple tabulation hashing XORs together one table lookup per input byte,
drawing each table from the shared mtrand substrate at construction time.
This gives 3-independence with very fast per-byte lookups — sufficient for
the collision analyses the underlying weighted-MinHash papers rely on —
and the tables are immutable after construction, so a *Family or
*PairFamily value can be shared read-only across concurrent sketch calls without synchronization.
*/
package tabhash

import "github.com/jianshu93/dartminhash-go/mtrand"

const (
	tableCount = 8
	tableWidth = 256
)

// table is one of the 8 lookup tables of 256 u64 words that make up a
// simple-tabulation hash family over 8-byte (64-bit) keys.
type table [tableWidth]uint64

// Family is a single Hid: u64 -> u64 tabulation hash, built from 8
// independently-seeded tables — one per byte lane of the input.
type Family struct {
	tables [tableCount]table
}

// NewFamily draws a fresh tabulation-hash family from rng. Construction
// consumes exactly 8*256 = 2048 draws and never touches rng again.
func NewFamily(rng *mtrand.Rand) *Family {
	f := &Family{}
	for t := 0; t < tableCount; t++ {
		for b := 0; b < tableWidth; b++ {
			f.tables[t][b] = rng.NextUint64()
		}
	}
	return f
}

// Hash64 computes the tabulation hash of an 8-byte key by XOR-combining
// one lookup per byte lane: T0[b0] ^ T1[b1] ^ ... ^ T7[b7].
func (f *Family) Hash64(x uint64) uint64 {
	var h uint64
	for lane := 0; lane < tableCount; lane++ {
		b := byte(x >> (8 * lane))
		h ^= f.tables[lane][b]
	}
	return h
}

// PairFamily is Hpair: (id u64, trial u32) -> u64, used by RS/ERS to derive
// per-trial randomness. The 96-bit composite key is mixed through two
// independent Family instances, each a full 8-lane lookup over a 64-bit
// word.
type PairFamily struct {
	lo *Family // hashes the id
	hi *Family // hashes the trial XORed with the id rotated by 32 bits
}

// NewPairFamily draws two independent tabulation families from rng.
func NewPairFamily(rng *mtrand.Rand) *PairFamily {
	return &PairFamily{lo: NewFamily(rng), hi: NewFamily(rng)}
}

// Hash64 computes Hpair(id, trial): the id is hashed through the low
// family, the trial (widened and XOR-folded with the id rotated by 32
// bits) is hashed through the high family, and the two results are
// combined.
func (p *PairFamily) Hash64(id uint64, trial uint32) uint64 {
	loPart := p.lo.Hash64(id)
	hiKey := uint64(trial) ^ (id >> 32) ^ (id << 32)
	hiPart := p.hi.Hash64(hiKey)
	return loPart ^ (hiPart * 0x9E3779B97F4A7C15)
}

// Theme is one of the k independent rank hash functions DartMinHash keys
// darts by: a tabulation family plus a theme seed XORed into every input,
// so that k themes drawn from one underlying family remain mutually
// independent.
type Theme struct {
	family *Family
	seed   uint64
}

// NewThemes draws k independent themes, sharing one underlying family
// (cheap to build) but each XOR-salted with its own seed.
func NewThemes(rng *mtrand.Rand, k int) []Theme {
	family := NewFamily(rng)
	themes := make([]Theme, k)
	for i := range themes {
		themes[i] = Theme{family: family, seed: rng.NextUint64()}
	}
	return themes
}

// Rank hashes a dart's seed under this theme and maps the result to a real
// value in (0,1), used as the rank key for the theme's reservoir.
func (th Theme) Rank(dartSeed uint64) float64 {
	return ToOpen01(th.family.Hash64(dartSeed ^ th.seed))
}

// Seed returns the theme's salt, for callers that need to fold a theme's
// identity into a hash key outside of Rank (e.g. a per-theme fallback
// sampling path).
func (th Theme) Seed() uint64 { return th.seed }

// ToOpen01 maps a raw 64-bit hash to a real value in the open interval
// (0,1), taking the top 53 bits divided by 2^53 — the same construction
// mtrand.NextFloat64Open01 uses for a raw PRNG draw, applied here to a hash
// output so that hashed ranks and sampled uniforms share one numerical
// convention.
func ToOpen01(h uint64) float64 {
	top := h >> 11
	if top == 0 {
		top = 1
	}
	return float64(top) / float64(uint64(1)<<53)
}
