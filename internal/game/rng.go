package game

import (
	"unicode/utf16"

	"github.com/google/uuid"
)

// SeedFromString hashes s into a 32-bit seed (xmur3). The string is hashed
// as UTF-16 code units so every peer derives the same seed for a room id.
func SeedFromString(s string) uint32 {
	units := utf16.Encode([]rune(s))
	h := uint32(1779033703) ^ uint32(len(units))
	for _, c := range units {
		h = (h ^ uint32(c)) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	return h
}

// Rand is a mulberry32 generator. Its whole state is one uint32, which is
// stored in WorldState between ticks so replays are exact.
type Rand struct {
	State uint32
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint32) *Rand {
	return &Rand{State: seed}
}

// Uint32 advances the generator.
func (r *Rand) Uint32() uint32 {
	r.State += 0x6D2B79F5
	t := r.State
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / 4294967296.0
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Centered returns a value in [-span/2, span/2).
func (r *Rand) Centered(span float64) float64 {
	return (r.Float64() - 0.5) * span
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// Chance reports true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

// Read fills p from the generator so Rand can feed uuid generation.
func (r *Rand) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 4 {
		v := r.Uint32()
		for j := 0; j < 4 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// NewID returns a prefixed random UUID drawn from the generator.
func (r *Rand) NewID(prefix string) string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		// Read never fails; keep ids unique regardless.
		return prefix + "-" + uuid.NewString()
	}
	return prefix + "-" + id.String()
}

// Shuffle permutes n elements with Fisher-Yates.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
