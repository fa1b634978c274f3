// Package outcome contains the random draws shared by every game.
// Every function takes its randomness from a Source so results can be
// reproduced in tests with a fixed seed or a scripted source.
package outcome

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source is the randomness consumed by the draws.
type Source interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int
	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// NewSeed returns a seed read from crypto/rand.
func NewSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("outcome: crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
}

// lockedSource makes a *rand.Rand safe for concurrent handlers.
type lockedSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed.
func NewSource(seed int64) Source {
	return &lockedSource{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Bucket is one entry of a weighted table. Weights are percentages.
type Bucket struct {
	Label  string
	Weight float64
}

// WeightedPick draws r in [0,100) and walks the buckets in order; the first
// bucket whose cumulative weight reaches r wins. When the weights sum to less
// than 100 and r falls past them, def is returned. Bucket order decides ties,
// so callers must keep it stable.
func WeightedPick(src Source, buckets []Bucket, def string) string {
	r := src.Float64() * 100
	var sum float64
	for _, b := range buckets {
		if b.Weight <= 0 {
			continue
		}
		sum += b.Weight
		if sum >= r {
			return b.Label
		}
	}
	return def
}

// Bernoulli reports success with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// RollDie returns a uniform value in [1, sides].
func RollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// Pick returns a uniform element of items.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
