package tactics

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness used by the analysis generator and the simulator.
// Production wires a seeded math/rand source; tests pass scripted ones.
type Source interface {
	Intn(n int) int
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a Source safe for use by concurrent requests.
func NewSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

// SeedFromTime is the seed used when SIM_SEED is not configured.
func SeedFromTime() int64 {
	return time.Now().UnixNano()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// between draws uniformly from the closed range [lo, hi].
func between(rng Source, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
