package game

import (
	"math/rand"
	"sync"
)

// RandomSource yields uniform values in [0, 1). Serve directions are drawn
// from it so tests can pin them.
type RandomSource interface {
	Float64() float64
}

// lockedRand is a seeded math/rand source safe for use from several
// goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a RandomSource seeded with seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
type SequenceSource struct {
	Values []float64
	next   int
}

// Float64 returns the next value in the sequence.
func (s *SequenceSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
