// Package outcometest provides a scripted outcome.Source for tests.
package outcometest

import "sync"

// Script replays queued values. Ints feed Intn and Floats feed Float64.
// Running out of values panics, so tests notice unexpected draws.
type Script struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64
}

// Intn returns the next queued int, which must lie in [0, n).
func (s *Script) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 {
		panic("outcometest: no scripted ints left")
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 || v >= n {
		panic("outcometest: scripted int out of range")
	}
	return v
}

// Float64 returns the next queued float.
func (s *Script) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		panic("outcometest: no scripted floats left")
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Dice queues Intn values producing the given die faces.
func Dice(faces ...int) []int {
	out := make([]int, len(faces))
	for i, f := range faces {
		out[i] = f - 1
	}
	return out
}
