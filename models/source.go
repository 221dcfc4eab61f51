package models

import (
	"time"

	"golang.org/x/exp/rand"
)

// NormalSource supplies independent standard normal variates. A source is
// not safe for concurrent use; give every goroutine its own.
type NormalSource interface {
	NormFloat64() float64
}

// SourceFactory returns a fresh, independent source for the given stream.
// Calling it twice with the same stream must yield identical sequences.
type SourceFactory func(stream uint64) NormalSource

// SeededSource draws from a seeded x/exp/rand generator.
type SeededSource struct {
	rng *rand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *SeededSource) NormFloat64() float64 {
	return s.rng.NormFloat64()
}

// SeededFactory derives one generator per stream from a root seed. A zero
// seed picks a time-based root, so runs are not reproducible.
func SeededFactory(seed uint64) SourceFactory {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return func(stream uint64) NormalSource {
		return NewSeededSource(splitMix64(seed + stream*0x9e3779b97f4a7c15))
	}
}

// splitMix64 decorrelates neighbouring stream seeds.
func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// SequenceSource replays a fixed list of draws, wrapping around at the end.
type SequenceSource struct {
	values []float64
	pos    int
}

func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) NormFloat64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos]
	s.pos = (s.pos + 1) % len(s.values)
	return v
}

// SequenceFactory hands every stream its own replay of the same values.
func SequenceFactory(values ...float64) SourceFactory {
	return func(uint64) NormalSource {
		return NewSequenceSource(values...)
	}
}
