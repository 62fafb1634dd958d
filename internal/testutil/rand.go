// Package testutil provides deterministic random sources for testing the
// probabilistic node types.
package testutil

import "math/rand/v2"

// ScriptedSource replays a fixed script of Float64 samples, cycling when
// exhausted. It only scripts Float64-driven sampling (selector-p,
// randomly); IntN consumes the source differently, so tests of choose and
// choose-each should use Seeded and assert aggregate properties instead.
type ScriptedSource struct {
	vals []uint64
	i    int
}

// Script builds a source whose successive Float64 draws return the given
// values. Each value must be in [0, 1).
func Script(floats ...float64) *ScriptedSource {
	vals := make([]uint64, len(floats))
	for i, f := range floats {
		// rand.Rand.Float64 keeps the low 53 bits and divides by 2^53.
		vals[i] = uint64(f * (1 << 53))
	}
	return &ScriptedSource{vals: vals}
}

// Uint64 implements rand.Source.
func (s *ScriptedSource) Uint64() uint64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// Seeded returns a reproducible PCG source.
func Seeded(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
