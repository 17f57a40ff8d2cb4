// Package generator builds random directional sequences.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/deptsays/internal/model"
)

// Generator produces randomized sequences and picks.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Sequence returns a sequence whose length is uniform in [minLen, maxLen] and
// at least 1, each element drawn uniformly from the direction alphabet.
func (g *Generator) Sequence(minLen, maxLen int) []model.Direction {
	n := g.between(minLen, maxLen)
	if n < 1 {
		n = 1
	}
	seq := make([]model.Direction, n)
	for i := range seq {
		seq[i] = model.Directions[g.rnd.Intn(len(model.Directions))]
	}
	return seq
}

// Meta returns a required-completion count uniform in [lo, hi], at least 1.
func (g *Generator) Meta(lo, hi int) int {
	m := g.between(lo, hi)
	if m < 1 {
		return 1
	}
	return m
}

// Intn returns a uniform index in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

func (g *Generator) between(lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}
