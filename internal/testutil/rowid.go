// Package testutil provides deterministic stand-ins for the engine's
// nondeterministic collaborators: row-id generators and clocks.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator mints "<prefix>-001", "<prefix>-002", ... row ids.
//
// This keeps scenario traces and golden files byte-stable across runs,
// unlike the production UUID generator.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given id prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}

// FixedGenerator returns predetermined row ids in order.
//
// Feeding it deliberate duplicates exercises the session's collision
// retry: the session must discard repeated ids and keep pulling until
// something fresh comes back.
//
// Panics when exhausted - a fail-fast guard against tests minting more
// rows than they declared tokens for.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("a", "a", "a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "a"  (duplicate, on purpose)
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
