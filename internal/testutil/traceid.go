package testutil

import (
	"fmt"
	"sync"
)

// FixedTraceIDGenerator generates the same trace ID every time.
//
// This enables deterministic CLI output: the same command with the same
// FixedTraceIDGenerator produces byte-identical JSON responses.
//
// Thread-safety: FixedTraceIDGenerator is stateless and safe for concurrent use.
type FixedTraceIDGenerator struct {
	id string
}

// NewFixedTraceIDGenerator creates a new fixed trace ID generator.
//
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceIDGenerator(id string) *FixedTraceIDGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceIDGenerator{id: id}
}

// Generate returns the fixed trace ID.
func (g *FixedTraceIDGenerator) Generate() string {
	return g.id
}

// SequenceTraceIDGenerator generates "trace-1", "trace-2", ... so tests can
// count how many responses were stamped.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceTraceIDGenerator struct {
	mu  sync.Mutex
	seq int64
}

// Generate returns the next trace ID in the sequence.
func (g *SequenceTraceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("trace-%d", g.seq)
}

// Count returns how many IDs have been generated.
func (g *SequenceTraceIDGenerator) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence, so the next ID is "trace-1" again.
func (g *SequenceTraceIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
