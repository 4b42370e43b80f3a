package testutil

import (
	"fmt"
	"sync"
)

// FixedBatchGenerator generates the same batch id every time.
//
// Unlike ListBatchGenerator, which returns ids in order and panics when
// exhausted, this generator never runs out. Useful when a test saves an
// unknown number of times and only cares that ids are stable.
//
// Thread-safety: FixedBatchGenerator is stateless and safe for concurrent use.
type FixedBatchGenerator struct {
	id string
}

// NewFixedBatchGenerator creates a new fixed batch id generator.
// If id is empty, Generate() returns "test-batch-default".
func NewFixedBatchGenerator(id string) *FixedBatchGenerator {
	if id == "" {
		id = "test-batch-default"
	}
	return &FixedBatchGenerator{id: id}
}

// Generate returns the fixed batch id.
//
// Implements persist.IDGenerator.
func (g *FixedBatchGenerator) Generate() string {
	return g.id
}

// SequenceBatchGenerator generates prefix-0001, prefix-0002, ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceBatchGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceBatchGenerator creates a generator. An empty prefix means "batch".
func NewSequenceBatchGenerator(prefix string) *SequenceBatchGenerator {
	if prefix == "" {
		prefix = "batch"
	}
	return &SequenceBatchGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
//
// Implements persist.IDGenerator.
func (g *SequenceBatchGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// ListBatchGenerator returns predetermined ids in order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ListBatchGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewListBatchGenerator creates a generator that returns ids in order.
func NewListBatchGenerator(ids ...string) *ListBatchGenerator {
	return &ListBatchGenerator{ids: ids}
}

// Generate returns the next predetermined id.
// Panics when all ids have been consumed, so a test notices an extra save.
//
// Implements persist.IDGenerator.
func (g *ListBatchGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("ListBatchGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
