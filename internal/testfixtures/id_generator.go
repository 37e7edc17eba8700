package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields sequential identifiers so tests can predict the ids a
// session assigns to created events.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator builds a generator producing "<prefix>-1", "<prefix>-2" and
// so on. An empty prefix falls back to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc adapts the generator to the id-func shape the constructors
// accept. A nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset rewinds the sequence so the next identifier is "<prefix>-1" again.
func (g *IDGenerator) Reset() {
	g.counter.Store(0)
}
