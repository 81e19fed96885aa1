package core

import (
	"fmt"

	"github.com/eberaud/oooarm/pkg/isa"
)

// Memory is the flat, word-addressable architectural memory. spec.md's
// Non-goals exclude caches and virtual memory, so this is just a slice with
// bounds checks.
type Memory struct {
	words []isa.Word
}

// NewMemory allocates memory_size words, all zero.
func NewMemory(size uint32) *Memory {
	return &Memory{words: make([]isa.Word, size)}
}

// Load reads one word, or an out-of-range error for a trap.
func (m *Memory) Load(addr uint32) (isa.Word, error) {
	if int(addr) >= len(m.words) {
		return 0, fmt.Errorf("memory read out of range: addr=%d size=%d", addr, len(m.words))
	}
	return m.words[addr], nil
}

// Store writes one word, or an out-of-range error for a trap.
func (m *Memory) Store(addr uint32, v isa.Word) error {
	if int(addr) >= len(m.words) {
		return fmt.Errorf("memory write out of range: addr=%d size=%d", addr, len(m.words))
	}
	m.words[addr] = v
	return nil
}

// Preload writes initial data-item values ahead of simulation start.
func (m *Memory) Preload(items map[string]isa.DataItem) {
	for _, item := range items {
		if int(item.Offset) < len(m.words) {
			m.words[item.Offset] = item.Initial
		}
	}
}

// Snapshot returns a copy of memory, for introspection and persistence.
func (m *Memory) Snapshot() []isa.Word {
	out := make([]isa.Word, len(m.words))
	copy(out, m.words)
	return out
}

// Restore overwrites memory from a prior Snapshot, used to resume a
// checkpointed run.
func (m *Memory) Restore(values []isa.Word) { copy(m.words, values) }
